package main

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/midirouter/internal/config"
	"github.com/leandrodaf/midirouter/internal/logger"
	"github.com/leandrodaf/midirouter/sdk/contracts"
	"github.com/leandrodaf/midirouter/sdk/router"
)

const devicesJSON = `{
  "devices": {
    "mooer_m2": {
      "id": "mooer_m2",
      "name": "Mooer M2",
      "device_type": "midi",
      "programs": [
        {"number": 0, "name": "Clean", "commands": [
          {"type": "program_change", "channel": 1, "program": 0}
        ]}
      ]
    }
  }
}`

const mapJSON = `{
  "rtp_midi_sessions": [
    {"name": "MainInput", "port": 5004, "listen": true},
    {"name": "Output1", "port": 5006, "listen": false}
  ],
  "device_mappings": [
    {"device_id": "mooer_m2", "listen_session": "MainInput", "listen_channel": 1,
     "destination": {"type": "rtp_midi", "session_name": "Output1"}}
  ]
}`

// demoTransport is a stand-in for a real RTP-MIDI transport: it emits one
// Program Change on the listening session and prints what the router sends.
type demoTransport struct {
	events chan contracts.Event
}

func (t *demoTransport) Listen(ctx context.Context, cfg contracts.SessionConfig) (<-chan contracts.Event, error) {
	return t.events, nil
}

func (t *demoTransport) Connect(ctx context.Context, cfg contracts.SessionConfig, peer contracts.PeerConfig) error {
	return nil
}

func (t *demoTransport) SendMIDI(sessionName string, msg midi.Message) error {
	fmt.Printf("outbound on %s: %s\n", sessionName, msg)
	return nil
}

func main() {
	log := logger.NewZapLogger()

	cfg, err := config.Parse([]byte(devicesJSON), []byte(mapJSON))
	if err != nil {
		log.Fatal("invalid configuration", log.Field().Error("error", err))
	}

	transport := &demoTransport{events: make(chan contracts.Event, 1)}
	r, err := router.NewRouter(cfg,
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.DebugLevel),
		contracts.WithMIDITransport(transport),
	)
	if err != nil {
		log.Fatal("router setup failed", log.Field().Error("error", err))
	}

	// Program Change on MainInput channel 1 selects program 0 on the Mooer,
	// which the router turns into one outbound Program Change on Output1.
	transport.events <- contracts.Event{
		Session: "MainInput",
		Kind:    contracts.EventProgramChange,
		Channel: 1,
		Program: 0,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := r.Run(ctx); err != nil {
		log.Error("router stopped", log.Field().Error("error", err))
	}

	stats := r.Stats()
	fmt.Printf("dispatched=%d dropped=%d\n", stats.Dispatched, stats.Dropped)
}
