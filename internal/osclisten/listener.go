// Package osclisten runs the inbound OSC listeners. Each configured source
// binds a UDP port and dispatches recognized addresses; currently
// "/tempo/raw" carries a BPM value for the tempo engine.
package osclisten

import (
	"context"
	"fmt"
	"net"

	"github.com/chabad360/go-osc/osc"
	"golang.org/x/sync/errgroup"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// AddressTempoRaw is the OSC address carrying raw tempo updates.
const AddressTempoRaw = "/tempo/raw"

// TempoHandler consumes tempo updates decoded from OSC.
type TempoHandler interface {
	HandleTempo(ctx context.Context, bpm float64) error
}

// Listener manages one OSC server per configured source.
type Listener struct {
	sources []contracts.OSCSourceConfig
	tempo   TempoHandler
	logger  contracts.Logger
}

// NewListener returns a listener for the configured sources.
func NewListener(sources []contracts.OSCSourceConfig, tempo TempoHandler, logger contracts.Logger) *Listener {
	return &Listener{sources: sources, tempo: tempo, logger: logger}
}

// Run binds every source port and serves until the context is cancelled.
// A failure to bind any port is returned immediately.
func (l *Listener) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, source := range l.sources {
		source := source

		conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", source.Port))
		if err != nil {
			return fmt.Errorf("bind osc source %q on port %d: %w", source.Name, source.Port, err)
		}

		l.logger.Info("osc listener started",
			l.logger.Field().String("source", source.Name),
			l.logger.Field().Int("port", source.Port),
		)

		server, err := l.newServer(ctx, source)
		if err != nil {
			conn.Close()
			return err
		}

		group.Go(func() error {
			// Closing the connection unblocks Serve when the context ends.
			<-ctx.Done()
			return conn.Close()
		})
		group.Go(func() error {
			err := server.Serve(conn)
			if ctx.Err() != nil {
				return nil // shutdown, not a failure
			}
			return fmt.Errorf("osc source %q: %w", source.Name, err)
		})
	}

	return group.Wait()
}

func (l *Listener) newServer(ctx context.Context, source contracts.OSCSourceConfig) (*osc.Server, error) {
	dispatcher := osc.NewStandardDispatcher()
	err := dispatcher.AddMsgHandler(AddressTempoRaw, func(msg *osc.Message) {
		l.handleTempo(ctx, source, msg)
	})
	if err != nil {
		return nil, fmt.Errorf("osc source %q: %w", source.Name, err)
	}
	return &osc.Server{Dispatcher: dispatcher}, nil
}

func (l *Listener) handleTempo(ctx context.Context, source contracts.OSCSourceConfig, msg *osc.Message) {
	if len(msg.Arguments) == 0 {
		l.logger.Warn("tempo message without arguments",
			l.logger.Field().String("source", source.Name),
		)
		return
	}

	var bpm float64
	switch v := msg.Arguments[0].(type) {
	case float32:
		bpm = float64(v)
	case float64:
		bpm = v
	case int32:
		bpm = float64(v)
	default:
		l.logger.Warn("tempo message with unsupported argument type",
			l.logger.Field().String("source", source.Name),
		)
		return
	}

	if err := l.tempo.HandleTempo(ctx, bpm); err != nil {
		l.logger.Warn("tempo update failed",
			l.logger.Field().String("source", source.Name),
			l.logger.Field().Float64("bpm", bpm),
			l.logger.Field().Error("error", err),
		)
	}
}
