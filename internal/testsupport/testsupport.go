// Package testsupport provides shared fakes for package tests: a silent
// logger and capturing implementations of the outbound transport seams.
package testsupport

import (
	"context"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// NopLogger is a contracts.Logger that discards everything.
type NopLogger struct{}

func (NopLogger) Info(string, ...contracts.Field)  {}
func (NopLogger) Error(string, ...contracts.Field) {}
func (NopLogger) Debug(string, ...contracts.Field) {}
func (NopLogger) Warn(string, ...contracts.Field)  {}
func (NopLogger) Fatal(string, ...contracts.Field) {}
func (NopLogger) Field() contracts.Field           { return nopField{} }
func (NopLogger) SetLevel(contracts.LogLevel)      {}

type nopField struct{}

func (nopField) Bool(string, bool) contracts.Field       { return nopField{} }
func (nopField) Int(string, int) contracts.Field         { return nopField{} }
func (nopField) Float64(string, float64) contracts.Field { return nopField{} }
func (nopField) String(string, string) contracts.Field   { return nopField{} }
func (nopField) Error(string, error) contracts.Field     { return nopField{} }
func (nopField) Uint8(string, uint8) contracts.Field     { return nopField{} }

// MIDISend records one outbound MIDI message.
type MIDISend struct {
	Session string
	Msg     midi.Message
}

// MIDISender captures outbound MIDI messages and can fail sends per session.
type MIDISender struct {
	mu      sync.Mutex
	sends   []MIDISend
	FailFor map[string]error
}

// SendMIDI records the message, or returns the configured error for the
// session.
func (s *MIDISender) SendMIDI(sessionName string, msg midi.Message) error {
	if err, ok := s.FailFor[sessionName]; ok {
		return err
	}
	s.mu.Lock()
	s.sends = append(s.sends, MIDISend{Session: sessionName, Msg: msg})
	s.mu.Unlock()
	return nil
}

// SendClock records a timing clock tick for the session.
func (s *MIDISender) SendClock(sessionName string) error {
	return s.SendMIDI(sessionName, midi.TimingClock())
}

// Sends returns a snapshot of the recorded messages.
func (s *MIDISender) Sends() []MIDISend {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MIDISend, len(s.sends))
	copy(out, s.sends)
	return out
}

// OSCSend records one outbound OSC message.
type OSCSend struct {
	Host    string
	Port    int
	Address string
	Args    []contracts.OSCArg
}

// OSCSender captures outbound OSC messages.
type OSCSender struct {
	mu    sync.Mutex
	sends []OSCSend
	Err   error
}

// Send records the message, or returns the configured error.
func (s *OSCSender) Send(host string, port int, address string, args []contracts.OSCArg) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	s.sends = append(s.sends, OSCSend{Host: host, Port: port, Address: address, Args: args})
	s.mu.Unlock()
	return nil
}

// Sends returns a snapshot of the recorded messages.
func (s *OSCSender) Sends() []OSCSend {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]OSCSend, len(s.sends))
	copy(out, s.sends)
	return out
}

// Transport is an in-memory contracts.MIDITransport: inbound events are fed
// through per-session channels and outbound messages are captured.
type Transport struct {
	MIDISender

	mu      sync.Mutex
	streams map[string]chan contracts.Event
}

// NewTransport returns an empty in-memory transport.
func NewTransport() *Transport {
	return &Transport{streams: make(map[string]chan contracts.Event)}
}

// Listen returns the session's inbound stream, creating it on first use.
func (t *Transport) Listen(ctx context.Context, cfg contracts.SessionConfig) (<-chan contracts.Event, error) {
	return t.stream(cfg.Name), nil
}

// Connect is a no-op.
func (t *Transport) Connect(ctx context.Context, cfg contracts.SessionConfig, peer contracts.PeerConfig) error {
	return nil
}

// Emit delivers an inbound event on its session's stream.
func (t *Transport) Emit(ev contracts.Event) {
	t.stream(ev.Session) <- ev
}

// CloseStreams closes all inbound streams.
func (t *Transport) CloseStreams() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.streams {
		close(ch)
	}
	t.streams = make(map[string]chan contracts.Event)
}

func (t *Transport) stream(session string) chan contracts.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.streams[session]
	if !ok {
		ch = make(chan contracts.Event, 64)
		t.streams[session] = ch
	}
	return ch
}
