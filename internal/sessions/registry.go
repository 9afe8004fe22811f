// Package sessions keeps the runtime set of active network MIDI sessions
// and exposes the outbound send path used by the dispatcher and the clock
// relay. The transport itself is an external collaborator; the registry only
// associates session names with it.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Error definitions for session registry issues.
var (
	ErrUnknownSession   = errors.New("session not registered")
	ErrDuplicateSession = errors.New("session already registered")
)

// Registry tracks active sessions by name.
type Registry struct {
	transport contracts.MIDITransport
	logger    contracts.Logger

	mu       sync.RWMutex
	sessions map[string]contracts.SessionConfig
}

// NewRegistry returns an empty registry bound to the given transport.
func NewRegistry(transport contracts.MIDITransport, logger contracts.Logger) *Registry {
	return &Registry{
		transport: transport,
		logger:    logger,
		sessions:  make(map[string]contracts.SessionConfig),
	}
}

// Open starts the configured session on the transport and registers it. For
// listening sessions the returned channel carries decoded inbound events and
// is closed when the context is cancelled; for output-only sessions it is
// nil. Configured peers are invited after the session starts.
func (r *Registry) Open(ctx context.Context, cfg contracts.SessionConfig) (<-chan contracts.Event, error) {
	r.mu.Lock()
	if _, exists := r.sessions[cfg.Name]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSession, cfg.Name)
	}
	r.sessions[cfg.Name] = cfg
	r.mu.Unlock()

	r.logger.Info("starting session",
		r.logger.Field().String("session", cfg.Name),
		r.logger.Field().Int("port", cfg.Port),
		r.logger.Field().Bool("listen", cfg.Listen),
	)

	var events <-chan contracts.Event
	if cfg.Listen {
		stream, err := r.transport.Listen(ctx, cfg)
		if err != nil {
			r.drop(cfg.Name)
			return nil, fmt.Errorf("listen session %q: %w", cfg.Name, err)
		}
		events = stream
	}

	for _, peer := range cfg.ConnectTo {
		r.logger.Info("inviting participant",
			r.logger.Field().String("session", cfg.Name),
			r.logger.Field().String("host", peer.Host),
			r.logger.Field().Int("port", peer.Port),
		)
		if err := r.transport.Connect(ctx, cfg, peer); err != nil {
			r.drop(cfg.Name)
			return nil, fmt.Errorf("connect session %q to %s:%d: %w", cfg.Name, peer.Host, peer.Port, err)
		}
	}

	return events, nil
}

func (r *Registry) drop(name string) {
	r.mu.Lock()
	delete(r.sessions, name)
	r.mu.Unlock()
}

// SendMIDI submits a wire message on the named session.
func (r *Registry) SendMIDI(sessionName string, msg midi.Message) error {
	r.mu.RLock()
	_, ok := r.sessions[sessionName]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSession, sessionName)
	}
	return r.transport.SendMIDI(sessionName, msg)
}

// SendClock submits a single timing clock tick on the named session.
func (r *Registry) SendClock(sessionName string) error {
	return r.SendMIDI(sessionName, midi.TimingClock())
}

// Names returns the names of all registered sessions.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	return names
}
