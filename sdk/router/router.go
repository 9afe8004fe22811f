// Package router is the public entry point of the MIDI router: it wires the
// validated configuration and the injected transports into a running event
// routing engine.
package router

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/leandrodaf/midirouter/internal/clock"
	"github.com/leandrodaf/midirouter/internal/config"
	"github.com/leandrodaf/midirouter/internal/dispatch"
	"github.com/leandrodaf/midirouter/internal/osclisten"
	eventrouter "github.com/leandrodaf/midirouter/internal/router"
	"github.com/leandrodaf/midirouter/internal/sessions"
	"github.com/leandrodaf/midirouter/internal/state"
	"github.com/leandrodaf/midirouter/internal/tempo"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// ErrNoMIDITransport is returned when the configuration declares network
// MIDI sessions but no transport was injected.
var ErrNoMIDITransport = errors.New("configuration has RTP-MIDI sessions but no MIDI transport is set")

// Router is a fully wired routing engine ready to run.
type Router struct {
	cfg     *config.Config
	options contracts.RouterOptions

	registry *sessions.Registry
	engine   *eventrouter.Router
	tempo    *tempo.Engine
	listener *osclisten.Listener
}

// NewRouter wires a router for the given validated configuration.
// It applies default options (zap logger, UDP OSC sender) and verifies that
// a MIDI transport is present whenever the configuration needs one.
//
// cfg *config.Config: The loaded configuration.
// opts ...contracts.Option: A variadic list of option functions.
//
// Returns:
//   - *Router: The wired router.
//   - error: An error if the options are inconsistent with the configuration.
func NewRouter(cfg *config.Config, opts ...contracts.Option) (*Router, error) {
	options := applyDefaultOptions(opts...)

	if options.MIDITransport == nil && len(cfg.Sessions) > 0 {
		return nil, ErrNoMIDITransport
	}

	registry := sessions.NewRegistry(options.MIDITransport, options.Logger)
	dispatcher := dispatch.NewDispatcher(registry, options.OSCSender, options.Logger)
	relay := clock.NewRelay(cfg.Sessions, registry, options.Logger)
	tracker := state.NewTracker()
	engine := eventrouter.New(cfg.Table, cfg.Catalog, tracker, dispatcher, relay, options.Logger, options.OnError)
	tempoEngine := tempo.NewEngine(cfg.Catalog, cfg.Table, dispatcher, options.Logger)

	r := &Router{
		cfg:      cfg,
		options:  options,
		registry: registry,
		engine:   engine,
		tempo:    tempoEngine,
	}
	if len(cfg.OSCSources) > 0 {
		r.listener = osclisten.NewListener(cfg.OSCSources, tempoEngine, options.Logger)
	}
	return r, nil
}

// Run starts every configured session and OSC listener and processes events
// until the context is cancelled. Each listening session is consumed by its
// own goroutine so one slow session cannot starve the others; per-session
// event order is preserved.
func (r *Router) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, cfg := range r.cfg.Sessions {
		events, err := r.registry.Open(ctx, cfg)
		if err != nil {
			return err
		}
		if events != nil {
			stream := events
			group.Go(func() error {
				r.engine.Consume(ctx, stream)
				return nil
			})
		}
	}

	if r.listener != nil {
		group.Go(func() error {
			return r.listener.Run(ctx)
		})
	}

	r.options.Logger.Info("router running",
		r.options.Logger.Field().Int("sessions", len(r.cfg.Sessions)),
		r.options.Logger.Field().Int("devices", r.cfg.Catalog.Len()),
		r.options.Logger.Field().Int("mappings", len(r.cfg.Table.Entries())),
	)

	err := group.Wait()
	// Let in-flight tap sequences observe cancellation before returning so
	// shutdown never leaves goroutines behind.
	r.tempo.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stats returns the cumulative event outcome counters.
func (r *Router) Stats() eventrouter.Stats {
	return r.engine.Stats()
}

// Tempo exposes the tempo engine, e.g. to feed updates from a source other
// than the OSC listeners.
func (r *Router) Tempo() *tempo.Engine {
	return r.tempo
}

// SessionNames returns the names of the currently registered sessions.
func (r *Router) SessionNames() []string {
	return r.registry.Names()
}
