// Package router is the event orchestrator: it consumes decoded inbound
// events from the active sessions, resolves them through the routing table
// and the program state tracker, and invokes the command dispatcher or the
// clock relay. Every event terminates as either dispatched or dropped;
// dispatch errors are reported and never halt the loop.
package router

import (
	"context"
	"sync/atomic"

	"github.com/leandrodaf/midirouter/internal/catalog"
	"github.com/leandrodaf/midirouter/internal/clock"
	"github.com/leandrodaf/midirouter/internal/dispatch"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/internal/state"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Stats are cumulative event outcome counters.
type Stats struct {
	Dispatched uint64 // Events that reached the dispatcher or the clock relay.
	Dropped    uint64 // Events dropped as unrouted, unknown program or ignored.
}

// Router resolves and executes inbound events. Safe for concurrent use from
// any number of session consumer goroutines: the routing table and catalog
// are read-only and the state tracker synchronizes per key.
type Router struct {
	table      *routing.Table
	catalog    *catalog.Catalog
	state      *state.Tracker
	dispatcher *dispatch.Dispatcher
	clock      *clock.Relay
	logger     contracts.Logger
	onError    func(error)

	dispatched atomic.Uint64
	dropped    atomic.Uint64
}

// New returns a router over the given immutable configuration and
// collaborators. onError may be nil; dispatch errors are then only logged.
func New(
	table *routing.Table,
	cat *catalog.Catalog,
	tracker *state.Tracker,
	dispatcher *dispatch.Dispatcher,
	relay *clock.Relay,
	logger contracts.Logger,
	onError func(error),
) *Router {
	return &Router{
		table:      table,
		catalog:    cat,
		state:      tracker,
		dispatcher: dispatcher,
		clock:      relay,
		logger:     logger,
		onError:    onError,
	}
}

// Consume processes events from a single session stream until the stream is
// closed or the context is cancelled. Events of one stream are handled
// sequentially, preserving per-(session, channel) arrival order.
func (r *Router) Consume(ctx context.Context, events <-chan contracts.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.Handle(ev)
		}
	}
}

// Handle resolves and executes a single inbound event.
func (r *Router) Handle(ev contracts.Event) {
	switch ev.Kind {
	case contracts.EventClockTick:
		// Clock bypasses channel and program resolution entirely.
		r.clock.OnTick(ev.Session)
		r.dispatched.Add(1)

	case contracts.EventProgramChange:
		r.handleProgramChange(ev)

	case contracts.EventControlChange:
		r.handleControlChange(ev)

	default:
		r.drop(ev, "unknown event kind")
	}
}

func (r *Router) handleProgramChange(ev contracts.Event) {
	// State is updated before destination resolution so a later Control
	// Change in dispatch mode sees this program even on unrouted channels.
	r.state.ObserveProgramChange(ev.Session, ev.Channel, ev.Program)

	entry, ok := r.table.Resolve(ev.Session, ev.Channel)
	if !ok {
		r.drop(ev, "unrouted channel")
		return
	}
	prog, ok := r.catalog.LookupProgram(entry.DeviceID, ev.Program)
	if !ok {
		r.drop(ev, "unknown program")
		return
	}
	dev, _ := r.catalog.Lookup(entry.DeviceID)
	r.execute(dev, prog, entry)
}

func (r *Router) handleControlChange(ev contracts.Event) {
	entry, ok := r.table.Resolve(ev.Session, ev.Channel)
	if !ok {
		r.drop(ev, "unrouted channel")
		return
	}

	switch entry.CCMode {
	case routing.CCIgnore:
		r.drop(ev, "control change ignored")

	case routing.CCDispatch:
		program, ok := r.state.CurrentProgram(ev.Session, ev.Channel)
		if !ok {
			r.drop(ev, "no program observed yet")
			return
		}
		prog, ok := r.catalog.LookupProgram(entry.DeviceID, program)
		if !ok {
			r.drop(ev, "unknown program")
			return
		}
		dev, _ := r.catalog.Lookup(entry.DeviceID)
		r.execute(dev, prog, entry)

	default: // CCForward
		cmd := catalog.Command{
			Kind:       catalog.CommandControlChange,
			Channel:    ev.Channel,
			Controller: ev.Controller,
			Value:      ev.Value,
		}
		if err := r.dispatcher.ExecuteCommand(cmd, entry); err != nil {
			r.report(err)
		}
		r.dispatched.Add(1)
	}
}

func (r *Router) execute(dev *catalog.Device, prog *catalog.Program, entry *routing.Entry) {
	// Terminal state is dispatched regardless of per-command errors: the
	// batch was attempted, not guaranteed.
	if err := r.dispatcher.Execute(dev, prog, entry); err != nil {
		r.report(err)
	}
	r.dispatched.Add(1)
}

func (r *Router) drop(ev contracts.Event, reason string) {
	r.dropped.Add(1)
	r.logger.Debug("event dropped",
		r.logger.Field().String("session", ev.Session),
		r.logger.Field().String("kind", ev.Kind.String()),
		r.logger.Field().Uint8("channel", ev.Channel),
		r.logger.Field().String("reason", reason),
	)
}

func (r *Router) report(err error) {
	r.logger.Warn("dispatch error", r.logger.Field().Error("error", err))
	if r.onError != nil {
		r.onError(err)
	}
}

// Stats returns a snapshot of the cumulative event outcome counters.
func (r *Router) Stats() Stats {
	return Stats{
		Dispatched: r.dispatched.Load(),
		Dropped:    r.dropped.Load(),
	}
}
