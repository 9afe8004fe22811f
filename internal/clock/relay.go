// Package clock forwards timing clock ticks from a listening session to the
// sessions configured to receive clock from it. The fan-out per source is
// precomputed at startup; OnTick walks a fixed slice so the hot path (24
// ticks per quarter note) does not allocate or scan tables.
package clock

import (
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// ClockSender is the outbound clock path, satisfied by the session registry.
type ClockSender interface {
	SendClock(sessionName string) error
}

// Relay fans timing clock ticks out to configured sessions.
type Relay struct {
	targets map[string][]string
	sender  ClockSender
	logger  contracts.Logger
}

// NewRelay precomputes the fan-out lists from the session configuration: a
// session with ClockFrom set receives every tick arriving on that source.
func NewRelay(sessions []contracts.SessionConfig, sender ClockSender, logger contracts.Logger) *Relay {
	targets := make(map[string][]string)
	for _, cfg := range sessions {
		if cfg.ClockFrom != "" {
			targets[cfg.ClockFrom] = append(targets[cfg.ClockFrom], cfg.Name)
		}
	}
	return &Relay{targets: targets, sender: sender, logger: logger}
}

// OnTick forwards one tick from the source session to every session
// configured to receive clock from it. Send failures are logged and do not
// stop the remaining forwards.
func (r *Relay) OnTick(sourceSession string) {
	for _, name := range r.targets[sourceSession] {
		if err := r.sender.SendClock(name); err != nil {
			r.logger.Warn("clock forward failed",
				r.logger.Field().String("source", sourceSession),
				r.logger.Field().String("target", name),
				r.logger.Field().Error("error", err),
			)
		}
	}
}

// Targets returns the precomputed fan-out for a source session. The returned
// slice must not be mutated.
func (r *Relay) Targets(sourceSession string) []string {
	return r.targets[sourceSession]
}
