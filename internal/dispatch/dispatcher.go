// Package dispatch executes a program's ordered command list against a
// routed destination, translating each abstract command into its transport
// wire form. Sends are fire-and-forget: failures are reported upward, never
// retried here, and never abort the remaining commands of a batch.
package dispatch

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/midirouter/internal/catalog"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Error definitions for dispatch issues.
var (
	// ErrCommandMismatch marks a command whose transport family does not
	// match the destination's. The command is skipped, not fatal to the batch.
	ErrCommandMismatch = errors.New("command type does not match destination transport")
	// ErrNoOSCSender is returned when an OSC command is dispatched without a
	// configured OSC sender.
	ErrNoOSCSender = errors.New("no OSC sender configured")
)

// MIDISender is the outbound MIDI path, satisfied by the session registry.
type MIDISender interface {
	SendMIDI(sessionName string, msg midi.Message) error
}

// Dispatcher translates commands and hands them to the transports.
type Dispatcher struct {
	midi   MIDISender
	osc    contracts.OSCSender
	logger contracts.Logger
}

// NewDispatcher returns a dispatcher sending MIDI through the given sender
// and OSC through the given OSC sender.
func NewDispatcher(midiSender MIDISender, oscSender contracts.OSCSender, logger contracts.Logger) *Dispatcher {
	return &Dispatcher{midi: midiSender, osc: oscSender, logger: logger}
}

// Execute runs the program's command list in order against the entry's
// destination. Per-command failures (type mismatches, transport errors) are
// collected and joined into the returned error; earlier sends are never
// rolled back and later commands still run.
func (d *Dispatcher) Execute(dev *catalog.Device, prog *catalog.Program, entry *routing.Entry) error {
	d.logger.Info("executing program",
		d.logger.Field().String("device", dev.Name),
		d.logger.Field().String("program", prog.Name),
		d.logger.Field().String("destination", entry.Destination.String()),
	)

	var errs []error
	for i := range prog.Commands {
		if err := d.ExecuteCommand(prog.Commands[i], entry); err != nil {
			d.logger.Warn("command failed",
				d.logger.Field().String("device", dev.ID),
				d.logger.Field().Int("command", i),
				d.logger.Field().Error("error", err),
			)
			errs = append(errs, fmt.Errorf("device %q command %d: %w", dev.ID, i, err))
		}
	}
	return errors.Join(errs...)
}

// ExecuteCommand translates and sends a single command to the entry's
// destination. A command whose transport family does not match the
// destination returns ErrCommandMismatch.
func (d *Dispatcher) ExecuteCommand(cmd catalog.Command, entry *routing.Entry) error {
	switch cmd.Kind {
	case catalog.CommandProgramChange:
		if entry.Destination.Kind != routing.DestRTPMIDI {
			return fmt.Errorf("%w: program change to %s", ErrCommandMismatch, entry.Destination)
		}
		msg := midi.ProgramChange(wireChannel(cmd.Channel, entry.SendChannel), cmd.Program&0x7F)
		return d.midi.SendMIDI(entry.Destination.SessionName, msg)

	case catalog.CommandControlChange:
		if entry.Destination.Kind != routing.DestRTPMIDI {
			return fmt.Errorf("%w: control change to %s", ErrCommandMismatch, entry.Destination)
		}
		msg := midi.ControlChange(wireChannel(cmd.Channel, entry.SendChannel), cmd.Controller&0x7F, cmd.Value&0x7F)
		return d.midi.SendMIDI(entry.Destination.SessionName, msg)

	case catalog.CommandOSC:
		if entry.Destination.Kind != routing.DestOSC {
			return fmt.Errorf("%w: osc message to %s", ErrCommandMismatch, entry.Destination)
		}
		if d.osc == nil {
			return ErrNoOSCSender
		}
		return d.osc.Send(entry.Destination.Host, entry.Destination.Port, cmd.Address, cmd.Args)

	default:
		return fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}

// wireChannel converts a configured 1-16 channel to the 0-15 wire value,
// applying the mapping's send-channel override when set.
func wireChannel(channel, override uint8) uint8 {
	if override != 0 {
		channel = override
	}
	if channel > 0 {
		channel--
	}
	return channel & 0x0F
}
