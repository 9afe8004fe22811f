// Package catalog holds the immutable device catalog: every configured
// device, its programs and the ordered command list of each program. The
// catalog is built once at startup and never mutated afterwards; absence of
// a device or program on lookup is a normal outcome, not an error.
package catalog

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Error definitions for catalog construction issues.
var (
	ErrDuplicateDevice  = errors.New("duplicate device id")
	ErrDuplicateProgram = errors.New("duplicate program number")
	ErrProgramRange     = errors.New("program number out of range")
	ErrChannelRange     = errors.New("command channel out of range")
)

// DeviceKind identifies which transport family a device's commands target.
type DeviceKind string

const (
	// DeviceMIDI is a device driven by MIDI commands.
	DeviceMIDI DeviceKind = "midi"
	// DeviceOSC is a device driven by OSC commands.
	DeviceOSC DeviceKind = "osc"
)

// CommandKind identifies the variant of a Command.
type CommandKind int

const (
	// CommandProgramChange is a MIDI Program Change command.
	CommandProgramChange CommandKind = iota
	// CommandControlChange is a MIDI Control Change command.
	CommandControlChange
	// CommandOSC is an OSC message command.
	CommandOSC
)

// String returns the configuration name of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CommandProgramChange:
		return "program_change"
	case CommandControlChange:
		return "control_change"
	case CommandOSC:
		return "osc"
	default:
		return "unknown"
	}
}

// Command is one abstract output action. Exactly one variant applies,
// selected by Kind; fields are immutable once loaded.
type Command struct {
	Kind CommandKind

	// MIDI variants. Channel is 1-16.
	Channel    uint8
	Program    uint8
	Controller uint8
	Value      uint8

	// OSC variant.
	Address string
	Args    []contracts.OSCArg
}

// Program is a numbered preset of a device with its ordered command list.
// Command order is significant and preserved through dispatch.
type Program struct {
	Number   uint8
	Name     string
	Commands []Command
}

// TempoKind identifies the variant of a TempoSpec.
type TempoKind int

const (
	// TempoTap sends four quarter-note taps using the spec's commands.
	TempoTap TempoKind = iota
	// TempoRaw sends the tempo value itself using the spec's commands.
	TempoRaw
)

// TempoDataType selects what value a raw tempo spec sends.
type TempoDataType string

const (
	// TempoDataBPM sends the tempo in beats per minute.
	TempoDataBPM TempoDataType = "tempo"
	// TempoDataTime sends the quarter-note duration in milliseconds.
	TempoDataTime TempoDataType = "time"
)

// TempoSpec describes how a device accepts tempo updates.
type TempoSpec struct {
	Kind     TempoKind
	Commands []Command
	DataType TempoDataType // TempoRaw only.
}

// Device is a single configured output device.
type Device struct {
	ID       string
	Name     string
	Kind     DeviceKind
	Programs []Program
	Tempo    *TempoSpec

	byNumber map[uint8]*Program
}

// Catalog is the loaded-once device index.
type Catalog struct {
	devices map[string]*Device
}

// New builds a catalog from the configured devices, indexing programs by
// number. It fails on duplicate device ids, duplicate program numbers within
// a device, or MIDI command fields outside their 7-bit/channel ranges.
func New(devices []Device) (*Catalog, error) {
	index := make(map[string]*Device, len(devices))
	for i := range devices {
		dev := devices[i]
		if _, exists := index[dev.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateDevice, dev.ID)
		}

		dev.byNumber = make(map[uint8]*Program, len(dev.Programs))
		for j := range dev.Programs {
			prog := &dev.Programs[j]
			if prog.Number > 127 {
				return nil, fmt.Errorf("%w: device %q program %d", ErrProgramRange, dev.ID, prog.Number)
			}
			if _, exists := dev.byNumber[prog.Number]; exists {
				return nil, fmt.Errorf("%w: device %q program %d", ErrDuplicateProgram, dev.ID, prog.Number)
			}
			if err := validateCommands(dev.ID, prog.Commands); err != nil {
				return nil, err
			}
			dev.byNumber[prog.Number] = prog
		}
		if dev.Tempo != nil {
			if err := validateCommands(dev.ID, dev.Tempo.Commands); err != nil {
				return nil, err
			}
		}
		index[dev.ID] = &dev
	}
	return &Catalog{devices: index}, nil
}

func validateCommands(deviceID string, commands []Command) error {
	for _, cmd := range commands {
		switch cmd.Kind {
		case CommandProgramChange, CommandControlChange:
			if cmd.Channel < 1 || cmd.Channel > 16 {
				return fmt.Errorf("%w: device %q channel %d", ErrChannelRange, deviceID, cmd.Channel)
			}
		case CommandOSC:
			// OSC addresses are free-form; nothing to range check.
		}
	}
	return nil
}

// Lookup returns the device with the given id. The second return value
// reports whether the device is configured.
func (c *Catalog) Lookup(deviceID string) (*Device, bool) {
	dev, ok := c.devices[deviceID]
	return dev, ok
}

// LookupProgram returns the numbered program of the given device. Absence of
// either the device or the program number is reported, never an error.
func (c *Catalog) LookupProgram(deviceID string, number uint8) (*Program, bool) {
	dev, ok := c.devices[deviceID]
	if !ok {
		return nil, false
	}
	prog, ok := dev.byNumber[number]
	return prog, ok
}

// Len returns the number of configured devices.
func (c *Catalog) Len() int {
	return len(c.devices)
}
