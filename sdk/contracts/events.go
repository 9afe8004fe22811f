package contracts

// EventKind identifies the type of a decoded inbound MIDI event.
type EventKind int

const (
	// EventProgramChange is a MIDI Program Change event selecting a numbered preset.
	EventProgramChange EventKind = iota
	// EventControlChange is a MIDI Control Change event setting a controller to a value.
	EventControlChange
	// EventClockTick is a MIDI timing clock event (24 ticks per quarter note).
	EventClockTick
)

// String returns the human-readable name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventProgramChange:
		return "program_change"
	case EventControlChange:
		return "control_change"
	case EventClockTick:
		return "clock_tick"
	default:
		return "unknown"
	}
}

// Event is a decoded MIDI event delivered by the network transport, tagged
// with the name of the session it arrived on.
//
// Channel is 1-16 as configured in mappings, not the 0-15 wire value; the
// transport is responsible for the translation. Channel, Program, Controller
// and Value are meaningful only for the event kinds that carry them.
type Event struct {
	Session    string    // Name of the session the event arrived on.
	Kind       EventKind // Type of the event.
	Channel    uint8     // MIDI channel (1-16) for Program/Control Change.
	Program    uint8     // Program number (0-127) for Program Change.
	Controller uint8     // Controller number (0-127) for Control Change.
	Value      uint8     // Controller value (0-127) for Control Change.
}
