package contracts

import (
	"context"

	"gitlab.com/gomidi/midi/v2"
)

// PeerConfig describes a remote session to actively connect to.
type PeerConfig struct {
	Host string // Remote host address.
	Port int    // Remote port.
	Name string // Remote session name, informational.
}

// SessionConfig describes a single network MIDI session owned by the router.
type SessionConfig struct {
	Name      string       // Unique session name.
	Port      int          // Local port the session is bound to.
	Listen    bool         // Whether inbound events are consumed from this session.
	ConnectTo []PeerConfig // Remote sessions to invite on startup.
	ClockFrom string       // Name of the session whose timing clock this session receives, if any.
}

// OSCSourceConfig describes a UDP port to listen on for incoming OSC messages.
type OSCSourceConfig struct {
	Name string // Source name, used in logs.
	Port int    // UDP port to bind.
}

// MIDITransport is the low-level network MIDI session transport. It owns
// packet framing, clock negotiation and RTP sequencing; the router only
// consumes decoded events and submits wire messages by session name.
type MIDITransport interface {
	// Listen starts the named session and returns the stream of decoded
	// inbound events. The stream is closed when the context is cancelled.
	Listen(ctx context.Context, cfg SessionConfig) (<-chan Event, error)
	// Connect invites a remote participant into an already started session.
	Connect(ctx context.Context, cfg SessionConfig, peer PeerConfig) error
	// SendMIDI submits a wire message for delivery on the named session.
	SendMIDI(sessionName string, msg midi.Message) error
}

// OSCSender delivers a single OSC message to a host and port.
type OSCSender interface {
	Send(host string, port int, address string, args []OSCArg) error
}
