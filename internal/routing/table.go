// Package routing holds the immutable routing table mapping an inbound
// (session, channel) pair to a device and an output destination. The table
// is validated against the device catalog and the session set when built;
// any referential violation is a fatal configuration error, never deferred
// to event time.
package routing

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/midirouter/internal/catalog"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Error definitions for routing table construction issues.
var (
	ErrUnknownDevice      = errors.New("mapping references unknown device")
	ErrChannelRange       = errors.New("listen channel out of range")
	ErrSendChannelRange   = errors.New("send channel out of range")
	ErrDuplicateRoute     = errors.New("duplicate (session, channel) mapping")
	ErrUnknownDestSession = errors.New("destination references unknown session")
	ErrEmptySession       = errors.New("mapping has no listen session")
)

// DestinationKind identifies the variant of a Destination.
type DestinationKind int

const (
	// DestRTPMIDI targets a configured network MIDI session by name.
	DestRTPMIDI DestinationKind = iota
	// DestOSC targets an OSC endpoint by host and port.
	DestOSC
)

// Destination is the configured output target of a mapping.
type Destination struct {
	Kind        DestinationKind
	SessionName string // DestRTPMIDI only.
	Host        string // DestOSC only.
	Port        int    // DestOSC only.
}

// String renders the destination for diagnostics.
func (d Destination) String() string {
	if d.Kind == DestRTPMIDI {
		return fmt.Sprintf("rtp_midi(%s)", d.SessionName)
	}
	return fmt.Sprintf("osc(%s:%d)", d.Host, d.Port)
}

// CCMode selects what the router does with an inbound Control Change on a
// routed channel.
type CCMode string

const (
	// CCForward translates the Control Change verbatim to the destination.
	CCForward CCMode = "forward"
	// CCDispatch executes the current program's command list, as a Program
	// Change does.
	CCDispatch CCMode = "dispatch"
	// CCIgnore drops the event.
	CCIgnore CCMode = "ignore"
)

// Entry associates one inbound (session, channel) with a device and a
// destination. SendChannel, when non-zero, overrides the channel of
// MIDI-kind commands on dispatch.
type Entry struct {
	Session     string
	Channel     uint8 // 1-16.
	DeviceID    string
	SendChannel uint8 // 0 means no override.
	CCMode      CCMode
	Destination Destination
}

type routeKey struct {
	session string
	channel uint8
}

// Table is the immutable (session, channel) index. Safe for concurrent
// readers without locking.
type Table struct {
	routes  map[routeKey]*Entry
	entries []*Entry
}

// Build validates the mapping entries against the device catalog and the
// configured sessions and returns the immutable table. Unknown device ids,
// channels outside 1-16, duplicate (session, channel) pairs and destination
// session names without a matching SessionConfig all fail the build.
func Build(entries []Entry, cat *catalog.Catalog, sessions map[string]contracts.SessionConfig) (*Table, error) {
	t := &Table{
		routes:  make(map[routeKey]*Entry, len(entries)),
		entries: make([]*Entry, 0, len(entries)),
	}

	for i := range entries {
		entry := entries[i]
		if entry.Session == "" {
			return nil, fmt.Errorf("%w: device %q", ErrEmptySession, entry.DeviceID)
		}
		if entry.Channel < 1 || entry.Channel > 16 {
			return nil, fmt.Errorf("%w: session %q channel %d", ErrChannelRange, entry.Session, entry.Channel)
		}
		if entry.SendChannel > 16 {
			return nil, fmt.Errorf("%w: session %q send channel %d", ErrSendChannelRange, entry.Session, entry.SendChannel)
		}
		if _, ok := cat.Lookup(entry.DeviceID); !ok {
			return nil, fmt.Errorf("%w: %q (session %q channel %d)", ErrUnknownDevice, entry.DeviceID, entry.Session, entry.Channel)
		}
		if entry.Destination.Kind == DestRTPMIDI {
			if _, ok := sessions[entry.Destination.SessionName]; !ok {
				return nil, fmt.Errorf("%w: %q (device %q)", ErrUnknownDestSession, entry.Destination.SessionName, entry.DeviceID)
			}
		}
		if entry.CCMode == "" {
			entry.CCMode = CCForward
		}

		key := routeKey{session: entry.Session, channel: entry.Channel}
		if _, exists := t.routes[key]; exists {
			return nil, fmt.Errorf("%w: session %q channel %d", ErrDuplicateRoute, entry.Session, entry.Channel)
		}
		stored := entry
		t.routes[key] = &stored
		t.entries = append(t.entries, &stored)
	}
	return t, nil
}

// Resolve returns the entry for an inbound (session, channel), if any.
// Absence means the channel is unrouted, an expected outcome.
func (t *Table) Resolve(session string, channel uint8) (*Entry, bool) {
	entry, ok := t.routes[routeKey{session: session, channel: channel}]
	return entry, ok
}

// Entries returns all entries in configuration order. The returned slice
// must not be mutated.
func (t *Table) Entries() []*Entry {
	return t.entries
}
