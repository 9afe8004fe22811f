package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrodaf/midirouter/internal/catalog"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Device{
		{ID: "mooer_m2", Kind: catalog.DeviceMIDI},
		{ID: "x32", Kind: catalog.DeviceOSC},
	})
	require.NoError(t, err)
	return cat
}

func testSessions() map[string]contracts.SessionConfig {
	return map[string]contracts.SessionConfig{
		"MainInput": {Name: "MainInput", Port: 5004, Listen: true},
		"Output1":   {Name: "Output1", Port: 5006},
	}
}

func midiEntry(session string, channel uint8) routing.Entry {
	return routing.Entry{
		Session:  session,
		Channel:  channel,
		DeviceID: "mooer_m2",
		Destination: routing.Destination{
			Kind:        routing.DestRTPMIDI,
			SessionName: "Output1",
		},
	}
}

// TestBuildAndResolve verifies the happy path and the CC mode default.
func TestBuildAndResolve(t *testing.T) {
	entries := []routing.Entry{
		midiEntry("MainInput", 1),
		{
			Session:  "MainInput",
			Channel:  2,
			DeviceID: "x32",
			CCMode:   routing.CCIgnore,
			Destination: routing.Destination{
				Kind: routing.DestOSC,
				Host: "192.168.1.1",
				Port: 10023,
			},
		},
	}

	table, err := routing.Build(entries, testCatalog(t), testSessions())
	require.NoError(t, err)

	entry, ok := table.Resolve("MainInput", 1)
	require.True(t, ok)
	assert.Equal(t, "mooer_m2", entry.DeviceID)
	assert.Equal(t, routing.CCForward, entry.CCMode, "empty CC mode defaults to forward")

	entry, ok = table.Resolve("MainInput", 2)
	require.True(t, ok)
	assert.Equal(t, routing.CCIgnore, entry.CCMode)

	_, ok = table.Resolve("MainInput", 3)
	assert.False(t, ok, "unrouted channel resolves to nothing")
	_, ok = table.Resolve("Other", 1)
	assert.False(t, ok, "unknown session resolves to nothing")

	assert.Len(t, table.Entries(), 2)
}

// TestBuildValidation exercises every fatal configuration error.
func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []routing.Entry
		wantErr error
	}{
		{
			name: "unknown device",
			entries: []routing.Entry{{
				Session: "MainInput", Channel: 1, DeviceID: "ghost",
				Destination: routing.Destination{Kind: routing.DestRTPMIDI, SessionName: "Output1"},
			}},
			wantErr: routing.ErrUnknownDevice,
		},
		{
			name:    "channel zero",
			entries: []routing.Entry{midiEntry("MainInput", 0)},
			wantErr: routing.ErrChannelRange,
		},
		{
			name:    "channel seventeen",
			entries: []routing.Entry{midiEntry("MainInput", 17)},
			wantErr: routing.ErrChannelRange,
		},
		{
			name: "duplicate route",
			entries: []routing.Entry{
				midiEntry("MainInput", 1),
				midiEntry("MainInput", 1),
			},
			wantErr: routing.ErrDuplicateRoute,
		},
		{
			name: "unknown destination session",
			entries: []routing.Entry{{
				Session: "MainInput", Channel: 1, DeviceID: "mooer_m2",
				Destination: routing.Destination{Kind: routing.DestRTPMIDI, SessionName: "Nowhere"},
			}},
			wantErr: routing.ErrUnknownDestSession,
		},
		{
			name: "missing listen session",
			entries: []routing.Entry{{
				Channel: 1, DeviceID: "mooer_m2",
				Destination: routing.Destination{Kind: routing.DestRTPMIDI, SessionName: "Output1"},
			}},
			wantErr: routing.ErrEmptySession,
		},
		{
			name: "send channel out of range",
			entries: []routing.Entry{{
				Session: "MainInput", Channel: 1, DeviceID: "mooer_m2", SendChannel: 17,
				Destination: routing.Destination{Kind: routing.DestRTPMIDI, SessionName: "Output1"},
			}},
			wantErr: routing.ErrSendChannelRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := routing.Build(tt.entries, testCatalog(t), testSessions())
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestBuildSucceedsForValidConfig verifies construction succeeds iff every
// reference resolves: a valid configuration builds without error.
func TestBuildSucceedsForValidConfig(t *testing.T) {
	entries := make([]routing.Entry, 0, 16)
	for ch := uint8(1); ch <= 16; ch++ {
		entries = append(entries, midiEntry("MainInput", ch))
	}
	table, err := routing.Build(entries, testCatalog(t), testSessions())
	require.NoError(t, err)
	assert.Len(t, table.Entries(), 16)
}
