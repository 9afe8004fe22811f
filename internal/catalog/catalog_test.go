package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrodaf/midirouter/internal/catalog"
)

func testDevices() []catalog.Device {
	return []catalog.Device{
		{
			ID:   "mooer_m2",
			Name: "Mooer M2",
			Kind: catalog.DeviceMIDI,
			Programs: []catalog.Program{
				{Number: 0, Name: "Clean", Commands: []catalog.Command{
					{Kind: catalog.CommandProgramChange, Channel: 1, Program: 0},
				}},
				{Number: 5, Name: "Lead", Commands: []catalog.Command{
					{Kind: catalog.CommandProgramChange, Channel: 1, Program: 5},
					{Kind: catalog.CommandControlChange, Channel: 1, Controller: 7, Value: 100},
				}},
			},
		},
		{
			ID:   "x32",
			Name: "Behringer X32",
			Kind: catalog.DeviceOSC,
			Programs: []catalog.Program{
				{Number: 0, Name: "Scene 0", Commands: []catalog.Command{
					{Kind: catalog.CommandOSC, Address: "/ch/01/mix/fader"},
				}},
			},
		},
	}
}

// TestLookup verifies device lookup reports presence without error semantics.
func TestLookup(t *testing.T) {
	cat, err := catalog.New(testDevices())
	require.NoError(t, err)

	dev, ok := cat.Lookup("mooer_m2")
	require.True(t, ok)
	assert.Equal(t, "Mooer M2", dev.Name)
	assert.Equal(t, catalog.DeviceMIDI, dev.Kind)

	_, ok = cat.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, cat.Len())
}

// TestLookupProgram verifies program lookup by device and number.
func TestLookupProgram(t *testing.T) {
	cat, err := catalog.New(testDevices())
	require.NoError(t, err)

	prog, ok := cat.LookupProgram("mooer_m2", 5)
	require.True(t, ok)
	assert.Equal(t, "Lead", prog.Name)
	require.Len(t, prog.Commands, 2)
	// Order of the command list must survive loading.
	assert.Equal(t, catalog.CommandProgramChange, prog.Commands[0].Kind)
	assert.Equal(t, catalog.CommandControlChange, prog.Commands[1].Kind)

	_, ok = cat.LookupProgram("mooer_m2", 99)
	assert.False(t, ok, "undefined program must report absence")

	_, ok = cat.LookupProgram("missing", 0)
	assert.False(t, ok, "unknown device must report absence")
}

// TestNewValidation exercises the fail-fast construction checks.
func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		devices []catalog.Device
		wantErr error
	}{
		{
			name: "duplicate device id",
			devices: []catalog.Device{
				{ID: "dup", Kind: catalog.DeviceMIDI},
				{ID: "dup", Kind: catalog.DeviceMIDI},
			},
			wantErr: catalog.ErrDuplicateDevice,
		},
		{
			name: "duplicate program number",
			devices: []catalog.Device{
				{ID: "dev", Programs: []catalog.Program{
					{Number: 3}, {Number: 3},
				}},
			},
			wantErr: catalog.ErrDuplicateProgram,
		},
		{
			name: "program number above 127",
			devices: []catalog.Device{
				{ID: "dev", Programs: []catalog.Program{{Number: 128}}},
			},
			wantErr: catalog.ErrProgramRange,
		},
		{
			name: "command channel out of range",
			devices: []catalog.Device{
				{ID: "dev", Programs: []catalog.Program{
					{Number: 0, Commands: []catalog.Command{
						{Kind: catalog.CommandProgramChange, Channel: 17},
					}},
				}},
			},
			wantErr: catalog.ErrChannelRange,
		},
		{
			name: "tempo command channel out of range",
			devices: []catalog.Device{
				{ID: "dev", Tempo: &catalog.TempoSpec{
					Kind: catalog.TempoTap,
					Commands: []catalog.Command{
						{Kind: catalog.CommandControlChange, Channel: 0},
					},
				}},
			},
			wantErr: catalog.ErrChannelRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.New(tt.devices)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
