package dispatch_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrodaf/midirouter/internal/catalog"
	"github.com/leandrodaf/midirouter/internal/dispatch"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/internal/testsupport"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

func rtpEntry() *routing.Entry {
	return &routing.Entry{
		Session: "MainInput", Channel: 1, DeviceID: "mooer_m2",
		Destination: routing.Destination{Kind: routing.DestRTPMIDI, SessionName: "Output1"},
	}
}

func oscEntry() *routing.Entry {
	return &routing.Entry{
		Session: "MainInput", Channel: 1, DeviceID: "x32",
		Destination: routing.Destination{Kind: routing.DestOSC, Host: "192.168.1.1", Port: 10023},
	}
}

// TestExecuteMIDIProgram verifies the wire translation of a MIDI program:
// one Program Change on channel 1 comes out as exactly one message on the
// destination session with wire channel 0 and the configured program.
func TestExecuteMIDIProgram(t *testing.T) {
	midiSender := &testsupport.MIDISender{}
	d := dispatch.NewDispatcher(midiSender, &testsupport.OSCSender{}, testsupport.NopLogger{})

	dev := &catalog.Device{ID: "mooer_m2", Name: "Mooer M2", Kind: catalog.DeviceMIDI}
	prog := &catalog.Program{Number: 0, Name: "Clean", Commands: []catalog.Command{
		{Kind: catalog.CommandProgramChange, Channel: 1, Program: 0},
	}}

	require.NoError(t, d.Execute(dev, prog, rtpEntry()))

	sends := midiSender.Sends()
	require.Len(t, sends, 1)
	assert.Equal(t, "Output1", sends[0].Session)

	var channel, program uint8
	require.True(t, sends[0].Msg.GetProgramChange(&channel, &program))
	assert.Equal(t, uint8(0), channel, "configured channel 1 is wire channel 0")
	assert.Equal(t, uint8(0), program)
}

// TestExecutePreservesOrder verifies commands reach the transport in the
// program's configured order.
func TestExecutePreservesOrder(t *testing.T) {
	midiSender := &testsupport.MIDISender{}
	d := dispatch.NewDispatcher(midiSender, &testsupport.OSCSender{}, testsupport.NopLogger{})

	dev := &catalog.Device{ID: "mooer_m2", Kind: catalog.DeviceMIDI}
	prog := &catalog.Program{Number: 1, Commands: []catalog.Command{
		{Kind: catalog.CommandProgramChange, Channel: 1, Program: 5},
		{Kind: catalog.CommandControlChange, Channel: 1, Controller: 7, Value: 100},
		{Kind: catalog.CommandControlChange, Channel: 1, Controller: 10, Value: 64},
	}}

	require.NoError(t, d.Execute(dev, prog, rtpEntry()))

	sends := midiSender.Sends()
	require.Len(t, sends, 3)

	var channel, program uint8
	require.True(t, sends[0].Msg.GetProgramChange(&channel, &program))
	assert.Equal(t, uint8(5), program)

	var controller, value uint8
	require.True(t, sends[1].Msg.GetControlChange(&channel, &controller, &value))
	assert.Equal(t, uint8(7), controller)
	require.True(t, sends[2].Msg.GetControlChange(&channel, &controller, &value))
	assert.Equal(t, uint8(10), controller)
}

// TestExecuteOSCProgram covers the OSC endpoint scenario: a fader message
// with a single float argument goes out once to the configured host:port.
func TestExecuteOSCProgram(t *testing.T) {
	oscSender := &testsupport.OSCSender{}
	d := dispatch.NewDispatcher(&testsupport.MIDISender{}, oscSender, testsupport.NopLogger{})

	dev := &catalog.Device{ID: "x32", Kind: catalog.DeviceOSC}
	prog := &catalog.Program{Number: 0, Commands: []catalog.Command{
		{Kind: catalog.CommandOSC, Address: "/ch/01/mix/fader", Args: []contracts.OSCArg{
			contracts.FloatArg(0.75),
		}},
	}}

	require.NoError(t, d.Execute(dev, prog, oscEntry()))

	sends := oscSender.Sends()
	require.Len(t, sends, 1)
	assert.Equal(t, "192.168.1.1", sends[0].Host)
	assert.Equal(t, 10023, sends[0].Port)
	assert.Equal(t, "/ch/01/mix/fader", sends[0].Address)
	require.Len(t, sends[0].Args, 1)
	assert.Equal(t, float32(0.75), sends[0].Args[0].Value())
}

// TestTypeMismatchSkipsCommand verifies a mismatched command is reported
// but does not prevent the remaining commands of the batch.
func TestTypeMismatchSkipsCommand(t *testing.T) {
	midiSender := &testsupport.MIDISender{}
	oscSender := &testsupport.OSCSender{}
	d := dispatch.NewDispatcher(midiSender, oscSender, testsupport.NopLogger{})

	dev := &catalog.Device{ID: "mooer_m2", Kind: catalog.DeviceMIDI}
	prog := &catalog.Program{Number: 0, Commands: []catalog.Command{
		{Kind: catalog.CommandOSC, Address: "/nope"},
		{Kind: catalog.CommandControlChange, Channel: 1, Controller: 7, Value: 100},
	}}

	err := d.Execute(dev, prog, rtpEntry())
	require.ErrorIs(t, err, dispatch.ErrCommandMismatch)

	assert.Len(t, midiSender.Sends(), 1, "command after the mismatch still dispatches")
	assert.Empty(t, oscSender.Sends(), "mismatched command is not silently redirected")
}

// TestMIDIToOSCDestinationMismatch verifies the inverse mismatch.
func TestMIDIToOSCDestinationMismatch(t *testing.T) {
	oscSender := &testsupport.OSCSender{}
	d := dispatch.NewDispatcher(&testsupport.MIDISender{}, oscSender, testsupport.NopLogger{})

	err := d.ExecuteCommand(catalog.Command{
		Kind: catalog.CommandProgramChange, Channel: 1, Program: 3,
	}, oscEntry())
	require.ErrorIs(t, err, dispatch.ErrCommandMismatch)
	assert.Empty(t, oscSender.Sends())
}

// TestSendChannelOverride verifies the mapping's send channel replaces the
// command's own channel on the wire.
func TestSendChannelOverride(t *testing.T) {
	midiSender := &testsupport.MIDISender{}
	d := dispatch.NewDispatcher(midiSender, &testsupport.OSCSender{}, testsupport.NopLogger{})

	entry := rtpEntry()
	entry.SendChannel = 10

	err := d.ExecuteCommand(catalog.Command{
		Kind: catalog.CommandProgramChange, Channel: 1, Program: 2,
	}, entry)
	require.NoError(t, err)

	sends := midiSender.Sends()
	require.Len(t, sends, 1)
	var channel, program uint8
	require.True(t, sends[0].Msg.GetProgramChange(&channel, &program))
	assert.Equal(t, uint8(9), channel, "send channel 10 is wire channel 9")
}

// TestTransportErrorContinuesBatch verifies a failed send is reported but
// later commands are still attempted.
func TestTransportErrorContinuesBatch(t *testing.T) {
	sendErr := errors.New("socket gone")
	midiSender := &testsupport.MIDISender{FailFor: map[string]error{"Output1": sendErr}}
	oscSender := &testsupport.OSCSender{}
	d := dispatch.NewDispatcher(midiSender, oscSender, testsupport.NopLogger{})

	dev := &catalog.Device{ID: "mooer_m2", Kind: catalog.DeviceMIDI}
	prog := &catalog.Program{Number: 0, Commands: []catalog.Command{
		{Kind: catalog.CommandProgramChange, Channel: 1, Program: 0},
		{Kind: catalog.CommandProgramChange, Channel: 1, Program: 1},
	}}

	err := d.Execute(dev, prog, rtpEntry())
	require.ErrorIs(t, err, sendErr)
	assert.Empty(t, midiSender.Sends(), "both sends failed at the transport")
}
