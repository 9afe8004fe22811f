package config

import (
	"encoding/json"
	"fmt"

	"github.com/leandrodaf/midirouter/internal/catalog"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Raw document shapes matching the JSON files; tagged unions carry a "type"
// discriminator and are converted to their typed form after decoding.

type devicesFile struct {
	Devices map[string]rawDevice `json:"devices"`
}

type rawDevice struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	DeviceType string        `json:"device_type"`
	Programs   []rawProgram  `json:"programs"`
	TempoSpec  *rawTempoSpec `json:"tempo_spec"`
}

type rawProgram struct {
	Number  uint8        `json:"number"`
	Name    string       `json:"name"`
	Commands []rawCommand `json:"commands"`
}

type rawCommand struct {
	Type       string   `json:"type"`
	Channel    uint8    `json:"channel"`
	Program    uint8    `json:"program"`
	Controller uint8    `json:"controller"`
	Value      uint8    `json:"value"`
	Address    string   `json:"address"`
	Args       []rawArg `json:"args"`
}

type rawArg struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
	Min   float32         `json:"min"`
	Max   float32         `json:"max"`
}

type rawTempoSpec struct {
	Type     string       `json:"type"`
	Commands []rawCommand `json:"commands"`
	DataType string       `json:"data_type"`
}

type mapFile struct {
	Sessions   []rawSession   `json:"rtp_midi_sessions"`
	OSCSources []rawOSCSource `json:"osc_sources"`
	Mappings   []rawMapping   `json:"device_mappings"`
}

type rawSession struct {
	Name      string    `json:"name"`
	Port      int       `json:"port"`
	Listen    bool      `json:"listen"`
	ClockFrom string    `json:"clock_from"`
	ConnectTo []rawPeer `json:"connect_to"`
}

type rawPeer struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Name string `json:"name"`
}

type rawOSCSource struct {
	Name string `json:"name"`
	Port int    `json:"port"`
}

type rawMapping struct {
	DeviceID      string         `json:"device_id"`
	ListenSession string         `json:"listen_session"`
	ListenChannel uint8          `json:"listen_channel"`
	SendChannel   uint8          `json:"send_channel"`
	CCMode        string         `json:"cc_mode"`
	Destination   rawDestination `json:"destination"`
}

type rawDestination struct {
	Type        string `json:"type"`
	SessionName string `json:"session_name"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
}

func (d rawDevice) toDevice(id string) (catalog.Device, error) {
	deviceID := d.ID
	if deviceID == "" {
		deviceID = id
	}
	if deviceID != id {
		return catalog.Device{}, fmt.Errorf("device key %q does not match id %q", id, d.ID)
	}

	dev := catalog.Device{
		ID:   deviceID,
		Name: d.Name,
		Kind: catalog.DeviceKind(d.DeviceType),
	}
	for _, p := range d.Programs {
		commands, err := toCommands(deviceID, p.Commands)
		if err != nil {
			return catalog.Device{}, err
		}
		dev.Programs = append(dev.Programs, catalog.Program{
			Number:   p.Number,
			Name:     p.Name,
			Commands: commands,
		})
	}
	if d.TempoSpec != nil {
		spec, err := d.TempoSpec.toSpec(deviceID)
		if err != nil {
			return catalog.Device{}, err
		}
		dev.Tempo = spec
	}
	return dev, nil
}

func (s rawTempoSpec) toSpec(deviceID string) (*catalog.TempoSpec, error) {
	commands, err := toCommands(deviceID, s.Commands)
	if err != nil {
		return nil, err
	}
	spec := &catalog.TempoSpec{Commands: commands}
	switch s.Type {
	case "tap_tempo":
		spec.Kind = catalog.TempoTap
	case "raw_tempo":
		spec.Kind = catalog.TempoRaw
		spec.DataType = catalog.TempoDataType(s.DataType)
		if spec.DataType == "" {
			spec.DataType = catalog.TempoDataBPM
		}
	default:
		return nil, fmt.Errorf("device %q: unknown tempo spec type %q", deviceID, s.Type)
	}
	return spec, nil
}

func toCommands(deviceID string, raws []rawCommand) ([]catalog.Command, error) {
	commands := make([]catalog.Command, 0, len(raws))
	for i, raw := range raws {
		cmd, err := raw.toCommand()
		if err != nil {
			return nil, fmt.Errorf("device %q command %d: %w", deviceID, i, err)
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

func (c rawCommand) toCommand() (catalog.Command, error) {
	switch c.Type {
	case "program_change":
		return catalog.Command{
			Kind:    catalog.CommandProgramChange,
			Channel: c.Channel,
			Program: c.Program,
		}, nil
	case "control_change":
		return catalog.Command{
			Kind:       catalog.CommandControlChange,
			Channel:    c.Channel,
			Controller: c.Controller,
			Value:      c.Value,
		}, nil
	case "osc":
		args := make([]contracts.OSCArg, 0, len(c.Args))
		for i, raw := range c.Args {
			arg, err := raw.toArg()
			if err != nil {
				return catalog.Command{}, fmt.Errorf("osc arg %d: %w", i, err)
			}
			args = append(args, arg)
		}
		return catalog.Command{
			Kind:    catalog.CommandOSC,
			Address: c.Address,
			Args:    args,
		}, nil
	default:
		return catalog.Command{}, fmt.Errorf("unknown command type %q", c.Type)
	}
}

func (a rawArg) toArg() (contracts.OSCArg, error) {
	switch a.Type {
	case "int":
		var v int32
		if err := json.Unmarshal(a.Value, &v); err != nil {
			return contracts.OSCArg{}, fmt.Errorf("int value: %w", err)
		}
		return contracts.IntArg(v), nil
	case "float":
		var v float32
		if err := json.Unmarshal(a.Value, &v); err != nil {
			return contracts.OSCArg{}, fmt.Errorf("float value: %w", err)
		}
		return contracts.FloatArg(v), nil
	case "string":
		var v string
		if err := json.Unmarshal(a.Value, &v); err != nil {
			return contracts.OSCArg{}, fmt.Errorf("string value: %w", err)
		}
		return contracts.StringArg(v), nil
	case "bool":
		var v bool
		if err := json.Unmarshal(a.Value, &v); err != nil {
			return contracts.OSCArg{}, fmt.Errorf("bool value: %w", err)
		}
		return contracts.BoolArg(v), nil
	case "normalized":
		var v float32
		if err := json.Unmarshal(a.Value, &v); err != nil {
			return contracts.OSCArg{}, fmt.Errorf("normalized value: %w", err)
		}
		return contracts.NormalizedArg(v, a.Min, a.Max), nil
	default:
		return contracts.OSCArg{}, fmt.Errorf("unknown osc arg type %q", a.Type)
	}
}

func (s rawSession) toSession() contracts.SessionConfig {
	cfg := contracts.SessionConfig{
		Name:      s.Name,
		Port:      s.Port,
		Listen:    s.Listen,
		ClockFrom: s.ClockFrom,
	}
	for _, peer := range s.ConnectTo {
		cfg.ConnectTo = append(cfg.ConnectTo, contracts.PeerConfig{
			Host: peer.Host,
			Port: peer.Port,
			Name: peer.Name,
		})
	}
	return cfg
}

func (m rawMapping) toEntry() (routing.Entry, error) {
	entry := routing.Entry{
		Session:     m.ListenSession,
		Channel:     m.ListenChannel,
		DeviceID:    m.DeviceID,
		SendChannel: m.SendChannel,
		CCMode:      routing.CCMode(m.CCMode),
	}
	switch m.Destination.Type {
	case "rtp_midi":
		if m.Destination.SessionName == "" {
			return routing.Entry{}, fmt.Errorf("device %q: rtp_midi destination needs session_name", m.DeviceID)
		}
		entry.Destination = routing.Destination{
			Kind:        routing.DestRTPMIDI,
			SessionName: m.Destination.SessionName,
		}
	case "osc":
		if m.Destination.Host == "" || m.Destination.Port == 0 {
			return routing.Entry{}, fmt.Errorf("device %q: osc destination needs host and port", m.DeviceID)
		}
		entry.Destination = routing.Destination{
			Kind: routing.DestOSC,
			Host: m.Destination.Host,
			Port: m.Destination.Port,
		}
	default:
		return routing.Entry{}, fmt.Errorf("device %q: unknown destination type %q", m.DeviceID, m.Destination.Type)
	}
	return entry, nil
}
