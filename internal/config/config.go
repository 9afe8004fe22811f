// Package config loads the device and map configuration files and builds
// the immutable structures the router runs on. Loading is fail-fast: any
// structural or referential problem aborts startup with a diagnostic naming
// the offending entry.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/leandrodaf/midirouter/internal/catalog"
	"github.com/leandrodaf/midirouter/internal/routing"
	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// Config is the fully validated runtime configuration.
type Config struct {
	Catalog    *catalog.Catalog
	Table      *routing.Table
	Sessions   []contracts.SessionConfig
	OSCSources []contracts.OSCSourceConfig
}

// SessionSet returns the sessions keyed by name.
func (c *Config) SessionSet() map[string]contracts.SessionConfig {
	set := make(map[string]contracts.SessionConfig, len(c.Sessions))
	for _, s := range c.Sessions {
		set[s.Name] = s
	}
	return set
}

// Load reads and validates the device and map configuration files.
func Load(devicesPath, mapPath string) (*Config, error) {
	devicesJSON, err := os.ReadFile(devicesPath)
	if err != nil {
		return nil, fmt.Errorf("read device config %q: %w", devicesPath, err)
	}
	mapJSON, err := os.ReadFile(mapPath)
	if err != nil {
		return nil, fmt.Errorf("read map config %q: %w", mapPath, err)
	}
	return Parse(devicesJSON, mapJSON)
}

// Parse validates the raw JSON documents against their schemas and builds
// the catalog, routing table and session configuration.
func Parse(devicesJSON, mapJSON []byte) (*Config, error) {
	if err := validateSchema(compiledDevicesSchema, devicesJSON, "device config"); err != nil {
		return nil, err
	}
	if err := validateSchema(compiledMapSchema, mapJSON, "map config"); err != nil {
		return nil, err
	}

	var devices devicesFile
	if err := json.Unmarshal(devicesJSON, &devices); err != nil {
		return nil, fmt.Errorf("decode device config: %w", err)
	}
	var mapping mapFile
	if err := json.Unmarshal(mapJSON, &mapping); err != nil {
		return nil, fmt.Errorf("decode map config: %w", err)
	}

	cat, err := buildCatalog(devices)
	if err != nil {
		return nil, err
	}

	sessions, sessionSet, err := buildSessions(mapping.Sessions)
	if err != nil {
		return nil, err
	}

	sources, err := buildOSCSources(mapping.OSCSources)
	if err != nil {
		return nil, err
	}

	entries := make([]routing.Entry, 0, len(mapping.Mappings))
	for _, m := range mapping.Mappings {
		entry, err := m.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	table, err := routing.Build(entries, cat, sessionSet)
	if err != nil {
		return nil, err
	}

	return &Config{
		Catalog:    cat,
		Table:      table,
		Sessions:   sessions,
		OSCSources: sources,
	}, nil
}

func validateSchema(schema interface{ Validate(v interface{}) error }, doc []byte, what string) error {
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("%s is not valid JSON: %w", what, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func buildCatalog(file devicesFile) (*catalog.Catalog, error) {
	// Map iteration order is randomized; sort keys so validation errors are
	// deterministic across runs.
	ids := make([]string, 0, len(file.Devices))
	for id := range file.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	devices := make([]catalog.Device, 0, len(ids))
	for _, id := range ids {
		dev, err := file.Devices[id].toDevice(id)
		if err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	return catalog.New(devices)
}

func buildSessions(raws []rawSession) ([]contracts.SessionConfig, map[string]contracts.SessionConfig, error) {
	sessions := make([]contracts.SessionConfig, 0, len(raws))
	set := make(map[string]contracts.SessionConfig, len(raws))
	for _, raw := range raws {
		cfg := raw.toSession()
		if _, exists := set[cfg.Name]; exists {
			return nil, nil, fmt.Errorf("duplicate session name %q", cfg.Name)
		}
		set[cfg.Name] = cfg
		sessions = append(sessions, cfg)
	}
	// Clock sources must name configured sessions.
	for _, cfg := range sessions {
		if cfg.ClockFrom != "" {
			if _, ok := set[cfg.ClockFrom]; !ok {
				return nil, nil, fmt.Errorf("session %q receives clock from unknown session %q", cfg.Name, cfg.ClockFrom)
			}
		}
	}
	return sessions, set, nil
}

func buildOSCSources(raws []rawOSCSource) ([]contracts.OSCSourceConfig, error) {
	sources := make([]contracts.OSCSourceConfig, 0, len(raws))
	names := make(map[string]bool, len(raws))
	ports := make(map[int]string, len(raws))
	for _, raw := range raws {
		if names[raw.Name] {
			return nil, fmt.Errorf("duplicate osc source name %q", raw.Name)
		}
		if other, used := ports[raw.Port]; used {
			return nil, fmt.Errorf("osc sources %q and %q share port %d", other, raw.Name, raw.Port)
		}
		names[raw.Name] = true
		ports[raw.Port] = raw.Name
		sources = append(sources, contracts.OSCSourceConfig{Name: raw.Name, Port: raw.Port})
	}
	return sources, nil
}
