package config

import "github.com/santhosh-tekuri/jsonschema/v5"

// JSON Schemas applied to the raw documents before semantic validation.
// Structural problems (wrong types, missing fields, out-of-range numbers)
// are caught here with a path to the offending entry; referential problems
// (unknown device ids, duplicate routes) are caught by the builders.

const devicesSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["devices"],
  "properties": {
    "devices": {
      "type": "object",
      "additionalProperties": {"$ref": "#/$defs/device"}
    }
  },
  "$defs": {
    "device": {
      "type": "object",
      "required": ["id", "name", "device_type", "programs"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "device_type": {"enum": ["midi", "osc"]},
        "programs": {"type": "array", "items": {"$ref": "#/$defs/program"}},
        "tempo_spec": {"$ref": "#/$defs/tempoSpec"}
      }
    },
    "program": {
      "type": "object",
      "required": ["number", "name", "commands"],
      "properties": {
        "number": {"type": "integer", "minimum": 0, "maximum": 127},
        "name": {"type": "string"},
        "commands": {"type": "array", "items": {"$ref": "#/$defs/command"}}
      }
    },
    "command": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["program_change", "control_change", "osc"]},
        "channel": {"type": "integer", "minimum": 1, "maximum": 16},
        "program": {"type": "integer", "minimum": 0, "maximum": 127},
        "controller": {"type": "integer", "minimum": 0, "maximum": 127},
        "value": {"type": "integer", "minimum": 0, "maximum": 127},
        "address": {"type": "string"},
        "args": {"type": "array", "items": {"$ref": "#/$defs/oscArg"}}
      }
    },
    "oscArg": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["int", "float", "string", "bool", "normalized"]},
        "value": {},
        "min": {"type": "number"},
        "max": {"type": "number"}
      }
    },
    "tempoSpec": {
      "type": "object",
      "required": ["type", "commands"],
      "properties": {
        "type": {"enum": ["tap_tempo", "raw_tempo"]},
        "commands": {"type": "array", "items": {"$ref": "#/$defs/command"}},
        "data_type": {"enum": ["tempo", "time"]}
      }
    }
  }
}`

const mapSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["rtp_midi_sessions", "device_mappings"],
  "properties": {
    "rtp_midi_sessions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "port"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "port": {"type": "integer", "minimum": 1, "maximum": 65535},
          "listen": {"type": "boolean"},
          "clock_from": {"type": "string"},
          "connect_to": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["host", "port"],
              "properties": {
                "host": {"type": "string", "minLength": 1},
                "port": {"type": "integer", "minimum": 1, "maximum": 65535},
                "name": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "osc_sources": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "port"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "port": {"type": "integer", "minimum": 1, "maximum": 65535}
        }
      }
    },
    "device_mappings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["device_id", "listen_session", "listen_channel", "destination"],
        "properties": {
          "device_id": {"type": "string", "minLength": 1},
          "listen_session": {"type": "string", "minLength": 1},
          "listen_channel": {"type": "integer", "minimum": 1, "maximum": 16},
          "send_channel": {"type": "integer", "minimum": 1, "maximum": 16},
          "cc_mode": {"enum": ["forward", "dispatch", "ignore"]},
          "destination": {
            "type": "object",
            "required": ["type"],
            "properties": {
              "type": {"enum": ["rtp_midi", "osc"]},
              "session_name": {"type": "string"},
              "host": {"type": "string"},
              "port": {"type": "integer", "minimum": 1, "maximum": 65535}
            }
          }
        }
      }
    }
  }
}`

var (
	compiledDevicesSchema = jsonschema.MustCompileString("devices.schema.json", devicesSchema)
	compiledMapSchema     = jsonschema.MustCompileString("map.schema.json", mapSchema)
)
