package contracts

// OSCArgKind identifies the type of a single OSC argument.
type OSCArgKind int

const (
	// OSCInt is a 32-bit integer argument.
	OSCInt OSCArgKind = iota
	// OSCFloat is a 32-bit float argument.
	OSCFloat
	// OSCString is a string argument.
	OSCString
	// OSCBool is a boolean argument.
	OSCBool
	// OSCNormalized is a float argument expressed in a configured range and
	// sent on the wire as (value-min)/(max-min).
	OSCNormalized
)

// OSCArg is a single typed OSC argument. Only the field matching Kind is
// meaningful; Min and Max apply to OSCNormalized only.
type OSCArg struct {
	Kind  OSCArgKind
	Int   int32
	Float float32
	Str   string
	Bool  bool
	Min   float32
	Max   float32
}

// Value returns the wire value of the argument as one of int32, float32,
// string or bool. Normalized arguments are scaled into their 0-1 range.
func (a OSCArg) Value() interface{} {
	switch a.Kind {
	case OSCInt:
		return a.Int
	case OSCFloat:
		return a.Float
	case OSCString:
		return a.Str
	case OSCBool:
		return a.Bool
	case OSCNormalized:
		if a.Max == a.Min {
			return float32(0)
		}
		return (a.Float - a.Min) / (a.Max - a.Min)
	default:
		return nil
	}
}

// IntArg builds a 32-bit integer OSC argument.
func IntArg(v int32) OSCArg { return OSCArg{Kind: OSCInt, Int: v} }

// FloatArg builds a 32-bit float OSC argument.
func FloatArg(v float32) OSCArg { return OSCArg{Kind: OSCFloat, Float: v} }

// StringArg builds a string OSC argument.
func StringArg(v string) OSCArg { return OSCArg{Kind: OSCString, Str: v} }

// BoolArg builds a boolean OSC argument.
func BoolArg(v bool) OSCArg { return OSCArg{Kind: OSCBool, Bool: v} }

// NormalizedArg builds a ranged float OSC argument scaled on send.
func NormalizedArg(v, min, max float32) OSCArg {
	return OSCArg{Kind: OSCNormalized, Float: v, Min: min, Max: max}
}
