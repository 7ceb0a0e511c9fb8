package sim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Well-known parameter names shared by profiles, oracles and event handlers.
const (
	ParamMaxConcurrency      = "max_concurrency"
	ParamProcessingLatencyMs = "processing_latency_ms"
	ParamBaseLatencyMs       = "base_latency_ms"
	ParamTimeoutMs           = "timeout_ms"
	ParamRetryCount          = "retry_count"
	ParamDiskFailProb        = "disk_fail_prob"
	ParamFailProb            = "fail_prob"
	ParamHitRate             = "hit_rate"
	ParamQueueLimit          = "queue_limit"
	ParamLoadSensitivity     = "load_sensitivity"
	ParamJitter              = "jitter"
	ParamLatencyMs           = "latency_ms"
	ParamLossProb            = "loss_prob"
	ParamBandwidthLimit      = "bandwidth_limit"
	ParamProbability         = "probability"
)

// ValueType tags the scalar held by a Value.
type ValueType uint8

const (
	TypeInt ValueType = iota
	TypeFloat
	TypeBool
	TypeString
)

// Value is a resolved scalar parameter: an int, float, bool or string.
// The zero Value is the integer 0.
type Value struct {
	typ ValueType
	i   int64
	f   float64
	b   bool
	s   string
}

func IntValue(v int64) Value     { return Value{typ: TypeInt, i: v} }
func FloatValue(v float64) Value { return Value{typ: TypeFloat, f: v} }
func BoolValue(v bool) Value     { return Value{typ: TypeBool, b: v} }
func StringValue(v string) Value { return Value{typ: TypeString, s: v} }
func (v Value) Type() ValueType  { return v.typ }
func (v Value) IsNumeric() bool  { return v.typ == TypeInt || v.typ == TypeFloat }

// Float returns the numeric value; ints widen to float64.
func (v Value) Float() (float64, bool) {
	switch v.typ {
	case TypeInt:
		return float64(v.i), true
	case TypeFloat:
		return v.f, true
	}
	return 0, false
}

// Int returns the value as an integer; floats are truncated.
func (v Value) Int() (int64, bool) {
	switch v.typ {
	case TypeInt:
		return v.i, true
	case TypeFloat:
		return int64(v.f), true
	}
	return 0, false
}

func (v Value) Bool() (bool, bool) {
	return v.b, v.typ == TypeBool
}

func (v Value) Str() (string, bool) {
	return v.s, v.typ == TypeString
}

func (v Value) String() string {
	switch v.typ {
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeString:
		return v.s
	default:
		return strconv.FormatInt(v.i, 10)
	}
}

// MarshalJSON encodes the scalar in its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("cannot encode non-finite parameter %v", v.f)
		}
		return json.Marshal(v.f)
	case TypeBool:
		return json.Marshal(v.b)
	case TypeString:
		return json.Marshal(v.s)
	default:
		return json.Marshal(v.i)
	}
}

// UnmarshalJSON accepts numbers, booleans and strings. Numbers without a
// fraction or exponent decode as ints.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return fmt.Errorf("empty parameter value")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*v = BoolValue(data[0] == 't')
	default:
		if bytes.ContainsAny(data, ".eE") {
			f, err := strconv.ParseFloat(string(data), 64)
			if err != nil {
				return fmt.Errorf("parameter %s is not a scalar: %w", data, err)
			}
			*v = FloatValue(f)
			return nil
		}
		i, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("parameter %s is not a scalar: %w", data, err)
		}
		*v = IntValue(i)
	}
	return nil
}

// UnmarshalYAML decodes a scalar node, trying int, then float, then bool,
// and falling back to string.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: only scalar parameter values are supported", node.Line)
	}
	var i int64
	if err := node.Decode(&i); err == nil {
		*v = IntValue(i)
		return nil
	}
	var f float64
	if err := node.Decode(&f); err == nil {
		*v = FloatValue(f)
		return nil
	}
	var b bool
	if err := node.Decode(&b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	*v = StringValue(node.Value)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (v Value) MarshalYAML() (any, error) {
	switch v.typ {
	case TypeFloat:
		return v.f, nil
	case TypeBool:
		return v.b, nil
	case TypeString:
		return v.s, nil
	default:
		return v.i, nil
	}
}

// Params holds resolved parameters after profile defaults and user overrides.
type Params map[string]Value

// Float returns the numeric parameter key, or def when absent or non-numeric.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		if f, ok := v.Float(); ok {
			return f
		}
	}
	return def
}

// Int returns the numeric parameter key truncated to int, or def.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		if i, ok := v.Int(); ok {
			return int(i)
		}
	}
	return def
}

// Bool returns the boolean parameter key, or def.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key]; ok {
		if b, ok := v.Bool(); ok {
			return b
		}
	}
	return def
}

// String returns the string parameter key, or def.
func (p Params) String(key string, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.Str(); ok {
			return s
		}
	}
	return def
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy; Values are immutable so this is a deep copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
