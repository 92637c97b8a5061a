package value

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/phillarmonic/mockscript/internal/ast"
)

// FromJSON converts a decoded JSON value (as produced by encoding/json's
// interface{} decoding: float64, string, bool, nil, []interface{},
// map[string]interface{}) into a runtime Value.
func FromJSON(j interface{}, pos ast.Position) (Value, error) {
	switch x := j.(type) {
	case nil:
		return Undefined{}, nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case string:
		return String(x), nil
	case []interface{}:
		out := make(Array, 0, len(x))
		for _, el := range x {
			v, err := FromJSON(el, pos)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case map[string]interface{}:
		out := Object{}
		for k, el := range x {
			v, err := FromJSON(el, pos)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value %T at %s", j, pos)
	}
}

// ParseJSON decodes raw JSON bytes directly into a runtime Value.
func ParseJSON(raw []byte, pos ast.Position) (Value, error) {
	if len(raw) == 0 {
		return Undefined{}, nil
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return FromJSON(decoded, pos)
}

// ToJSON converts a runtime Value into a plain interface{} tree suitable
// for encoding/json marshaling. Undefined becomes nil (serializes to
// null); non-finite numbers clamp to 0; Type values render as their
// debug/type-name string.
func ToJSON(v Value) interface{} {
	switch x := v.(type) {
	case Undefined:
		return nil
	case Number:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return float64(0)
		}
		return f
	case String:
		return string(x)
	case Bool:
		return bool(x)
	case Type:
		return x.T.String()
	case Array:
		out := make([]interface{}, len(x))
		for i, el := range x {
			out[i] = ToJSON(el)
		}
		return out
	case Object:
		out := make(map[string]interface{}, len(x))
		for k, el := range x {
			out[k] = ToJSON(el)
		}
		return out
	}
	return nil
}

// MarshalJSON serializes v per ToJSON's rules.
func MarshalJSON(v Value) ([]byte, error) {
	return json.Marshal(ToJSON(v))
}
