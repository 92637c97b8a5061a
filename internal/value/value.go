// Package value implements the mockscript runtime value model: a tagged
// union over {Number, String, Bool, Array, Object, Type, Undefined} with
// JSON conversions.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/types"
)

// Value is the closed runtime value sum type.
type Value interface {
	isValue()
	String() string
}

type Number float64
type String string
type Bool bool
type Array []Value
type Object map[string]Value
type Type struct{ T types.VarType }
type Undefined struct{}

func (Number) isValue()    {}
func (String) isValue()    {}
func (Bool) isValue()      {}
func (Array) isValue()     {}
func (Object) isValue()    {}
func (Type) isValue()      {}
func (Undefined) isValue() {}

func (n Number) String() string {
	if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
		return "0"
	}
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}
func (s String) String() string { return string(s) }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (a Array) String() string  { return fmt.Sprintf("%v", []Value(a)) }
func (o Object) String() string { return fmt.Sprintf("%v", map[string]Value(o)) }
func (t Type) String() string   { return t.T.String() }
func (Undefined) String() string { return "undefined" }

// ToBool implements mockscript truthiness: bools are themselves; numbers
// are truthy only when strictly positive (NaN and <=0 are false); every
// other kind is truthy.
func ToBool(v Value) bool {
	switch x := v.(type) {
	case Bool:
		return bool(x)
	case Number:
		f := float64(x)
		return !math.IsNaN(f) && f > 0
	default:
		return true
	}
}

// ToType infers the static VarType of a runtime value. Arrays infer a
// homogeneous element type when all elements agree, else vec<any>; an
// empty array infers vec<any>.
func ToType(v Value) types.VarType {
	switch x := v.(type) {
	case Number:
		return types.Number
	case String:
		return types.String
	case Bool:
		return types.Bool
	case Object:
		return types.Object
	case Type:
		return types.Any // a Type value carries no further static type of its own
	case Undefined:
		return types.Undefined
	case Array:
		if len(x) == 0 {
			return types.Array(types.Any)
		}
		elem := ToType(x[0])
		for _, el := range x[1:] {
			if !elem.Equal(ToType(el)) {
				return types.Array(types.Any)
			}
		}
		return types.Array(elem)
	}
	return types.Any
}

// IsType reports whether v is assignable to the declared type t in the
// runtime (non-lint) sense. Undefined only matches the Undefined type at
// runtime — unlike the static lint's Assignable, which treats Undefined as
// universally assignable for unset `let` defaults.
func IsType(v Value, t types.VarType) bool {
	switch x := v.(type) {
	case Undefined:
		return types.IsUndefined(t)
	case Array:
		arrT, ok := types.IsArray(t)
		if !ok {
			return types.IsAny(t)
		}
		if types.IsAny(arrT.Elem) {
			return true
		}
		for _, el := range x {
			if !IsType(el, arrT.Elem) {
				return false
			}
		}
		return true
	default:
		if types.IsAny(t) {
			return true
		}
		return ToType(v).Equal(t)
	}
}

// FromLiteral converts a parsed AST literal into its runtime value.
func FromLiteral(lit ast.Literal) Value {
	switch lit.Kind {
	case ast.LitNumber:
		return Number(lit.Num)
	case ast.LitString:
		return String(lit.Str)
	case ast.LitBool:
		return Bool(lit.Bool)
	default:
		return Undefined{}
	}
}

// Equal implements mockscript's structural equality (`==`/`!=`).
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Type:
		y, ok := b.(Type)
		return ok && x.T.Equal(y.T)
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			yv, ok := y[k]
			if !ok || !Equal(v, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// sortedKeys returns an object's keys in a deterministic order. Nothing
// calls it: Object.String renders through fmt, and JSON uses Go's own map
// marshaling order, both of which already sort keys.
func sortedKeys(o Object) []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
