package builtins

import (
	"strings"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/value"
)

// MutMethodNames is the set of methods that require a mutable (lvalue)
// array receiver: they change the receiver's length and must be able to
// write the new slice back to wherever it came from.
var MutMethodNames = map[string]bool{
	"push": true, "remove": true, "removeAt": true,
}

// PureMethodNames is the set of methods that only read their receiver.
var PureMethodNames = map[string]bool{
	"length": true, "contains": true, "split": true,
	"substring": true, "toChars": true, "replace": true,
}

func IsMutMethod(name string) bool  { return MutMethodNames[name] }
func IsPureMethod(name string) bool { return PureMethodNames[name] }

// CallPureMethod dispatches a read-only method call over an already
// evaluated receiver value.
func CallPureMethod(receiver value.Value, name string, args []value.Value, pos ast.Position) (value.Value, error) {
	switch name {
	case "length":
		switch r := receiver.(type) {
		case value.Array:
			return value.Number(len(r)), nil
		case value.String:
			return value.Number(len(string(r))), nil
		default:
			return nil, errors.Mismatch("length() requires an array or string receiver", pos)
		}
	case "contains":
		switch r := receiver.(type) {
		case value.Array:
			needle := arg(args, 0)
			for _, el := range r {
				if value.Equal(el, needle) {
					return value.Bool(true), nil
				}
			}
			return value.Bool(false), nil
		case value.String:
			sub, err := asString(arg(args, 0), "contains() argument", pos)
			if err != nil {
				return nil, err
			}
			return value.Bool(strings.Contains(string(r), sub)), nil
		default:
			return nil, errors.Mismatch("contains() requires an array or string receiver", pos)
		}
	case "split":
		s, ok := receiver.(value.String)
		if !ok {
			return nil, errors.Mismatch("split() requires a string receiver", pos)
		}
		sep, err := asString(arg(args, 0), "split() argument", pos)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(string(s), sep)
		out := make(value.Array, len(parts))
		for i, p := range parts {
			out[i] = value.String(p)
		}
		return out, nil
	case "substring":
		s, ok := receiver.(value.String)
		if !ok {
			return nil, errors.Mismatch("substring() requires a string receiver", pos)
		}
		start, err := asNumber(arg(args, 0), "substring() start", pos)
		if err != nil {
			return nil, err
		}
		runes := []rune(string(s))
		end := float64(len(runes))
		if len(args) > 1 {
			end, err = asNumber(args[1], "substring() end", pos)
			if err != nil {
				return nil, err
			}
		}
		si, ei := clampRange(int(start), int(end), len(runes))
		return value.String(string(runes[si:ei])), nil
	case "toChars":
		s, ok := receiver.(value.String)
		if !ok {
			return nil, errors.Mismatch("toChars() requires a string receiver", pos)
		}
		runes := []rune(string(s))
		out := make(value.Array, len(runes))
		for i, r := range runes {
			out[i] = value.String(string(r))
		}
		return out, nil
	case "replace":
		s, ok := receiver.(value.String)
		if !ok {
			return nil, errors.Mismatch("replace() requires a string receiver", pos)
		}
		old, err := asString(arg(args, 0), "replace() old value", pos)
		if err != nil {
			return nil, err
		}
		newS, err := asString(arg(args, 1), "replace() new value", pos)
		if err != nil {
			return nil, err
		}
		return value.String(strings.ReplaceAll(string(s), old, newS)), nil
	}
	return nil, errors.Gen("unknown method '"+name+"'", pos)
}

func clampRange(start, end, length int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		start = end
	}
	return start, end
}

// ApplyMutMethod computes the new receiver array a mutating method
// produces. The caller (the evaluator) is responsible for writing
// newReceiver back to the lvalue the original receiver came from; when
// the receiver is not an assignable expression, the caller may choose to
// discard newReceiver (the mutation then behaves as a value-producing,
// non-persisting operation).
func ApplyMutMethod(receiver value.Value, name string, args []value.Value, pos ast.Position) (result, newReceiver value.Value, err error) {
	arr, ok := receiver.(value.Array)
	if !ok {
		return nil, nil, errors.Mismatch(name+"() requires an array receiver", pos)
	}
	switch name {
	case "push":
		updated := append(append(value.Array{}, arr...), args...)
		return value.Undefined{}, updated, nil
	case "remove":
		needle := arg(args, 0)
		updated := make(value.Array, 0, len(arr))
		removed := false
		for _, el := range arr {
			if !removed && value.Equal(el, needle) {
				removed = true
				continue
			}
			updated = append(updated, el)
		}
		return value.Bool(removed), updated, nil
	case "removeAt":
		i, err := arrayIndexArg(arg(args, 0), len(arr), pos)
		if err != nil {
			return nil, nil, err
		}
		updated := make(value.Array, 0, len(arr)-1)
		updated = append(updated, arr[:i]...)
		updated = append(updated, arr[i+1:]...)
		return value.Undefined{}, updated, nil
	}
	return nil, nil, errors.Gen("unknown method '"+name+"'", pos)
}

func arrayIndexArg(v value.Value, length int, pos ast.Position) (int, error) {
	n, ok := v.(value.Number)
	if !ok {
		return 0, errors.Mismatch("index argument must be a number", pos)
	}
	i := int(n)
	if i < 0 || i >= length {
		return 0, errors.NewEvalError(errors.General, "array index out of range", pos)
	}
	return i, nil
}
