package eval

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/runtime"
	"github.com/phillarmonic/mockscript/internal/value"
)

// assignTo writes newVal through an lvalue expression (an Ident, a
// Member access, or an Index access). Because value.Array and
// value.Object are Go reference types (a slice header and a map), writing
// through a Member/Index step mutates the same backing storage the root
// variable holds — there is no need for an explicit path-navigation
// structure the way a value-semantics language would require. Member and
// index assignments (`o.a = v`, `xs[i] = v`) call it to write one step;
// a mutating array method that changes length (push/remove/removeAt)
// calls it to replace the slice header at its root.
func assignTo(ctx *runtime.EvalCtx, target ast.Expr, newVal value.Value) error {
	switch t := target.(type) {
	case *ast.IdentExpr:
		found, err := ctx.Env.Set(t.Name, newVal, t.P)
		if err != nil {
			return err
		}
		if !found {
			return errors.NotFound(t.Name, t.P)
		}
		return nil
	case *ast.MemberExpr:
		objVal, err := Expr(ctx, t.Object)
		if err != nil {
			return err
		}
		obj, ok := objVal.(value.Object)
		if !ok {
			return errors.Mismatch("cannot set property '"+t.Property+"' on a non-object value", t.P)
		}
		obj[t.Property] = newVal
		return nil
	case *ast.IndexExpr:
		objVal, err := Expr(ctx, t.Object)
		if err != nil {
			return err
		}
		idxVal, err := Expr(ctx, t.Index)
		if err != nil {
			return err
		}
		switch container := objVal.(type) {
		case value.Array:
			i, err := arrayIndex(container, idxVal, t.P)
			if err != nil {
				return err
			}
			container[i] = newVal
			return nil
		case value.Object:
			key, ok := idxVal.(value.String)
			if !ok {
				return errors.Mismatch("object index must be a string", t.P)
			}
			container[string(key)] = newVal
			return nil
		default:
			return errors.Mismatch("cannot index a non-array, non-object value", t.P)
		}
	default:
		return errors.Gen("invalid assignment target", target.Pos())
	}
}

func arrayIndex(arr value.Array, idxVal value.Value, pos ast.Position) (int, error) {
	n, ok := idxVal.(value.Number)
	if !ok {
		return 0, errors.Mismatch("array index must be a number", pos)
	}
	i := int(n)
	if i < 0 || i >= len(arr) {
		return 0, errors.NewEvalError(errors.General, "array index out of range", pos)
	}
	return i, nil
}
