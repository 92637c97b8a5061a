package eval

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/value"
)

// applyBinOp computes the result of op over already-evaluated operands.
// And/Or are handled by the caller (Expr) for short-circuiting and never
// reach here.
func applyBinOp(op ast.BinOp, left, right value.Value, pos ast.Position) (value.Value, error) {
	switch op {
	case ast.Eq:
		return value.Bool(value.Equal(left, right)), nil
	case ast.Ne:
		return value.Bool(!value.Equal(left, right)), nil
	}

	if op == ast.Add {
		if ls, ok := left.(value.String); ok {
			if rs, ok := right.(value.String); ok {
				return value.String(string(ls) + string(rs)), nil
			}
		}
	}

	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if !lok || !rok {
		return nil, errors.Mismatch("operator '"+op.String()+"' requires two numbers", pos)
	}

	switch op {
	case ast.Add:
		return ln + rn, nil
	case ast.Sub:
		return ln - rn, nil
	case ast.Mul:
		return ln * rn, nil
	case ast.Div:
		if rn == 0 {
			return nil, errors.NewEvalError(errors.DivisionByZero, "division by zero", pos)
		}
		return ln / rn, nil
	case ast.Rem:
		if rn == 0 {
			return nil, errors.NewEvalError(errors.DivisionByZero, "division by zero", pos)
		}
		li, ri := int64(ln), int64(rn)
		return value.Number(li % ri), nil
	case ast.Lt:
		return value.Bool(ln < rn), nil
	case ast.Le:
		return value.Bool(ln <= rn), nil
	case ast.Gt:
		return value.Bool(ln > rn), nil
	case ast.Ge:
		return value.Bool(ln >= rn), nil
	}
	return nil, errors.Gen("unsupported operator '"+op.String()+"'", pos)
}
