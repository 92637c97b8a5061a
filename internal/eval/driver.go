package eval

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/runtime"
	"github.com/phillarmonic/mockscript/internal/value"
)

// Result is what a route script produces: the HTTP status it asked for
// and the response body value.
type Result struct {
	Status int
	Body   value.Value
}

// Evaluate runs program to completion under ctx. A correctly linted
// program always finishes with a top-level return: `return status, value;`
// yields that status, and a bare `return value;` yields status 200. Any
// other outcome (falling off the end, break/continue escaping their loop)
// is an evaluator bug class caught defensively here rather than trusted
// away.
func Evaluate(ctx *runtime.EvalCtx, program *ast.Block) (Result, error) {
	cf, err := Block(ctx, program)
	if err != nil {
		return Result{}, err
	}
	if cf.Kind == Return {
		return Result{Status: 200, Body: cf.Value}, nil
	}
	if cf.Kind != ReturnStatus {
		return Result{}, errors.Gen("script did not end with 'return status, value;'", program.Pos())
	}
	statusNum, ok := cf.Status.(value.Number)
	if !ok {
		return Result{}, errors.Mismatch("return status must be a number", program.Pos())
	}
	return Result{Status: int(statusNum), Body: cf.Value}, nil
}
