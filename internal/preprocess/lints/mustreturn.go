package lints

import (
	"fmt"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
)

// mustReturnPass checks that the top-level script and every declared
// function return a value on every control-flow path.
//
// Its block-return predicate is deliberately looser than deadcode.Terminates:
// a `for { ... }` loop counts as "always returns" here whenever its body
// always returns, even though the loop's trip count is not known
// statically. This mirrors the accepted behavior of the implementation
// this pass was ported from and is intentionally more permissive than the
// dead-code pass's stricter treatment of `for`.
type mustReturnPass struct{}

func (mustReturnPass) Name() string { return "must_return" }

func (mustReturnPass) Check(program *ast.Block, funcs FuncTable) []errors.LintError {
	var out []errors.LintError
	if !blockReturns(program) {
		out = append(out, errors.NewLintError(program.Pos(), "script does not return on all paths"))
	}
	for name, fn := range funcs {
		if !blockReturns(fn.Body) {
			out = append(out, errors.NewLintError(fn.P, fmt.Sprintf("function '%s' does not return on all paths", name)))
		}
	}
	return out
}

func blockReturns(b *ast.Block) bool {
	for _, s := range b.Stmts {
		if stmtReturns(s) {
			return true
		}
	}
	return false
}

func stmtReturns(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.ReturnStmt, *ast.ReturnStatusStmt:
		return true
	case *ast.IfElseStmt:
		return st.Else != nil && blockReturns(st.Then) && blockReturns(st.Else)
	case *ast.SwitchStmt:
		if st.Default == nil {
			return false
		}
		for _, c := range st.Cases {
			if !blockReturns(c.Block) {
				return false
			}
		}
		return blockReturns(st.Default)
	case *ast.ForStmt:
		return blockReturns(st.Body)
	default:
		return false
	}
}
