package lints

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
)

// builtinNames is the fixed set of names the evaluator always recognizes,
// regardless of any user function table.
var builtinNames = map[string]bool{
	"print": true, "toString": true, "toType": true, "sleep": true,
	"cacheGet": true, "cacheSet": true, "cacheDel": true, "cacheClear": true,
	"dbCreateTable": true, "dbGetAllTables": true, "dbDropTable": true, "dbCreateEntry": true,
	"dbGetAll": true, "dbGetById": true, "dbGetByFields": true, "dbUpdateById": true,
	"dbUpdateByFields": true, "dbDeleteById": true, "dbDeleteByFields": true, "dbDrop": true,
}

// builtinMethodNames is the fixed set of method names recognized on
// array/string receivers.
var builtinMethodNames = map[string]bool{
	"length": true, "push": true, "remove": true, "removeAt": true,
	"contains": true, "split": true, "substring": true, "toChars": true, "replace": true,
}

// unknownCallsPass rejects calls to names that are neither a builtin nor
// any user-declared function anywhere in the program. Function
// declarations are collected tree-wide rather than scope-by-scope: a
// function may call another function declared later in the file, or
// nested inside a different function, as long as it exists somewhere in
// the program. This is deliberately permissive relative to normal lexical
// scoping, matching the intent that forward/out-of-order references
// between top-level script functions should not be treated as errors.
type unknownCallsPass struct{}

func (unknownCallsPass) Name() string { return "unknown_calls" }

func (unknownCallsPass) Check(program *ast.Block, funcs FuncTable) []errors.LintError {
	c := &unknownCallsChecker{funcs: funcs}
	ast.WalkBlock(c, program)
	return c.errs
}

type unknownCallsChecker struct {
	errs  []errors.LintError
	funcs FuncTable
}

func (c *unknownCallsChecker) VisitBlock(b *ast.Block) { ast.WalkBlock(c, b) }
func (c *unknownCallsChecker) VisitStmt(s ast.Stmt)    { ast.WalkStmt(c, s) }

func (c *unknownCallsChecker) VisitExpr(e ast.Expr) {
	if call, ok := e.(*ast.CallExpr); ok {
		if name, ok := ast.IdentNameFromCallee(call.Callee); ok {
			if _, isFunc := c.funcs[name]; !isFunc && !builtinNames[name] {
				c.errs = append(c.errs, errors.NewLintError(call.P, "call to unknown function '"+name+"'"))
			}
		} else if _, method, ok := ast.ReceiverAndMethodFromCallee(call.Callee); ok {
			if !builtinMethodNames[method] {
				c.errs = append(c.errs, errors.NewLintError(call.P, "call to unknown method '"+method+"'"))
			}
		}
	}
	ast.WalkExpr(c, e)
}
