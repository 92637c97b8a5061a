package lints

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
)

// declarationsPass checks declaration hygiene: no `let` may shadow a
// variable already visible in an ancestor scope, no function may be
// declared twice, and no parameter list may repeat a name. Variables and
// functions live in separate namespaces, so a function and a variable
// may share a name without conflict.
type declarationsPass struct{}

func (declarationsPass) Name() string { return "declarations" }

func (declarationsPass) Check(program *ast.Block, funcs FuncTable) []errors.LintError {
	c := &declChecker{seenFuncs: map[string]ast.Position{}}
	c.checkBlock(program, NewVarScope(nil))
	return c.errs
}

type declChecker struct {
	errs      []errors.LintError
	seenFuncs map[string]ast.Position
}

func (c *declChecker) checkBlock(b *ast.Block, scope *VarScope) {
	for _, s := range b.Stmts {
		c.checkStmt(s, scope)
	}
}

func (c *declChecker) checkStmt(s ast.Stmt, scope *VarScope) {
	switch st := s.(type) {
	case *ast.LetStmt:
		if _, shadowed := scope.Lookup(st.Name); shadowed {
			c.errs = append(c.errs, errors.NewLintError(st.P, "'"+st.Name+"' shadows an outer declaration"))
		}
		scope.Declare(st.Name, st.Type)
	case *ast.FunctionDeclStmt:
		if prev, dup := c.seenFuncs[st.Name]; dup {
			c.errs = append(c.errs, errors.NewLintError(st.P, "function '"+st.Name+"' is already declared at "+prev.String()))
		} else {
			c.seenFuncs[st.Name] = st.P
		}
		seenParam := map[string]bool{}
		fnScope := NewVarScope(nil)
		for _, param := range st.Params {
			if seenParam[param.Name] {
				c.errs = append(c.errs, errors.NewLintError(st.P, "duplicate parameter name '"+param.Name+"'"))
			}
			seenParam[param.Name] = true
			fnScope.Declare(param.Name, param.Type)
		}
		c.checkBlock(st.Body, fnScope)
	case *ast.IfElseStmt:
		c.checkBlock(st.Then, NewVarScope(scope))
		if st.Else != nil {
			c.checkBlock(st.Else, NewVarScope(scope))
		}
	case *ast.SwitchStmt:
		for _, cs := range st.Cases {
			c.checkBlock(cs.Block, NewVarScope(scope))
		}
		if st.Default != nil {
			c.checkBlock(st.Default, NewVarScope(scope))
		}
	case *ast.ForStmt:
		loopScope := NewVarScope(scope)
		if st.Init != nil {
			c.checkStmt(st.Init, loopScope)
		}
		c.checkBlock(st.Body, NewVarScope(loopScope))
	}
}
