package lints

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
)

// definiteAssignPass rejects reading a `let name: T;` variable (declared
// without an initializer) on any path that has not first assigned it.
//
// Branches merge by intersection: a variable counts as assigned after an
// if/switch only when every reachable arm assigns it (including the
// implicit "no branch taken" arm when there is no else/default). A `for`
// loop's body and increment are checked with their own fact set and do
// not contribute assignments back to the surrounding scope — only the
// loop's init clause and condition do — since the loop may run zero
// iterations.
type definiteAssignPass struct{}

func (definiteAssignPass) Name() string { return "definite_assign" }

func (definiteAssignPass) Check(program *ast.Block, funcs FuncTable) []errors.LintError {
	c := &assignChecker{}
	c.checkBlock(program, map[string]bool{})
	return c.errs
}

type assignChecker struct {
	errs []errors.LintError
}

func cloneFacts(f map[string]bool) map[string]bool {
	out := make(map[string]bool, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// intersect returns every key present in any of sets, true only if it is
// present and true in all of them.
func intersect(sets ...map[string]bool) map[string]bool {
	if len(sets) == 0 {
		return map[string]bool{}
	}
	out := cloneFacts(sets[0])
	for _, s := range sets[1:] {
		for k, v := range out {
			ov, ok := s[k]
			out[k] = v && ok && ov
		}
		for k := range s {
			if _, ok := out[k]; !ok {
				out[k] = false
			}
		}
	}
	return out
}

func (c *assignChecker) checkBlock(b *ast.Block, facts map[string]bool) map[string]bool {
	for _, s := range b.Stmts {
		facts = c.checkStmt(s, facts)
	}
	return facts
}

func (c *assignChecker) checkStmt(s ast.Stmt, facts map[string]bool) map[string]bool {
	switch st := s.(type) {
	case *ast.LetStmt:
		if st.Init != nil {
			c.checkExpr(st.Init, facts)
			facts[st.Name] = true
		} else {
			facts[st.Name] = false
		}
	case *ast.ReturnStmt:
		c.checkExpr(st.Value, facts)
	case *ast.ReturnStatusStmt:
		c.checkExpr(st.Status, facts)
		c.checkExpr(st.Value, facts)
	case *ast.ExprStmt:
		c.checkExpr(st.X, facts)
	case *ast.FunctionDeclStmt:
		fresh := map[string]bool{}
		for _, param := range st.Params {
			fresh[param.Name] = true
		}
		c.checkBlock(st.Body, fresh)
	case *ast.IfElseStmt:
		c.checkExpr(st.Cond, facts)
		thenFacts := c.checkBlock(st.Then, cloneFacts(facts))
		if st.Else != nil {
			elseFacts := c.checkBlock(st.Else, cloneFacts(facts))
			facts = intersect(thenFacts, elseFacts)
		} else {
			facts = intersect(thenFacts, facts)
		}
	case *ast.SwitchStmt:
		c.checkExpr(st.Cond, facts)
		var branches []map[string]bool
		for _, cs := range st.Cases {
			c.checkExpr(cs.Expr, facts)
			branches = append(branches, c.checkBlock(cs.Block, cloneFacts(facts)))
		}
		if st.Default != nil {
			branches = append(branches, c.checkBlock(st.Default, cloneFacts(facts)))
		} else {
			branches = append(branches, facts)
		}
		facts = intersect(branches...)
	case *ast.ForStmt:
		loopFacts := facts
		if st.Init != nil {
			loopFacts = c.checkStmt(st.Init, cloneFacts(facts))
		}
		c.checkExpr(st.Cond, loopFacts)
		bodyFacts := cloneFacts(loopFacts)
		if st.Increment != nil {
			c.checkExpr(st.Increment, bodyFacts)
		}
		c.checkBlock(st.Body, bodyFacts)
		facts = loopFacts
	}
	return facts
}

func (c *assignChecker) checkExpr(e ast.Expr, facts map[string]bool) {
	switch ex := e.(type) {
	case *ast.IdentExpr:
		if assigned, tracked := facts[ex.Name]; tracked && !assigned {
			c.errs = append(c.errs, errors.NewLintError(ex.P, "variable '"+ex.Name+"' used before being assigned"))
		}
	case *ast.TemplateExpr:
		for _, part := range ex.Parts {
			if part.Expr != nil {
				c.checkExpr(part.Expr, facts)
			}
		}
	case *ast.BinaryExpr:
		c.checkExpr(ex.Left, facts)
		c.checkExpr(ex.Right, facts)
	case *ast.ArrayExpr:
		for _, el := range ex.Elements {
			c.checkExpr(el, facts)
		}
	case *ast.ObjectLiteralExpr:
		for _, v := range ex.Values {
			c.checkExpr(v, facts)
		}
	case *ast.MemberExpr:
		c.checkExpr(ex.Object, facts)
	case *ast.IndexExpr:
		c.checkExpr(ex.Object, facts)
		c.checkExpr(ex.Index, facts)
	case *ast.CallExpr:
		c.checkExpr(ex.Callee, facts)
		for _, a := range ex.Args {
			c.checkExpr(a, facts)
		}
	case *ast.AssignVarExpr:
		c.checkExpr(ex.Value, facts)
		facts[ex.Name] = true
	case *ast.AssignMemberExpr:
		c.checkExpr(ex.Object, facts)
		c.checkExpr(ex.Value, facts)
	case *ast.AssignIndexExpr:
		c.checkExpr(ex.Object, facts)
		c.checkExpr(ex.Index, facts)
		c.checkExpr(ex.Value, facts)
	}
}
