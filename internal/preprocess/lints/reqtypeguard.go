package lints

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
)

// reqTypeGuardPass requires that any request-derived value (rooted in
// req.body/params/query/headers, which are untyped JSON) be narrowed by a
// `toType(x) == <type>` check before it is used somewhere that assumes a
// specific shape: as an arithmetic operand, as an argument passed to a
// user function whose declared parameter is not `any`, as the receiver of
// a method call, or as the source of an assignment into a destination whose
// declared type is not `any`.
//
// Narrowing is fingerprinted by the guarded expression's textual form and
// is single-level only: guarding `toType(req.body.a)` narrows exactly
// `req.body.a`, never a deeper access like `req.body.a.b`, and the guard
// only holds inside the `if` statement's then-branch.
type reqTypeGuardPass struct{}

func (reqTypeGuardPass) Name() string { return "req_type_guard" }

func (p reqTypeGuardPass) Check(program *ast.Block, funcs FuncTable) []errors.LintError {
	c := &guardChecker{funcs: funcs}
	c.checkBlock(program, map[string]bool{}, NewVarScope(nil))
	return c.errs
}

type guardChecker struct {
	funcs FuncTable
	errs  []errors.LintError
}

func (c *guardChecker) checkBlock(b *ast.Block, guards map[string]bool, scope *VarScope) {
	for _, s := range b.Stmts {
		c.checkStmt(s, guards, scope)
	}
}

func cloneGuards(g map[string]bool) map[string]bool {
	out := make(map[string]bool, len(g))
	for k := range g {
		out[k] = true
	}
	return out
}

// guardedExprs extracts the fingerprints that `toType(x) == T` (or its
// reverse) conjuncts of cond establish, splitting on top-level `&&` only.
func guardedExprs(cond ast.Expr) []string {
	if b, ok := cond.(*ast.BinaryExpr); ok && b.Op == ast.And {
		return append(guardedExprs(b.Left), guardedExprs(b.Right)...)
	}
	b, ok := cond.(*ast.BinaryExpr)
	if !ok || b.Op != ast.Eq {
		return nil
	}
	if fp, ok := toTypeArgFingerprint(b.Left); ok {
		if _, isType := b.Right.(*ast.TypeLiteralExpr); isType {
			return []string{fp}
		}
	}
	if fp, ok := toTypeArgFingerprint(b.Right); ok {
		if _, isType := b.Left.(*ast.TypeLiteralExpr); isType {
			return []string{fp}
		}
	}
	return nil
}

func toTypeArgFingerprint(e ast.Expr) (string, bool) {
	call, ok := e.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	if name, ok := ast.IdentNameFromCallee(call.Callee); !ok || name != "toType" {
		return "", false
	}
	return call.Args[0].String(), true
}

func (c *guardChecker) checkStmt(s ast.Stmt, guards map[string]bool, scope *VarScope) {
	switch st := s.(type) {
	case *ast.LetStmt:
		if st.Init != nil {
			if st.Type.String() != "any" {
				c.requireGuard(st.Init, guards)
			}
			c.checkExpr(st.Init, guards, scope)
		}
		scope.Declare(st.Name, st.Type)
	case *ast.ReturnStmt:
		c.checkExpr(st.Value, guards, scope)
	case *ast.ReturnStatusStmt:
		c.checkExpr(st.Status, guards, scope)
		c.checkExpr(st.Value, guards, scope)
	case *ast.ExprStmt:
		c.checkExpr(st.X, guards, scope)
	case *ast.FunctionDeclStmt:
		fnScope := NewVarScope(nil)
		for _, param := range st.Params {
			fnScope.Declare(param.Name, param.Type)
		}
		c.checkBlock(st.Body, map[string]bool{}, fnScope)
	case *ast.IfElseStmt:
		c.checkExpr(st.Cond, guards, scope)
		thenGuards := cloneGuards(guards)
		for _, fp := range guardedExprs(st.Cond) {
			thenGuards[fp] = true
		}
		c.checkBlock(st.Then, thenGuards, NewVarScope(scope))
		if st.Else != nil {
			c.checkBlock(st.Else, cloneGuards(guards), NewVarScope(scope))
		}
	case *ast.SwitchStmt:
		c.checkExpr(st.Cond, guards, scope)
		for _, cs := range st.Cases {
			c.checkExpr(cs.Expr, guards, scope)
			c.checkBlock(cs.Block, cloneGuards(guards), NewVarScope(scope))
		}
		if st.Default != nil {
			c.checkBlock(st.Default, cloneGuards(guards), NewVarScope(scope))
		}
	case *ast.ForStmt:
		loopGuards := cloneGuards(guards)
		loopScope := NewVarScope(scope)
		if st.Init != nil {
			c.checkStmt(st.Init, loopGuards, loopScope)
		}
		c.checkExpr(st.Cond, loopGuards, loopScope)
		if st.Increment != nil {
			c.checkExpr(st.Increment, loopGuards, loopScope)
		}
		c.checkBlock(st.Body, cloneGuards(loopGuards), NewVarScope(loopScope))
	}
}

func (c *guardChecker) requireGuard(e ast.Expr, guards map[string]bool) {
	if !ast.IsRequestDerived(e) {
		return
	}
	if _, isReqField := e.(*ast.RequestFieldExpr); isReqField {
		return // req.body itself is always a valid obj/any; only deeper access needs narrowing
	}
	if guards[e.String()] {
		return
	}
	c.errs = append(c.errs, errors.NewLintError(e.Pos(), "request-derived value used without a type guard: "+e.String()))
}

func (c *guardChecker) checkExpr(e ast.Expr, guards map[string]bool, scope *VarScope) {
	// Any bare method call on a request-derived receiver requires the
	// receiver to be guarded first, regardless of whether the callee
	// resolves to a declared user function.
	if call, ok := e.(*ast.CallExpr); ok {
		if recv, _, ok := ast.ReceiverAndMethodFromCallee(call.Callee); ok {
			c.requireGuard(recv, guards)
		}
	}
	switch ex := e.(type) {
	case *ast.BinaryExpr:
		switch ex.Op {
		case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Rem, ast.Lt, ast.Le, ast.Gt, ast.Ge:
			c.requireGuard(ex.Left, guards)
			c.requireGuard(ex.Right, guards)
		}
		c.checkExpr(ex.Left, guards, scope)
		c.checkExpr(ex.Right, guards, scope)
	case *ast.CallExpr:
		c.checkExpr(ex.Callee, guards, scope)
		if name, ok := ast.IdentNameFromCallee(ex.Callee); ok {
			if fn, ok := c.funcs[name]; ok {
				for i, a := range ex.Args {
					if i < len(fn.Params) && fn.Params[i].Type.String() != "any" {
						c.requireGuard(a, guards)
					}
					c.checkExpr(a, guards, scope)
				}
				return
			}
		}
		for _, a := range ex.Args {
			c.checkExpr(a, guards, scope)
		}
	case *ast.TemplateExpr:
		for _, part := range ex.Parts {
			if part.Expr != nil {
				c.checkExpr(part.Expr, guards, scope)
			}
		}
	case *ast.ArrayExpr:
		for _, el := range ex.Elements {
			c.checkExpr(el, guards, scope)
		}
	case *ast.ObjectLiteralExpr:
		for _, v := range ex.Values {
			c.checkExpr(v, guards, scope)
		}
	case *ast.MemberExpr:
		c.checkExpr(ex.Object, guards, scope)
	case *ast.IndexExpr:
		c.checkExpr(ex.Object, guards, scope)
		c.checkExpr(ex.Index, guards, scope)
	case *ast.AssignVarExpr:
		if declTy, ok := scope.Lookup(ex.Name); ok && declTy.String() != "any" {
			c.requireGuard(ex.Value, guards)
		}
		c.checkExpr(ex.Value, guards, scope)
	case *ast.AssignMemberExpr:
		c.checkExpr(ex.Object, guards, scope)
		c.checkExpr(ex.Value, guards, scope)
	case *ast.AssignIndexExpr:
		c.checkExpr(ex.Object, guards, scope)
		c.checkExpr(ex.Index, guards, scope)
		c.checkExpr(ex.Value, guards, scope)
	}
}
