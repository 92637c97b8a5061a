package lints

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
)

// reqImmutabilityPass defends, at the tree level, an invariant the parser
// already enforces syntactically (assigning through `req.*` is a parse
// error): every AssignMember/AssignIndex whose receiver chain bottoms out
// in a request field is rejected here too, so that any future AST built
// by a means other than the parser (e.g. a generated or migrated script)
// is still caught before evaluation.
type reqImmutabilityPass struct{}

func (reqImmutabilityPass) Name() string { return "req_imutability" }

func (reqImmutabilityPass) Check(program *ast.Block, funcs FuncTable) []errors.LintError {
	v := &reqImmutVisitor{}
	ast.WalkBlock(v, program)
	return v.errs
}

type reqImmutVisitor struct{ errs []errors.LintError }

func (v *reqImmutVisitor) VisitBlock(b *ast.Block) { ast.WalkBlock(v, b) }

func (v *reqImmutVisitor) VisitStmt(s ast.Stmt) {
	ast.WalkStmt(v, s)
}

func (v *reqImmutVisitor) VisitExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.AssignMemberExpr:
		if ast.IsRequestDerived(ex.Object) {
			v.errs = append(v.errs, errors.NewLintError(ex.P, "request fields are read-only"))
		}
	case *ast.AssignIndexExpr:
		if ast.IsRequestDerived(ex.Object) {
			v.errs = append(v.errs, errors.NewLintError(ex.P, "request fields are read-only"))
		}
	}
	ast.WalkExpr(v, e)
}
