package lints

import (
	"fmt"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/types"
)

// typeAssignPass checks that every `let` initializer and every assignment
// expression's right-hand side is statically Assignable into the
// destination's declared type. Expressions whose type cannot be determined
// statically (request-derived reads, member access) are left unchecked
// here; req_type_guard is responsible for demanding a runtime guard before
// such a value reaches a typed destination, and the evaluator performs the
// actual runtime check when the value is bound.
type typeAssignPass struct{}

func (typeAssignPass) Name() string { return "type_assign" }

func (p typeAssignPass) Check(program *ast.Block, funcs FuncTable) []errors.LintError {
	c := &typeChecker{funcs: funcs}
	root := NewVarScope(nil)
	c.checkBlock(program, root)
	return c.errs
}

type typeChecker struct {
	funcs FuncTable
	errs  []errors.LintError
}

func (c *typeChecker) fail(pos ast.Position, format string, args ...interface{}) {
	c.errs = append(c.errs, errors.NewLintError(pos, fmt.Sprintf(format, args...)))
}

func (c *typeChecker) checkBlock(b *ast.Block, scope *VarScope) {
	for _, s := range b.Stmts {
		c.checkStmt(s, scope)
	}
}

func (c *typeChecker) checkStmt(s ast.Stmt, scope *VarScope) {
	switch st := s.(type) {
	case *ast.LetStmt:
		if st.Init != nil {
			if initTy, known := c.infer(st.Init, scope); known && !types.Assignable(st.Type, initTy) {
				c.fail(st.P, "cannot assign %s to '%s' of declared type %s", initTy, st.Name, st.Type)
			}
		}
		scope.Declare(st.Name, st.Type)
	case *ast.ReturnStmt:
		c.infer(st.Value, scope)
	case *ast.ReturnStatusStmt:
		c.infer(st.Status, scope)
		c.infer(st.Value, scope)
	case *ast.ExprStmt:
		c.infer(st.X, scope)
	case *ast.FunctionDeclStmt:
		fnScope := NewVarScope(nil)
		for _, param := range st.Params {
			fnScope.Declare(param.Name, param.Type)
		}
		c.checkBlock(st.Body, fnScope)
	case *ast.IfElseStmt:
		c.infer(st.Cond, scope)
		c.checkBlock(st.Then, NewVarScope(scope))
		if st.Else != nil {
			c.checkBlock(st.Else, NewVarScope(scope))
		}
	case *ast.SwitchStmt:
		c.infer(st.Cond, scope)
		for _, cs := range st.Cases {
			c.infer(cs.Expr, scope)
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
		c.infer(st.Cond, loopScope)
		if st.Increment != nil {
			c.infer(st.Increment, loopScope)
		}
		c.checkBlock(st.Body, NewVarScope(loopScope))
	}
}

// infer computes a best-effort static type for e, recording any type_assign
// errors found along the way (e.g. inside nested assignment expressions).
//
// The second return value reports whether the type is statically known.
// Request-derived reads and member access are never statically known: their
// actual type can only be proven at runtime, by a toType guard or by the
// evaluator's own type check. Callers must not apply an Assignable check
// against an unknown type.
func (c *typeChecker) infer(e ast.Expr, scope *VarScope) (types.VarType, bool) {
	switch ex := e.(type) {
	case *ast.LiteralExpr:
		switch ex.Value.Kind {
		case ast.LitNumber:
			return types.Number, true
		case ast.LitString:
			return types.String, true
		case ast.LitBool:
			return types.Bool, true
		default:
			return types.Undefined, true
		}
	case *ast.TemplateExpr:
		for _, part := range ex.Parts {
			if part.Expr != nil {
				c.infer(part.Expr, scope)
			}
		}
		return types.String, true
	case *ast.TypeLiteralExpr:
		return types.Any, true
	case *ast.RequestFieldExpr:
		return types.Any, false
	case *ast.IdentExpr:
		if t, ok := scope.Lookup(ex.Name); ok {
			return t, true
		}
		return types.Any, true
	case *ast.ArrayExpr:
		if len(ex.Elements) == 0 {
			return types.Array(types.Any), true
		}
		elem, _ := c.infer(ex.Elements[0], scope)
		for _, el := range ex.Elements[1:] {
			t, _ := c.infer(el, scope)
			if !elem.Equal(t) {
				elem = types.Any
			}
		}
		return types.Array(elem), true
	case *ast.ObjectLiteralExpr:
		for _, v := range ex.Values {
			c.infer(v, scope)
		}
		return types.Object, true
	case *ast.BinaryExpr:
		l, lKnown := c.infer(ex.Left, scope)
		r, rKnown := c.infer(ex.Right, scope)
		switch ex.Op {
		case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Rem:
			if ex.Op == ast.Add && lKnown && rKnown && l.Equal(types.String) && r.Equal(types.String) {
				return types.String, true
			}
			if lKnown && !types.IsAny(l) && !l.Equal(types.Number) {
				c.fail(ex.P, "arithmetic operator '%s' requires num, found %s", ex.Op, l)
			}
			if rKnown && !types.IsAny(r) && !r.Equal(types.Number) {
				c.fail(ex.P, "arithmetic operator '%s' requires num, found %s", ex.Op, r)
			}
			return types.Number, true
		default:
			return types.Bool, true
		}
	case *ast.MemberExpr:
		c.infer(ex.Object, scope)
		return types.Any, false
	case *ast.IndexExpr:
		objTy, objKnown := c.infer(ex.Object, scope)
		c.infer(ex.Index, scope)
		if arr, ok := types.IsArray(objTy); ok {
			return arr.Elem, objKnown
		}
		return types.Any, false
	case *ast.CallExpr:
		for _, a := range ex.Args {
			c.infer(a, scope)
		}
		if name, ok := ast.IdentNameFromCallee(ex.Callee); ok {
			if fn, ok := c.funcs[name]; ok {
				return fn.ReturnType, true
			}
			return builtinReturnType(name), true
		}
		if _, method, ok := ast.ReceiverAndMethodFromCallee(ex.Callee); ok {
			return memberReturnType(method), true
		}
		return types.Any, false
	case *ast.AssignVarExpr:
		valTy, known := c.infer(ex.Value, scope)
		if declTy, ok := scope.Lookup(ex.Name); ok {
			if known && !types.Assignable(declTy, valTy) {
				c.fail(ex.P, "cannot assign %s to '%s' of declared type %s", valTy, ex.Name, declTy)
			}
		}
		return valTy, known
	case *ast.AssignMemberExpr:
		c.infer(ex.Object, scope)
		return c.infer(ex.Value, scope)
	case *ast.AssignIndexExpr:
		c.infer(ex.Object, scope)
		c.infer(ex.Index, scope)
		return c.infer(ex.Value, scope)
	}
	return types.Any, false
}

// memberReturnType gives a precise static type for the handful of
// methods whose result type is always the same regardless of receiver.
// It only applies to call syntax (receiver.method(...)); bare member
// access is always statically unknown.
func memberReturnType(method string) types.VarType {
	switch method {
	case "length":
		return types.Number
	case "contains":
		return types.Bool
	default:
		return types.Any
	}
}

func builtinReturnType(name string) types.VarType {
	switch name {
	case "toString":
		return types.String
	case "toType":
		return types.Any
	case "cacheGet":
		return types.Any
	case "print", "sleep", "cacheSet", "cacheDel", "cacheClear",
		"dbCreateTable", "dbDropTable", "dbCreateEntry", "dbUpdateById",
		"dbUpdateByFields", "dbDeleteById", "dbDeleteByFields", "dbDrop":
		return types.Undefined
	case "dbGetAllTables", "dbGetAll", "dbGetByFields":
		return types.Array(types.Any)
	case "dbGetById":
		return types.Any
	default:
		return types.Any
	}
}
