package eval

import (
	"fmt"
	"strings"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/builtins"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/runtime"
	"github.com/phillarmonic/mockscript/internal/value"
)

// Expr evaluates e against ctx's current Env and returns its value.
func Expr(ctx *runtime.EvalCtx, e ast.Expr) (value.Value, error) {
	switch ex := e.(type) {
	case *ast.LiteralExpr:
		return value.FromLiteral(ex.Value), nil

	case *ast.TemplateExpr:
		return evalTemplate(ctx, ex)

	case *ast.TypeLiteralExpr:
		return value.Type{T: ex.Value.Type}, nil

	case *ast.RequestFieldExpr:
		return requestField(ctx, ex.Field), nil

	case *ast.IdentExpr:
		v, ok := ctx.Env.Get(ex.Name)
		if !ok {
			return nil, errors.NotFound(ex.Name, ex.P)
		}
		return v, nil

	case *ast.BinaryExpr:
		return evalBinary(ctx, ex)

	case *ast.ArrayExpr:
		out := make(value.Array, len(ex.Elements))
		for i, el := range ex.Elements {
			v, err := Expr(ctx, el)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case *ast.ObjectLiteralExpr:
		out := value.Object{}
		for i, k := range ex.Keys {
			v, err := Expr(ctx, ex.Values[i])
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil

	case *ast.MemberExpr:
		objVal, err := Expr(ctx, ex.Object)
		if err != nil {
			return nil, err
		}
		obj, ok := objVal.(value.Object)
		if !ok {
			return nil, errors.Mismatch("cannot read property '"+ex.Property+"' of a non-object value", ex.P)
		}
		if v, ok := obj[ex.Property]; ok {
			return v, nil
		}
		return value.Undefined{}, nil

	case *ast.IndexExpr:
		return evalIndex(ctx, ex)

	case *ast.CallExpr:
		return evalCall(ctx, ex)

	case *ast.AssignVarExpr:
		v, err := Expr(ctx, ex.Value)
		if err != nil {
			return nil, err
		}
		found, err := ctx.Env.Set(ex.Name, v, ex.P)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.NotFound(ex.Name, ex.P)
		}
		return v, nil

	case *ast.AssignMemberExpr:
		v, err := Expr(ctx, ex.Value)
		if err != nil {
			return nil, err
		}
		if err := assignTo(ctx, &ast.MemberExpr{Object: ex.Object, Property: ex.Property, P: ex.P}, v); err != nil {
			return nil, err
		}
		return v, nil

	case *ast.AssignIndexExpr:
		v, err := Expr(ctx, ex.Value)
		if err != nil {
			return nil, err
		}
		if err := assignTo(ctx, &ast.IndexExpr{Object: ex.Object, Index: ex.Index, P: ex.P}, v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, errors.Gen("unsupported expression", e.Pos())
}

func requestField(ctx *runtime.EvalCtx, field ast.RequestFieldKind) value.Value {
	if ctx.Request == nil {
		return value.Undefined{}
	}
	switch field {
	case ast.BodyField:
		return ctx.Request.Body
	case ast.ParamField:
		return ctx.Request.Params
	case ast.QueryField:
		return ctx.Request.Query
	case ast.HeadersField:
		return ctx.Request.Headers
	default:
		return value.Undefined{}
	}
}

func evalTemplate(ctx *runtime.EvalCtx, ex *ast.TemplateExpr) (value.Value, error) {
	var sb strings.Builder
	for _, part := range ex.Parts {
		if part.Expr == nil {
			sb.WriteString(part.Text)
			continue
		}
		v, err := Expr(ctx, part.Expr)
		if err != nil {
			return nil, err
		}
		sb.WriteString(v.String())
	}
	return value.String(sb.String()), nil
}

func evalBinary(ctx *runtime.EvalCtx, ex *ast.BinaryExpr) (value.Value, error) {
	if ex.Op == ast.And || ex.Op == ast.Or {
		left, err := Expr(ctx, ex.Left)
		if err != nil {
			return nil, err
		}
		lb := value.ToBool(left)
		if ex.Op == ast.And && !lb {
			return value.Bool(false), nil
		}
		if ex.Op == ast.Or && lb {
			return value.Bool(true), nil
		}
		right, err := Expr(ctx, ex.Right)
		if err != nil {
			return nil, err
		}
		return value.Bool(value.ToBool(right)), nil
	}
	left, err := Expr(ctx, ex.Left)
	if err != nil {
		return nil, err
	}
	right, err := Expr(ctx, ex.Right)
	if err != nil {
		return nil, err
	}
	return applyBinOp(ex.Op, left, right, ex.P)
}

func evalIndex(ctx *runtime.EvalCtx, ex *ast.IndexExpr) (value.Value, error) {
	objVal, err := Expr(ctx, ex.Object)
	if err != nil {
		return nil, err
	}
	idxVal, err := Expr(ctx, ex.Index)
	if err != nil {
		return nil, err
	}
	switch container := objVal.(type) {
	case value.Array:
		i, err := arrayIndex(container, idxVal, ex.P)
		if err != nil {
			return nil, err
		}
		return container[i], nil
	case value.Object:
		key, ok := idxVal.(value.String)
		if !ok {
			return nil, errors.Mismatch("object index must be a string", ex.P)
		}
		if v, ok := container[string(key)]; ok {
			return v, nil
		}
		return value.Undefined{}, nil
	default:
		return nil, errors.Mismatch("cannot index a non-array, non-object value", ex.P)
	}
}

func evalCall(ctx *runtime.EvalCtx, ex *ast.CallExpr) (value.Value, error) {
	args := make([]value.Value, len(ex.Args))
	for i, a := range ex.Args {
		v, err := Expr(ctx, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if name, ok := ast.IdentNameFromCallee(ex.Callee); ok {
		if result, handled, err := builtins.CallFree(ctx, name, args, ex.P); handled {
			return result, err
		}
		decl, ok := ctx.Env.LookupFunc(name)
		if !ok {
			return nil, errors.Gen("call to unknown function '"+name+"'", ex.P)
		}
		return callUserFunction(ctx, decl, args, ex.P)
	}

	receiverExpr, method, ok := ast.ReceiverAndMethodFromCallee(ex.Callee)
	if !ok {
		return nil, errors.Gen("callee is not callable", ex.P)
	}
	receiver, err := Expr(ctx, receiverExpr)
	if err != nil {
		return nil, err
	}
	if builtins.IsMutMethod(method) {
		assignable := isAssignableExpr(receiverExpr) && !ast.IsRequestDerived(receiverExpr)
		result, updated, err := builtins.ApplyMutMethod(receiver, method, args, ex.P)
		if err != nil {
			return nil, err
		}
		if assignable {
			if err := assignTo(ctx, receiverExpr, updated); err != nil {
				return nil, err
			}
		}
		return result, nil
	}
	return builtins.CallPureMethod(receiver, method, args, ex.P)
}

func isAssignableExpr(e ast.Expr) bool {
	switch e.(type) {
	case *ast.IdentExpr, *ast.MemberExpr, *ast.IndexExpr:
		return true
	default:
		return false
	}
}

func callUserFunction(ctx *runtime.EvalCtx, decl *ast.FunctionDeclStmt, args []value.Value, pos ast.Position) (value.Value, error) {
	if ctx.CallDepth >= runtime.MaxCallDepth {
		return nil, errors.Gen("maximum call depth exceeded", pos)
	}
	if len(args) != len(decl.Params) {
		return nil, errors.WrongArgs(decl.Name, len(decl.Params), pos)
	}
	for i, param := range decl.Params {
		if !value.IsType(args[i], param.Type) {
			return nil, errors.Mismatch(
				fmt.Sprintf("argument '%s' of '%s' expects %s, found %s", param.Name, decl.Name, param.Type, value.ToType(args[i])),
				pos,
			)
		}
	}
	callEnv := runtime.NewCallEnv(ctx.Env.Funcs())
	for i, param := range decl.Params {
		callEnv.Declare(param.Name, param.Type, args[i])
	}
	callCtx := ctx.WithEnv(callEnv)
	callCtx.CallDepth = ctx.CallDepth + 1
	cf, err := Block(callCtx, decl.Body)
	if err != nil {
		return nil, err
	}
	switch cf.Kind {
	case Return:
		if !value.IsType(cf.Value, decl.ReturnType) {
			return nil, errors.Mismatch(
				fmt.Sprintf("'%s' returns %s, declared return type is %s", decl.Name, value.ToType(cf.Value), decl.ReturnType),
				pos,
			)
		}
		return cf.Value, nil
	case ReturnStatus:
		return nil, errors.Gen("return status, value is only valid at top level", pos)
	default:
		return value.Undefined{}, nil
	}
}
