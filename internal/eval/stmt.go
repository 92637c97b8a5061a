package eval

import (
	"fmt"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/runtime"
	"github.com/phillarmonic/mockscript/internal/value"
)

// Stmt executes one statement and reports the control flow it produced.
func Stmt(ctx *runtime.EvalCtx, s ast.Stmt) (ControlFlow, error) {
	switch st := s.(type) {
	case *ast.LetStmt:
		var v value.Value = value.Undefined{}
		if st.Init != nil {
			var err error
			v, err = Expr(ctx, st.Init)
			if err != nil {
				return none, err
			}
			if !value.IsType(v, st.Type) {
				return none, errors.Gen(
					fmt.Sprintf("cannot assign %s to '%s' of declared type %s", value.ToType(v), st.Name, st.Type),
					st.P,
				)
			}
		}
		ctx.Env.Declare(st.Name, st.Type, v)
		return none, nil

	case *ast.ReturnStmt:
		v, err := Expr(ctx, st.Value)
		if err != nil {
			return none, err
		}
		return ControlFlow{Kind: Return, Value: v}, nil

	case *ast.ReturnStatusStmt:
		status, err := Expr(ctx, st.Status)
		if err != nil {
			return none, err
		}
		v, err := Expr(ctx, st.Value)
		if err != nil {
			return none, err
		}
		return ControlFlow{Kind: ReturnStatus, Status: status, Value: v}, nil

	case *ast.ExprStmt:
		_, err := Expr(ctx, st.X)
		return none, err

	case *ast.FunctionDeclStmt:
		ctx.Env.DeclareFunc(st.Name, st)
		return none, nil

	case *ast.IfElseStmt:
		cond, err := Expr(ctx, st.Cond)
		if err != nil {
			return none, err
		}
		if value.ToBool(cond) {
			return Block(ctx.WithEnv(runtime.NewChildEnv(ctx.Env)), st.Then)
		}
		if st.Else != nil {
			return Block(ctx.WithEnv(runtime.NewChildEnv(ctx.Env)), st.Else)
		}
		return none, nil

	case *ast.SwitchStmt:
		return evalSwitch(ctx, st)

	case *ast.ForStmt:
		return evalFor(ctx, st)

	case *ast.BreakStmt:
		return ControlFlow{Kind: Break}, nil

	case *ast.ContinueStmt:
		return ControlFlow{Kind: Continue}, nil
	}
	return none, errors.Gen("unsupported statement", s.Pos())
}

func evalSwitch(ctx *runtime.EvalCtx, st *ast.SwitchStmt) (ControlFlow, error) {
	cond, err := Expr(ctx, st.Cond)
	if err != nil {
		return none, err
	}
	for _, cs := range st.Cases {
		caseVal, err := Expr(ctx, cs.Expr)
		if err != nil {
			return none, err
		}
		if value.Equal(cond, caseVal) {
			return Block(ctx.WithEnv(runtime.NewChildEnv(ctx.Env)), cs.Block)
		}
	}
	if st.Default != nil {
		return Block(ctx.WithEnv(runtime.NewChildEnv(ctx.Env)), st.Default)
	}
	return none, nil
}

func evalFor(ctx *runtime.EvalCtx, st *ast.ForStmt) (ControlFlow, error) {
	loopEnv := runtime.NewChildEnv(ctx.Env)
	loopCtx := ctx.WithEnv(loopEnv)
	if st.Init != nil {
		if _, err := Stmt(loopCtx, st.Init); err != nil {
			return none, err
		}
	}
	for {
		condVal, err := Expr(loopCtx, st.Cond)
		if err != nil {
			return none, err
		}
		if !value.ToBool(condVal) {
			return none, nil
		}
		bodyCf, err := Block(loopCtx.WithEnv(runtime.NewChildEnv(loopEnv)), st.Body)
		if err != nil {
			return none, err
		}
		switch bodyCf.Kind {
		case Return, ReturnStatus:
			return bodyCf, nil
		case Break:
			return none, nil
		case Continue, None:
			// fall through to increment
		}
		if st.Increment != nil {
			if _, err := Expr(loopCtx, st.Increment); err != nil {
				return none, err
			}
		}
	}
}
