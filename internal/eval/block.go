package eval

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/runtime"
)

// Block executes every statement in b against ctx's current Env in order,
// stopping as soon as a statement yields non-None control flow. Callers
// that want a fresh lexical scope must pass a ctx already rebound to a
// child Env (runtime.NewChildEnv/NewCallEnv) — Block itself never creates
// one, since the caller knows whether this is a loop iteration, an if
// branch, or a function call.
func Block(ctx *runtime.EvalCtx, b *ast.Block) (ControlFlow, error) {
	for _, s := range b.Stmts {
		cf, err := Stmt(ctx, s)
		if err != nil {
			return none, err
		}
		if cf.Kind != None {
			return cf, nil
		}
	}
	return none, nil
}
