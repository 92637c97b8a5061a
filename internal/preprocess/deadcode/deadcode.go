// Package deadcode implements the dead-code-elimination transform that
// runs after parsing and before the lint passes: statements following an
// always-terminating statement in the same block are unreachable and are
// dropped.
package deadcode

import "github.com/phillarmonic/mockscript/internal/ast"

// Strip mutates b in place, removing statements that can never execute,
// and recurses into every nested block.
func Strip(b *ast.Block) {
	stripBlock(b)
}

func stripBlock(b *ast.Block) {
	for _, s := range b.Stmts {
		stripStmt(s)
	}
	for i, s := range b.Stmts {
		if Terminates(s) {
			b.Stmts = b.Stmts[:i+1]
			return
		}
	}
}

func stripStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.IfElseStmt:
		stripBlock(st.Then)
		if st.Else != nil {
			stripBlock(st.Else)
		}
	case *ast.SwitchStmt:
		for i := range st.Cases {
			stripBlock(st.Cases[i].Block)
		}
		if st.Default != nil {
			stripBlock(st.Default)
		}
	case *ast.ForStmt:
		stripBlock(st.Body)
	case *ast.FunctionDeclStmt:
		stripBlock(st.Body)
	}
}

// Terminates reports whether executing s unconditionally diverts control
// flow away from the statement following it in its block (return, a
// break/continue jump, or a branch where every arm terminates).
//
// `for` is deliberately never considered terminating here, even when its
// body always returns or breaks: a loop's trip count is not known
// statically, so code after it is always potentially reachable. This is
// intentionally stricter than the must_return lint's own block-return
// predicate, which does allow `for { ... }` to satisfy "this block always
// returns" when its body always returns.
func Terminates(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.ReturnStmt, *ast.ReturnStatusStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return true
	case *ast.IfElseStmt:
		if st.Else == nil {
			return false
		}
		return blockTerminates(st.Then) && blockTerminates(st.Else)
	case *ast.SwitchStmt:
		if st.Default == nil {
			return false
		}
		for _, c := range st.Cases {
			if !blockTerminates(c.Block) {
				return false
			}
		}
		return blockTerminates(st.Default)
	default:
		return false
	}
}

func blockTerminates(b *ast.Block) bool {
	for _, s := range b.Stmts {
		if Terminates(s) {
			return true
		}
	}
	return false
}
