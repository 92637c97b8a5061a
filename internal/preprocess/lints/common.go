// Package lints implements the seven static-analysis passes that run over
// a parsed, dead-code-stripped program before evaluation. Each pass
// accumulates errors.LintError values rather than aborting on the first
// one; Run sorts and returns them all together.
package lints

import (
	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/types"
)

// VarScope is a parent-linked chain of declared variable types, one per
// lexical block, used by the typing and declaration-shadowing passes.
type VarScope struct {
	parent *VarScope
	vars   map[string]types.VarType
}

func NewVarScope(parent *VarScope) *VarScope {
	return &VarScope{parent: parent, vars: map[string]types.VarType{}}
}

func (s *VarScope) Declare(name string, t types.VarType) { s.vars[name] = t }

func (s *VarScope) Lookup(name string) (types.VarType, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// DeclaredHere reports whether name was declared directly in this scope
// (not an ancestor). The shadowing check uses Lookup instead.
func (s *VarScope) DeclaredHere(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// FuncTable maps every declared function name (collected tree-wide,
// mirroring the scope-insensitive lookup unknowncalls relies on) to its
// declaration node.
type FuncTable map[string]*ast.FunctionDeclStmt

func CollectFuncTable(b *ast.Block) FuncTable {
	out := FuncTable{}
	var walkBlock func(*ast.Block)
	var walkStmt func(ast.Stmt)
	walkStmt = func(s ast.Stmt) {
		switch st := s.(type) {
		case *ast.FunctionDeclStmt:
			out[st.Name] = st
			walkBlock(st.Body)
		case *ast.IfElseStmt:
			walkBlock(st.Then)
			if st.Else != nil {
				walkBlock(st.Else)
			}
		case *ast.SwitchStmt:
			for _, c := range st.Cases {
				walkBlock(c.Block)
			}
			if st.Default != nil {
				walkBlock(st.Default)
			}
		case *ast.ForStmt:
			walkBlock(st.Body)
		}
	}
	walkBlock = func(b *ast.Block) {
		for _, s := range b.Stmts {
			walkStmt(s)
		}
	}
	walkBlock(b)
	return out
}

// Pass is implemented by each of the seven lint checks.
type Pass interface {
	Name() string
	Check(program *ast.Block, funcs FuncTable) []errors.LintError
}

// Run executes every pass and returns all accumulated errors sorted by
// position. It never stops early: every pass sees the whole program even
// if an earlier pass already found problems, since the passes check
// independent properties.
func Run(program *ast.Block) []errors.LintError {
	funcs := CollectFuncTable(program)
	passes := []Pass{
		mustReturnPass{},
		typeAssignPass{},
		reqImmutabilityPass{},
		reqTypeGuardPass{},
		definiteAssignPass{},
		declarationsPass{},
		unknownCallsPass{},
	}
	var all []errors.LintError
	for _, pass := range passes {
		all = append(all, pass.Check(program, funcs)...)
	}
	errors.SortLintErrors(all)
	return all
}
