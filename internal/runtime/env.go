// Package runtime implements the evaluator's lexical environment model:
// parent-linked variable scopes plus a dynamically populated function
// table, and the process-wide globals (the cache and table store handles)
// every evaluation shares.
package runtime

import (
	"fmt"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/types"
	"github.com/phillarmonic/mockscript/internal/value"
)

// FuncTable maps a declared function name to its AST node. Functions are
// registered into it as `func` statements actually execute (not hoisted),
// so a function is only callable after its declaration statement runs.
type FuncTable map[string]*ast.FunctionDeclStmt

// cell is the (declared_type, value) pair the Environment model binds a
// name to: the declared type is fixed at `let` time and every later
// reassignment is checked against it at runtime.
type cell struct {
	declared types.VarType
	value    value.Value
}

// Env is one lexical scope. Ordinary child scopes (if/for/switch bodies,
// nested blocks) share their parent's funcs table BY REFERENCE: a
// function declared inside an `if` becomes visible to the rest of the
// enclosing scope once that statement executes, because the underlying
// map is the same one. A function CALL, by contrast, gets a brand new Env
// with parent set to nil and funcs set to a one-time snapshot COPY of the
// table visible at the call site — the function can call anything that
// existed when it was invoked, but can never see the caller's local
// variables. This is the "functions capture only the function namespace,
// never local variables" rule.
type Env struct {
	vars   map[string]*cell
	parent *Env
	funcs  *FuncTable
}

// NewRootEnv creates a top-level Env with a fresh, empty function table.
func NewRootEnv() *Env {
	ft := FuncTable{}
	return &Env{vars: map[string]*cell{}, funcs: &ft}
}

// NewChildEnv creates an ordinary nested scope sharing parent's variables
// (via the parent chain) and function table (via the shared pointer).
func NewChildEnv(parent *Env) *Env {
	return &Env{vars: map[string]*cell{}, parent: parent, funcs: parent.funcs}
}

// NewCallEnv creates the scope a function body executes in: no access to
// any caller variable, and a snapshot of the function table as it stood
// at the call site.
func NewCallEnv(callerFuncs *FuncTable) *Env {
	snapshot := make(FuncTable, len(*callerFuncs))
	for k, v := range *callerFuncs {
		snapshot[k] = v
	}
	return &Env{vars: map[string]*cell{}, funcs: &snapshot}
}

// Declare introduces a new variable in this scope (a `let`), recording
// its declared type alongside the initial value.
func (e *Env) Declare(name string, declared types.VarType, v value.Value) {
	e.vars[name] = &cell{declared: declared, value: v}
}

// Get looks up a variable's current value by walking the parent chain.
func (e *Env) Get(name string) (value.Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if c, ok := cur.vars[name]; ok {
			return c.value, true
		}
	}
	return nil, false
}

// DeclaredType returns the declared type a variable was introduced with,
// found anywhere in the parent chain.
func (e *Env) DeclaredType(name string) (types.VarType, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if c, ok := cur.vars[name]; ok {
			return c.declared, true
		}
	}
	return nil, false
}

// Set mutates an existing variable found anywhere in the parent chain,
// runtime-type-checking v against the variable's declared type. It
// reports found=false if name was never declared; it returns an error if
// v doesn't satisfy the declared type.
func (e *Env) Set(name string, v value.Value, pos ast.Position) (found bool, err error) {
	for cur := e; cur != nil; cur = cur.parent {
		if c, ok := cur.vars[name]; ok {
			if !value.IsType(v, c.declared) {
				return true, errors.Gen(
					fmt.Sprintf("cannot assign %s to '%s' of declared type %s", value.ToType(v), name, c.declared),
					pos,
				)
			}
			c.value = v
			return true, nil
		}
	}
	return false, nil
}

// DeclareFunc registers a function into the live, shared function table.
func (e *Env) DeclareFunc(name string, decl *ast.FunctionDeclStmt) {
	(*e.funcs)[name] = decl
}

// LookupFunc finds a user-declared function visible from this scope.
func (e *Env) LookupFunc(name string) (*ast.FunctionDeclStmt, bool) {
	decl, ok := (*e.funcs)[name]
	return decl, ok
}

// Funcs exposes the live function table pointer, used to snapshot it when
// a function is called.
func (e *Env) Funcs() *FuncTable { return e.funcs }
