package ast

import (
	"fmt"
	"strings"

	"github.com/phillarmonic/mockscript/internal/types"
)

func (*LetStmt) statementNode()          {}
func (*ReturnStmt) statementNode()       {}
func (*ReturnStatusStmt) statementNode() {}
func (*ExprStmt) statementNode()         {}
func (*FunctionDeclStmt) statementNode() {}
func (*IfElseStmt) statementNode()       {}
func (*SwitchStmt) statementNode()       {}
func (*ForStmt) statementNode()          {}
func (*BreakStmt) statementNode()        {}
func (*ContinueStmt) statementNode()     {}

// LetStmt is `let name: T [= init];`.
type LetStmt struct {
	Name string
	Type types.VarType
	Init Expr // nil when absent
	P    Position
}

func (s *LetStmt) Pos() Position { return s.P }
func (s *LetStmt) String() string {
	if s.Init != nil {
		return fmt.Sprintf("let %s: %s = %s;", s.Name, s.Type, s.Init)
	}
	return fmt.Sprintf("let %s: %s;", s.Name, s.Type)
}

// ReturnStmt is `return expr;`: a function's result, or at the top level
// a response body with status 200.
type ReturnStmt struct {
	Value Expr
	P     Position
}

func (s *ReturnStmt) Pos() Position  { return s.P }
func (s *ReturnStmt) String() string { return fmt.Sprintf("return %s;", s.Value) }

// ReturnStatusStmt is `return status, value;`, only valid at top level.
type ReturnStatusStmt struct {
	Status Expr
	Value  Expr
	P      Position
}

func (s *ReturnStatusStmt) Pos() Position { return s.P }
func (s *ReturnStatusStmt) String() string {
	return fmt.Sprintf("return %s, %s;", s.Status, s.Value)
}

// ExprStmt is an expression evaluated for its side effect.
type ExprStmt struct {
	X Expr
	P Position
}

func (s *ExprStmt) Pos() Position  { return s.P }
func (s *ExprStmt) String() string { return s.X.String() + ";" }

// Param is a function parameter name+type.
type Param struct {
	Name string
	Type types.VarType
}

// FunctionDeclStmt is `func name(params): ReturnType { body }`. The parser
// accepts it in any block, not only at the top level.
type FunctionDeclStmt struct {
	Name       string
	Params     []Param
	ReturnType types.VarType
	Body       *Block
	P          Position
}

func (s *FunctionDeclStmt) Pos() Position { return s.P }
func (s *FunctionDeclStmt) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	return fmt.Sprintf("func %s(%s): %s %s", s.Name, strings.Join(parts, ", "), s.ReturnType, s.Body)
}

// IfElseStmt is `if (cond) { then } else { else }`.
type IfElseStmt struct {
	Cond Expr
	Then *Block
	Else *Block // nil when absent
	P    Position
}

func (s *IfElseStmt) Pos() Position { return s.P }
func (s *IfElseStmt) String() string {
	if s.Else != nil {
		return fmt.Sprintf("if (%s) %s else %s", s.Cond, s.Then, s.Else)
	}
	return fmt.Sprintf("if (%s) %s", s.Cond, s.Then)
}

// SwitchCase is one `case expr: block` arm.
type SwitchCase struct {
	Expr  Expr
	Block *Block
}

// SwitchStmt is `switch (cond) { case e: ... default: ... }`.
type SwitchStmt struct {
	Cond    Expr
	Cases   []SwitchCase
	Default *Block // nil when absent
	P       Position
}

func (s *SwitchStmt) Pos() Position  { return s.P }
func (s *SwitchStmt) String() string { return fmt.Sprintf("switch (%s) { ... }", s.Cond) }

// ForStmt is `for (init?; cond; inc?) body`.
type ForStmt struct {
	Init      Stmt // nil when absent
	Cond      Expr // never nil; defaults to `true` literal when omitted in source
	Increment Expr // nil when absent
	Body      *Block
	P         Position
}

func (s *ForStmt) Pos() Position { return s.P }
func (s *ForStmt) String() string {
	return fmt.Sprintf("for (...; %s; ...) %s", s.Cond, s.Body)
}

// BreakStmt is `break;`.
type BreakStmt struct{ P Position }

func (s *BreakStmt) Pos() Position  { return s.P }
func (s *BreakStmt) String() string { return "break;" }

// ContinueStmt is `continue;`.
type ContinueStmt struct{ P Position }

func (s *ContinueStmt) Pos() Position  { return s.P }
func (s *ContinueStmt) String() string { return "continue;" }
