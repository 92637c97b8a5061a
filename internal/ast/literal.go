package ast

import "github.com/phillarmonic/mockscript/internal/types"

// Literal is a parsed constant value: Number, String, Bool or Undefined.
type Literal struct {
	Kind LiteralKind
	Num  float64
	Str  string
	Bool bool
}

type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitBool
	LitUndefined
)

// TemplatePart is one segment of a string template: raw text or an
// interpolated expression.
type TemplatePart struct {
	Text string // valid when Expr == nil
	Expr Expr   // valid when non-nil
}

// TypeLiteral wraps a parsed type annotation appearing as an expression
// value, e.g. the RHS of `toType(x) == num`.
type TypeLiteral struct {
	Type types.VarType
}
