package ast

import (
	"fmt"
	"strings"
)

func (*LiteralExpr) expressionNode()      {}
func (*TemplateExpr) expressionNode()     {}
func (*TypeLiteralExpr) expressionNode()  {}
func (*ObjectLiteralExpr) expressionNode() {}
func (*RequestFieldExpr) expressionNode() {}
func (*IdentExpr) expressionNode()        {}
func (*BinaryExpr) expressionNode()       {}
func (*ArrayExpr) expressionNode()        {}
func (*AssignVarExpr) expressionNode()    {}
func (*AssignMemberExpr) expressionNode() {}
func (*AssignIndexExpr) expressionNode()  {}
func (*IndexExpr) expressionNode()        {}
func (*MemberExpr) expressionNode()       {}
func (*CallExpr) expressionNode()         {}

// LiteralExpr is a constant number/string/bool/undefined value.
type LiteralExpr struct {
	Value Literal
	P     Position
}

func (e *LiteralExpr) Pos() Position { return e.P }
func (e *LiteralExpr) String() string {
	switch e.Value.Kind {
	case LitNumber:
		return fmt.Sprintf("%v", e.Value.Num)
	case LitString:
		return fmt.Sprintf("%q", e.Value.Str)
	case LitBool:
		return fmt.Sprintf("%v", e.Value.Bool)
	default:
		return "undefined"
	}
}

// TemplateExpr is a backtick string template with interpolated parts.
type TemplateExpr struct {
	Parts []TemplatePart
	P     Position
}

func (e *TemplateExpr) Pos() Position { return e.P }
func (e *TemplateExpr) String() string {
	var sb strings.Builder
	sb.WriteByte('`')
	for _, p := range e.Parts {
		if p.Expr != nil {
			sb.WriteString("${" + p.Expr.String() + "}")
		} else {
			sb.WriteString(p.Text)
		}
	}
	sb.WriteByte('`')
	return sb.String()
}

// TypeLiteralExpr is a bare type name used as a value, e.g. in `toType(x) == num`.
type TypeLiteralExpr struct {
	Value TypeLiteral
	P     Position
}

func (e *TypeLiteralExpr) Pos() Position  { return e.P }
func (e *TypeLiteralExpr) String() string { return e.Value.Type.String() }

// ObjectLiteralExpr is `{ key: expr, ... }` with ordered fields.
type ObjectLiteralExpr struct {
	Keys   []string
	Values []Expr
	P      Position
}

func (e *ObjectLiteralExpr) Pos() Position { return e.P }
func (e *ObjectLiteralExpr) String() string {
	parts := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Values[i].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// RequestFieldExpr is `req.body|params|query|headers`.
type RequestFieldExpr struct {
	Field RequestFieldKind
	P     Position
}

func (e *RequestFieldExpr) Pos() Position  { return e.P }
func (e *RequestFieldExpr) String() string { return "req." + e.Field.String() }

// IdentExpr is a bare variable reference.
type IdentExpr struct {
	Name string
	P    Position
}

func (e *IdentExpr) Pos() Position  { return e.P }
func (e *IdentExpr) String() string { return e.Name }

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
	P     Position
}

func (e *BinaryExpr) Pos() Position { return e.P }
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// ArrayExpr is `[e1, e2, ...]`.
type ArrayExpr struct {
	Elements []Expr
	P        Position
}

func (e *ArrayExpr) Pos() Position { return e.P }
func (e *ArrayExpr) String() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// AssignVarExpr is `name = value`.
type AssignVarExpr struct {
	Name  string
	Value Expr
	P     Position
}

func (e *AssignVarExpr) Pos() Position  { return e.P }
func (e *AssignVarExpr) String() string { return fmt.Sprintf("%s = %s", e.Name, e.Value) }

// AssignMemberExpr is `object.property = value`.
type AssignMemberExpr struct {
	Object   Expr
	Property string
	Value    Expr
	P        Position
}

func (e *AssignMemberExpr) Pos() Position { return e.P }
func (e *AssignMemberExpr) String() string {
	return fmt.Sprintf("%s.%s = %s", e.Object, e.Property, e.Value)
}

// AssignIndexExpr is `object[index] = value`.
type AssignIndexExpr struct {
	Object Expr
	Index  Expr
	Value  Expr
	P      Position
}

func (e *AssignIndexExpr) Pos() Position { return e.P }
func (e *AssignIndexExpr) String() string {
	return fmt.Sprintf("%s[%s] = %s", e.Object, e.Index, e.Value)
}

// IndexExpr is `object[index]`.
type IndexExpr struct {
	Object Expr
	Index  Expr
	P      Position
}

func (e *IndexExpr) Pos() Position  { return e.P }
func (e *IndexExpr) String() string { return fmt.Sprintf("%s[%s]", e.Object, e.Index) }

// MemberExpr is `object.property`.
type MemberExpr struct {
	Object   Expr
	Property string
	P        Position
}

func (e *MemberExpr) Pos() Position  { return e.P }
func (e *MemberExpr) String() string { return fmt.Sprintf("%s.%s", e.Object, e.Property) }

// CallExpr is `callee(args...)`. Callee is either an IdentExpr (free
// function/builtin call) or a MemberExpr (method call).
type CallExpr struct {
	Callee Expr
	Args   []Expr
	P      Position
}

func (e *CallExpr) Pos() Position { return e.P }
func (e *CallExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(parts, ", "))
}

// RootIdent walks a Member/Index chain down to its root identifier, or
// returns ("", false) if the chain does not bottom out in a variable.
func RootIdent(e Expr) (string, bool) {
	for {
		switch v := e.(type) {
		case *IdentExpr:
			return v.Name, true
		case *MemberExpr:
			e = v.Object
		case *IndexExpr:
			e = v.Object
		default:
			return "", false
		}
	}
}

// IsRequestDerived reports whether e's root traversal bottoms out in a
// RequestFieldExpr (req.body|params|query|headers).
func IsRequestDerived(e Expr) bool {
	for {
		switch v := e.(type) {
		case *RequestFieldExpr:
			return true
		case *MemberExpr:
			e = v.Object
		case *IndexExpr:
			e = v.Object
		case *CallExpr:
			if m, ok := v.Callee.(*MemberExpr); ok {
				e = m.Object
				continue
			}
			return false
		default:
			return false
		}
	}
}
