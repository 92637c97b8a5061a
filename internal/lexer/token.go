// Package lexer turns mockscript source text into a stream of positioned
// tokens.
package lexer

import "github.com/phillarmonic/mockscript/internal/ast"

// Kind classifies a Token.
type Kind int

const (
	EOF Kind = iota
	Ident

	// literals
	Number
	String
	Template
	True
	False
	UndefinedLit

	// type keywords
	KwBool
	KwNum
	KwStr
	KwVec
	KwObj
	KwAny
	KwUndefined

	// reserved words
	KwLet
	KwReturn
	KwIf
	KwElse
	KwFor
	KwSwitch
	KwCase
	KwDefault
	KwFunc
	KwBreak
	KwContinue
	KwReq
	KwBody
	KwParams
	KwQuery
	KwHeaders

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	Semi
	Dot

	// operators
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Lt
	Gt
	Le
	Ge
	EqEq
	NotEq
	AndAnd
	OrOr
)

var keywords = map[string]Kind{
	"bool":      KwBool,
	"num":       KwNum,
	"str":       KwStr,
	"vec":       KwVec,
	"obj":       KwObj,
	"any":       KwAny,
	"Undefined": KwUndefined,
	"let":       KwLet,
	"return":    KwReturn,
	"if":        KwIf,
	"else":      KwElse,
	"for":       KwFor,
	"switch":    KwSwitch,
	"case":      KwCase,
	"default":   KwDefault,
	"func":      KwFunc,
	"break":     KwBreak,
	"continue":  KwContinue,
	"req":       KwReq,
	"body":      KwBody,
	"params":    KwParams,
	"query":     KwQuery,
	"headers":   KwHeaders,
	"true":      True,
	"false":     False,
	"undefined": UndefinedLit,
}

// Token is a single lexical unit with its source position.
type Token struct {
	Kind Kind
	Lit  string // raw/literal text: identifier name, number text, unescaped string, raw template payload
	Pos  ast.Position
}
