// Package parser implements mockscript's Pratt-style recursive-descent
// parser: token stream -> typed AST.
package parser

import (
	"fmt"

	"github.com/phillarmonic/mockscript/internal/ast"
	perrors "github.com/phillarmonic/mockscript/internal/errors"
	"github.com/phillarmonic/mockscript/internal/lexer"
	"github.com/phillarmonic/mockscript/internal/types"
)

// Parser consumes a token stream from a Lexer and builds an *ast.Block.
// It aborts and returns on the first error (no error recovery).
type Parser struct {
	lex      *lexer.Lexer
	cur      lexer.Token
	filename string
	source   string
}

// Parse parses a full program (top-level block, implicit braces) from src.
func Parse(filename, src string) (*ast.Block, error) {
	p := &Parser{lex: lexer.New(src), filename: filename, source: src}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return p.wrapLexErr(err)
	}
	p.cur = tok
	return nil
}

func (p *Parser) wrapLexErr(err error) error {
	if le, ok := err.(*lexer.Error); ok {
		return &perrors.ParseError{Message: le.Message, Pos: le.Pos, Filename: p.filename, Source: p.source}
	}
	return err
}

func (p *Parser) errf(pos ast.Position, format string, args ...interface{}) error {
	return &perrors.ParseError{Message: fmt.Sprintf(format, args...), Pos: pos, Filename: p.filename, Source: p.source}
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if p.cur.Kind != k {
		return lexer.Token{}, p.errf(p.cur.Pos, "expected %s, found %q", what, p.cur.Lit)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return lexer.Token{}, err
	}
	return tok, nil
}

func (p *Parser) at(k lexer.Kind) bool { return p.cur.Kind == k }

func (p *Parser) parseProgram() (*ast.Block, error) {
	pos := p.cur.Pos
	b := &ast.Block{P: pos}
	for !p.at(lexer.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect(lexer.LBrace, "'{'")
	if err != nil {
		return nil, err
	}
	b := &ast.Block{P: open.Pos}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return b, nil
}

// bodyOrSingleStmt parses either a `{ ... }` block or a single statement
// wrapped as a one-statement block, used by `for` bodies.
func (p *Parser) bodyOrSingleStmt() (*ast.Block, error) {
	if p.at(lexer.LBrace) {
		return p.parseBlock()
	}
	pos := p.cur.Pos
	s, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.Block{Stmts: []ast.Stmt{s}, P: pos}, nil
}

func isBuiltinName(name string) bool {
	switch name {
	case "print", "toString", "toType", "sleep",
		"cacheGet", "cacheSet", "cacheDel", "cacheClear",
		"dbCreateTable", "dbGetAllTables", "dbDropTable", "dbCreateEntry",
		"dbGetAll", "dbGetById", "dbGetByFields", "dbUpdateById",
		"dbUpdateByFields", "dbDeleteById", "dbDeleteByFields", "dbDrop":
		return true
	default:
		return false
	}
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur.Kind {
	case lexer.KwLet:
		return p.parseLet()
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwSwitch:
		return p.parseSwitch()
	case lexer.KwFor:
		return p.parseFor()
	case lexer.KwFunc:
		return p.parseFuncDecl()
	case lexer.KwBreak:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{P: pos}, nil
	case lexer.KwContinue:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{P: pos}, nil
	default:
		pos := p.cur.Pos
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: e, P: pos}, nil
	}
}

func (p *Parser) parseLet() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.Ident, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon, "':'"); err != nil {
		return nil, err
	}
	ty, err := p.parseAssignmentType()
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.at(lexer.Assign) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return &ast.LetStmt{Name: nameTok.Lit, Type: ty, Init: init, P: pos}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.Comma) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return nil, err
		}
		return &ast.ReturnStatusStmt{Status: first, Value: value, P: pos}, nil
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Value: first, P: pos}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBlk *ast.Block
	if p.at(lexer.KwElse) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.at(lexer.KwIf) {
			// `else if` desugars to a nested IfElse wrapped in a one-statement block.
			elsePos := p.cur.Pos
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			elseBlk = &ast.Block{Stmts: []ast.Stmt{nested}, P: elsePos}
		} else {
			elseBlk, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return &ast.IfElseStmt{Cond: cond, Then: then, Else: elseBlk, P: pos}, nil
}

func (p *Parser) parseSwitch() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	sw := &ast.SwitchStmt{Cond: cond, P: pos}
	for !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		switch p.cur.Kind {
		case lexer.KwCase:
			if err := p.advance(); err != nil {
				return nil, err
			}
			caseExpr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.Colon, "':'"); err != nil {
				return nil, err
			}
			blk, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, ast.SwitchCase{Expr: caseExpr, Block: blk})
		case lexer.KwDefault:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.Colon, "':'"); err != nil {
				return nil, err
			}
			blk, err := p.parseCaseBody()
			if err != nil {
				return nil, err
			}
			sw.Default = blk
		default:
			return nil, p.errf(p.cur.Pos, "expected 'case' or 'default', found %q", p.cur.Lit)
		}
	}
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return sw, nil
}

// parseCaseBody parses statements until the next `case`/`default`/`}`.
func (p *Parser) parseCaseBody() (*ast.Block, error) {
	pos := p.cur.Pos
	b := &ast.Block{P: pos}
	for !p.at(lexer.KwCase) && !p.at(lexer.KwDefault) && !p.at(lexer.RBrace) && !p.at(lexer.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var init ast.Stmt
	if !p.at(lexer.Semi) {
		var err error
		init, err = p.parseForInit()
		if err != nil {
			return nil, err
		}
	} else if err := p.advance(); err != nil {
		return nil, err
	}

	var cond ast.Expr
	condPos := p.cur.Pos
	if !p.at(lexer.Semi) {
		var err error
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	} else {
		cond = &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitBool, Bool: true}, P: condPos}
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}

	var inc ast.Expr
	if !p.at(lexer.RParen) {
		var err error
		inc, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.bodyOrSingleStmt()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Init: init, Cond: cond, Increment: inc, Body: body, P: pos}, nil
}

// parseForInit parses the `for(...)` init clause, which is a `let` stmt
// (consumes its own ';') or an expression statement (we consume the ';' here).
func (p *Parser) parseForInit() (ast.Stmt, error) {
	if p.at(lexer.KwLet) {
		return p.parseLet()
	}
	pos := p.cur.Pos
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: e, P: pos}, nil
}

func (p *Parser) parseFuncDecl() (ast.Stmt, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.Ident, "function name")
	if err != nil {
		return nil, err
	}
	if isBuiltinName(nameTok.Lit) {
		return nil, p.errf(nameTok.Pos, "reserved function name '%s'", nameTok.Lit)
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.at(lexer.RParen) {
		pname, err := p.expect(lexer.Ident, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Colon, "':'"); err != nil {
			return nil, err
		}
		pty, err := p.parseAssignmentType()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pname.Lit, Type: pty})
		if p.at(lexer.Comma) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			break
		}
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon, "':'"); err != nil {
		return nil, err
	}
	retTy, err := p.parseAssignmentType()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclStmt{Name: nameTok.Lit, Params: params, ReturnType: retTy, Body: body, P: pos}, nil
}

// --- type parsing -----------------------------------------------------

// parseType is the general form: accepts Any and Undefined.
func (p *Parser) parseType() (types.VarType, error) {
	switch p.cur.Kind {
	case lexer.KwBool:
		return p.consumeType(types.Bool)
	case lexer.KwNum:
		return p.consumeType(types.Number)
	case lexer.KwStr:
		return p.consumeType(types.String)
	case lexer.KwObj:
		return p.consumeType(types.Object)
	case lexer.KwAny:
		return p.consumeType(types.Any)
	case lexer.KwUndefined:
		return p.consumeType(types.Undefined)
	case lexer.KwVec:
		return p.parseVecTypeOuter(p.parseType)
	default:
		return nil, p.errf(p.cur.Pos, "expected a type, found %q", p.cur.Lit)
	}
}

// parseAssignmentType is used for `let`/parameter/return-type positions:
// forbids bare `any` outside `vec<...>` and forbids `Undefined`.
func (p *Parser) parseAssignmentType() (types.VarType, error) {
	switch p.cur.Kind {
	case lexer.KwBool:
		return p.consumeType(types.Bool)
	case lexer.KwNum:
		return p.consumeType(types.Number)
	case lexer.KwStr:
		return p.consumeType(types.String)
	case lexer.KwObj:
		return p.consumeType(types.Object)
	case lexer.KwAny:
		return nil, p.errf(p.cur.Pos, "'any' is not allowed here outside vec<...>")
	case lexer.KwUndefined:
		return nil, p.errf(p.cur.Pos, "'Undefined' is not allowed as a declared type")
	case lexer.KwVec:
		return p.parseVecTypeOuter(p.parseVecType)
	default:
		return nil, p.errf(p.cur.Pos, "expected a type, found %q", p.cur.Lit)
	}
}

// parseVecType is the `vec<...>` inner-type parser: forbids Undefined but
// (unlike parseAssignmentType) allows `any` since `vec<any>` is the
// universal-source/destination array type.
func (p *Parser) parseVecType() (types.VarType, error) {
	switch p.cur.Kind {
	case lexer.KwBool:
		return p.consumeType(types.Bool)
	case lexer.KwNum:
		return p.consumeType(types.Number)
	case lexer.KwStr:
		return p.consumeType(types.String)
	case lexer.KwObj:
		return p.consumeType(types.Object)
	case lexer.KwAny:
		return p.consumeType(types.Any)
	case lexer.KwUndefined:
		return nil, p.errf(p.cur.Pos, "'Undefined' is not allowed inside vec<...>")
	case lexer.KwVec:
		return p.parseVecTypeOuter(p.parseVecType)
	default:
		return nil, p.errf(p.cur.Pos, "expected a type, found %q", p.cur.Lit)
	}
}

func (p *Parser) consumeType(t types.VarType) (types.VarType, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Parser) parseVecTypeOuter(inner func() (types.VarType, error)) (types.VarType, error) {
	if err := p.advance(); err != nil { // consume 'vec'
		return nil, err
	}
	if _, err := p.expect(lexer.Lt, "'<'"); err != nil {
		return nil, err
	}
	elem, err := inner()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Gt, "'>'"); err != nil {
		return nil, err
	}
	return types.Array(elem), nil
}
