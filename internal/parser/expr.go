package parser

import (
	"strconv"

	"github.com/phillarmonic/mockscript/internal/ast"
	"github.com/phillarmonic/mockscript/internal/lexer"
)

// parseExpr is the entry point for expression parsing: assignment has the
// lowest precedence and is right-associative, so it sits outermost.
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.Assign) {
		return left, nil
	}
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	switch lv := left.(type) {
	case *ast.IdentExpr:
		return &ast.AssignVarExpr{Name: lv.Name, Value: right, P: pos}, nil
	case *ast.MemberExpr:
		if ast.IsRequestDerived(lv.Object) {
			return nil, p.errf(pos, "Cannot mutate request fields")
		}
		return &ast.AssignMemberExpr{Object: lv.Object, Property: lv.Property, Value: right, P: pos}, nil
	case *ast.IndexExpr:
		if ast.IsRequestDerived(lv.Object) {
			return nil, p.errf(pos, "Cannot mutate request fields")
		}
		return &ast.AssignIndexExpr{Object: lv.Object, Index: lv.Index, Value: right, P: pos}, nil
	case *ast.RequestFieldExpr:
		return nil, p.errf(pos, "Cannot mutate request fields")
	default:
		return nil, p.errf(pos, "invalid assignment target")
	}
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.OrOr) {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: ast.Or, Left: left, Right: right, P: pos}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.AndAnd) {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: ast.And, Left: left, Right: right, P: pos}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.EqEq) || p.at(lexer.NotEq) {
		op := ast.Eq
		if p.at(lexer.NotEq) {
			op = ast.Ne
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, P: pos}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Lt) || p.at(lexer.Le) || p.at(lexer.Gt) || p.at(lexer.Ge) {
		var op ast.BinOp
		switch p.cur.Kind {
		case lexer.Lt:
			op = ast.Lt
		case lexer.Le:
			op = ast.Le
		case lexer.Gt:
			op = ast.Gt
		default:
			op = ast.Ge
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, P: pos}
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		op := ast.Add
		if p.at(lexer.Minus) {
			op = ast.Sub
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, P: pos}
	}
	return left, nil
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Star) || p.at(lexer.Slash) || p.at(lexer.Percent) {
		var op ast.BinOp
		switch p.cur.Kind {
		case lexer.Star:
			op = ast.Mul
		case lexer.Slash:
			op = ast.Div
		default:
			op = ast.Rem
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, P: pos}
	}
	return left, nil
}

// parseUnary desugars unary minus to `0 - operand`; there is no dedicated
// unary AST node.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.at(lexer.Minus) {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitNumber, Num: 0}, P: pos}
		return &ast.BinaryExpr{Op: ast.Sub, Left: zero, Right: operand, P: pos}, nil
	}
	return p.parseCallChain()
}

// parseCallChain handles postfix `.prop`, `[index]` and `(args)` chains.
func (p *Parser) parseCallChain() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Kind {
		case lexer.Dot:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			nameTok, err := p.parseNameToken("a property name")
			if err != nil {
				return nil, err
			}
			x = &ast.MemberExpr{Object: x, Property: nameTok.Lit, P: pos}
		case lexer.LBracket:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
				return nil, err
			}
			x = &ast.IndexExpr{Object: x, Index: idx, P: pos}
		case lexer.LParen:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RParen, "')'"); err != nil {
				return nil, err
			}
			x = &ast.CallExpr{Callee: x, Args: args, P: pos}
		default:
			return x, nil
		}
	}
}

func (p *Parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	for !p.at(lexer.RParen) {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.at(lexer.Comma) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return args, nil
}

// parseNameToken accepts an identifier or any reserved word used as a bare
// name (member/object-literal keys are not reserved from the language's
// regular identifiers, since the lexer keywords such as `body`/`query` may
// legitimately also be field names).
func (p *Parser) parseNameToken(what string) (lexer.Token, error) {
	switch p.cur.Kind {
	case lexer.Ident,
		lexer.KwBool, lexer.KwNum, lexer.KwStr, lexer.KwVec, lexer.KwObj, lexer.KwAny, lexer.KwUndefined,
		lexer.KwLet, lexer.KwReturn, lexer.KwIf, lexer.KwElse, lexer.KwFor, lexer.KwSwitch, lexer.KwCase, lexer.KwDefault,
		lexer.KwFunc, lexer.KwBreak, lexer.KwContinue, lexer.KwReq, lexer.KwBody, lexer.KwParams, lexer.KwQuery, lexer.KwHeaders,
		lexer.True, lexer.False, lexer.UndefinedLit:
		tok := p.cur
		if err := p.advance(); err != nil {
			return lexer.Token{}, err
		}
		return tok, nil
	default:
		return lexer.Token{}, p.errf(p.cur.Pos, "expected %s, found %q", what, p.cur.Lit)
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur
	switch tok.Kind {
	case lexer.Number:
		if err := p.advance(); err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(tok.Lit, 64)
		if err != nil {
			return nil, p.errf(tok.Pos, "invalid number literal %q", tok.Lit)
		}
		return &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitNumber, Num: f}, P: tok.Pos}, nil
	case lexer.String:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitString, Str: tok.Lit}, P: tok.Pos}, nil
	case lexer.True, lexer.False:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitBool, Bool: tok.Kind == lexer.True}, P: tok.Pos}, nil
	case lexer.UndefinedLit:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.LiteralExpr{Value: ast.Literal{Kind: ast.LitUndefined}, P: tok.Pos}, nil
	case lexer.Template:
		if err := p.advance(); err != nil {
			return nil, err
		}
		parts, err := p.parseTemplateParts(tok.Lit, tok.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.TemplateExpr{Parts: parts, P: tok.Pos}, nil
	case lexer.KwReq:
		return p.parseRequestField()
	case lexer.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case lexer.LBracket:
		return p.parseArrayLiteral()
	case lexer.LBrace:
		return p.parseObjectLiteral()
	case lexer.KwBool, lexer.KwNum, lexer.KwStr, lexer.KwObj, lexer.KwAny, lexer.KwUndefined, lexer.KwVec:
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &ast.TypeLiteralExpr{Value: ast.TypeLiteral{Type: ty}, P: tok.Pos}, nil
	case lexer.Ident:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.IdentExpr{Name: tok.Lit, P: tok.Pos}, nil
	default:
		return nil, p.errf(tok.Pos, "unexpected token %q", tok.Lit)
	}
}

func (p *Parser) parseRequestField() (ast.Expr, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil { // consume 'req'
		return nil, err
	}
	if _, err := p.expect(lexer.Dot, "'.'"); err != nil {
		return nil, err
	}
	var field ast.RequestFieldKind
	switch p.cur.Kind {
	case lexer.KwBody:
		field = ast.BodyField
	case lexer.KwParams:
		field = ast.ParamField
	case lexer.KwQuery:
		field = ast.QueryField
	case lexer.KwHeaders:
		field = ast.HeadersField
	default:
		return nil, p.errf(p.cur.Pos, "expected one of body/params/query/headers after 'req.'")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.RequestFieldExpr{Field: field, P: pos}, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	var elements []ast.Expr
	for !p.at(lexer.RBracket) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
		if p.at(lexer.Comma) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.ArrayExpr{Elements: elements, P: pos}, nil
}

func (p *Parser) parseObjectLiteral() (ast.Expr, error) {
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	obj := &ast.ObjectLiteralExpr{P: pos}
	for !p.at(lexer.RBrace) {
		var key string
		if p.at(lexer.String) {
			key = p.cur.Lit
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else {
			keyTok, err := p.parseNameToken("an object key")
			if err != nil {
				return nil, err
			}
			key = keyTok.Lit
		}
		if _, err := p.expect(lexer.Colon, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		obj.Keys = append(obj.Keys, key)
		obj.Values = append(obj.Values, val)
		if p.at(lexer.Comma) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return obj, nil
}

// parseTemplateParts splits a template's raw payload into literal-text and
// `${expr}` segments, recursively invoking the parser over each expression
// span. Brace depth is tracked so an object literal inside an interpolation
// does not prematurely close the span.
func (p *Parser) parseTemplateParts(raw string, basePos ast.Position) ([]ast.TemplatePart, error) {
	var parts []ast.TemplatePart
	i := 0
	textStart := 0
	for i < len(raw) {
		if raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			if i > textStart {
				parts = append(parts, ast.TemplatePart{Text: raw[textStart:i]})
			}
			depth := 1
			j := i + 2
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						goto found
					}
				}
				j++
			}
			return nil, p.errf(basePos, "unclosed '${' in template")
		found:
			exprSrc := raw[i+2 : j]
			sub := &Parser{lex: lexer.New(exprSrc), filename: p.filename, source: p.source}
			if err := sub.advance(); err != nil {
				return nil, err
			}
			e, err := sub.parseExpr()
			if err != nil {
				return nil, err
			}
			if !sub.at(lexer.EOF) {
				return nil, p.errf(basePos, "unexpected trailing tokens in template expression")
			}
			parts = append(parts, ast.TemplatePart{Expr: e})
			i = j + 1
			textStart = i
		} else {
			i++
		}
	}
	if textStart < len(raw) {
		parts = append(parts, ast.TemplatePart{Text: raw[textStart:]})
	}
	return parts, nil
}
