// Package parser implements a Pratt-style operator-precedence parser
// producing the surface AST from a token stream (spec §4.2), grounded on
// the teacher's hand-rolled prefix/infix parse-function table and its
// panic-mode `synchronize()` recovery.
package parser

import (
	"strings"

	"github.com/ruchy-lang/ruchy/internal/compiler/ast"
	"github.com/ruchy-lang/ruchy/internal/compiler/errors"
	"github.com/ruchy-lang/ruchy/internal/compiler/lexer"
	"github.com/ruchy-lang/ruchy/internal/compiler/token"
)

// Precedence levels, lowest to highest, matching the table in spec §4.2.
const (
	LOWEST int = iota
	ASSIGN     // = += -= *= /= %= (right-assoc)
	PIPELINE   // |>
	RANGEOP    // .. ..=
	NULLISH    // ??
	LOGOR      // ||
	LOGAND     // &&
	EQUALITY   // == !=
	COMPARE    // < <= > >=
	BITOR      // |
	BITXOR     // ^
	BITAND     // &
	SHIFT      // << >>
	SUM        // + -
	PRODUCT    // * / %
	POWER      // ** (right-assoc)
	UNARY      // prefix ! - ~ & ++ --
	POSTFIX    // call/index/member, postfix ? ++ --
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:            ASSIGN,
	token.PLUS_ASSIGN:       ASSIGN,
	token.MINUS_ASSIGN:      ASSIGN,
	token.STAR_ASSIGN:       ASSIGN,
	token.SLASH_ASSIGN:      ASSIGN,
	token.PERCENT_ASSIGN:    ASSIGN,
	token.PIPE_ARROW:        PIPELINE,
	token.DOTDOT:            RANGEOP,
	token.DOTDOTEQ:          RANGEOP,
	token.QUESTION_QUESTION: NULLISH,
	token.OR:                LOGOR,
	token.AND:               LOGAND,
	token.EQ:                EQUALITY,
	token.NOT_EQ:            EQUALITY,
	token.LT:                COMPARE,
	token.LT_EQ:             COMPARE,
	token.GT:                COMPARE,
	token.GT_EQ:             COMPARE,
	token.PIPE:              BITOR,
	token.CARET:             BITXOR,
	token.AMP:               BITAND,
	token.SHL:               SHIFT,
	token.SHR:               SHIFT,
	token.PLUS:              SUM,
	token.MINUS:             SUM,
	token.ASTERISK:          PRODUCT,
	token.SLASH:             PRODUCT,
	token.PERCENT:           PRODUCT,
	token.POW:               POWER,
	token.LPAREN:            POSTFIX,
	token.LBRACKET:          POSTFIX,
	token.DOT:               POSTFIX,
	token.QUESTION:          POSTFIX,
	token.INCR:              POSTFIX,
	token.DECR:              POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
	diags     *errors.List
	file      string
	inTrait   bool // the next parseFuncDecl may be a bodiless trait signature

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer, file string) *Parser {
	p := &Parser{l: l, diags: errors.NewList(), file: file}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{}
	p.infixParseFns = map[token.TokenType]infixParseFn{}

	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.FSTRING, p.parseFStringLiteral)
	p.registerPrefix(token.CHAR, p.parseCharLiteral)
	p.registerPrefix(token.BYTE, p.parseByteLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolLiteral)
	p.registerPrefix(token.FALSE, p.parseBoolLiteral)
	p.registerPrefix(token.NIL, p.parseNilLiteral)
	p.registerPrefix(token.BANG, p.parseUnaryExpression)
	p.registerPrefix(token.MINUS, p.parseUnaryExpression)
	p.registerPrefix(token.TILDE, p.parseUnaryExpression)
	p.registerPrefix(token.AMP, p.parseUnaryExpression)
	p.registerPrefix(token.INCR, p.parseUnaryExpression)
	p.registerPrefix(token.DECR, p.parseUnaryExpression)
	// ASTERISK already serves as the infix multiplication operator;
	// registering it as a prefix too (same pattern as MINUS) lets `*expr`
	// parse as a deref unary expression, which the interpreter then raises
	// a runtime error for (spec §9 "parsed but produces a runtime error").
	p.registerPrefix(token.ASTERISK, p.parseUnaryExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedOrTuple)
	p.registerPrefix(token.LBRACKET, p.parseListLiteral)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.MATCH, p.parseMatchExpression)
	p.registerPrefix(token.SPAWN, p.parseSpawnExpression)
	p.registerPrefix(token.AWAIT, p.parseAwaitExpression)
	p.registerPrefix(token.FUN, p.parseLambdaExpression)
	p.registerPrefix(token.FN, p.parseLambdaExpression)
	p.registerPrefix(token.PIPE, p.parsePipeLambda)

	p.registerInfix(token.PLUS, p.parseBinaryExpression)
	p.registerInfix(token.MINUS, p.parseBinaryExpression)
	p.registerInfix(token.ASTERISK, p.parseBinaryExpression)
	p.registerInfix(token.SLASH, p.parseBinaryExpression)
	p.registerInfix(token.PERCENT, p.parseBinaryExpression)
	p.registerInfix(token.POW, p.parseBinaryExpressionRightAssoc)
	p.registerInfix(token.EQ, p.parseBinaryExpression)
	p.registerInfix(token.NOT_EQ, p.parseBinaryExpression)
	p.registerInfix(token.LT, p.parseBinaryExpression)
	p.registerInfix(token.LT_EQ, p.parseBinaryExpression)
	p.registerInfix(token.GT, p.parseBinaryExpression)
	p.registerInfix(token.GT_EQ, p.parseBinaryExpression)
	p.registerInfix(token.AND, p.parseBinaryExpression)
	p.registerInfix(token.OR, p.parseBinaryExpression)
	p.registerInfix(token.AMP, p.parseBinaryExpression)
	p.registerInfix(token.PIPE, p.parseBinaryExpression)
	p.registerInfix(token.CARET, p.parseBinaryExpression)
	p.registerInfix(token.SHL, p.parseBinaryExpression)
	p.registerInfix(token.SHR, p.parseBinaryExpression)
	p.registerInfix(token.QUESTION_QUESTION, p.parseBinaryExpression)
	p.registerInfix(token.DOTDOT, p.parseRangeExpression)
	p.registerInfix(token.DOTDOTEQ, p.parseRangeExpression)
	p.registerInfix(token.PIPE_ARROW, p.parsePipelineExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.DOT, p.parseMemberExpression)
	p.registerInfix(token.QUESTION, p.parseTryExpression)
	p.registerInfix(token.INCR, p.parsePostfixExpression)
	p.registerInfix(token.DECR, p.parsePostfixExpression)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t token.TokenType, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.TokenType, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) Diagnostics() *errors.List { return p.diags }

func (p *Parser) addError(kind, format string, args ...interface{}) {
	p.diags.Addf("parser", kind, p.curToken.Pos.Line, p.curToken.Pos.Column, format, args...)
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError("UnexpectedToken", "expected %s, got %s (%q)", t, p.peekToken.Type, p.peekToken.Literal)
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func posSpan(pos token.Position, litLen int) ast.Span {
	return ast.Span{Start: pos.Offset, End: pos.Offset + litLen, Line: pos.Line}
}

// synchronize implements panic-mode error recovery (spec §4.2): skip tokens
// until a statement boundary so parsing can continue to EOF regardless of
// errors, grounded on the teacher's parser/parser.go synchronize().
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			return
		}
		switch p.peekToken.Type {
		case token.LET, token.CONST, token.FUN, token.FN, token.IF, token.FOR,
			token.WHILE, token.LOOP, token.RETURN, token.STRUCT, token.ENUM,
			token.TRAIT, token.IMPL, token.IMPORT, token.TYPE, token.ACTOR:
			p.nextToken()
			return
		}
		if p.curTokenIs(token.RBRACE) {
			p.nextToken()
			return
		}
		p.nextToken()
	}
}

// Parse is the top-level entry point: tokens (via the lexer) -> surface AST
// + diagnostics (spec §4.2 Contracts: "Never panics on any token sequence").
func Parse(source, file string) (*ast.File, *errors.List) {
	l := lexer.New(source)
	p := New(l, file)
	f := &ast.File{}

	for !p.curTokenIs(token.EOF) {
		before := p.curToken
		stmt := p.parseTopLevelDecl()
		if stmt != nil {
			if imp, ok := stmt.(*ast.ImportDecl); ok {
				f.Imports = append(f.Imports, imp)
			}
			f.Decls = append(f.Decls, stmt)
		}
		switch stmt.(type) {
		case *ast.FuncDecl, *ast.StructDecl, *ast.EnumDecl, *ast.TraitDecl, *ast.ImplDecl, *ast.ActorDecl, *ast.BlockStmt:
			// brace-delimited forms stop on their closing `}`; step past it
			if p.curTokenIs(token.RBRACE) {
				p.nextToken()
			}
		}
		if p.curToken == before {
			// guarantee forward progress on malformed input
			p.nextToken()
		}
	}

	for _, le := range l.Errors {
		p.diags.Addf("lexer", "LexError:"+le.Kind, le.Pos.Line, le.Pos.Column, "%s", le.Kind)
	}

	return f, p.diags
}

func (p *Parser) parseTopLevelDecl() ast.Statement {
	switch p.curToken.Type {
	case token.IMPORT:
		return p.parseImportDecl()
	case token.LET:
		return p.parseLetStmt()
	case token.CONST:
		return p.parseLetStmt()
	case token.FUN, token.FN:
		return p.parseFuncDecl(false)
	case token.ASYNC:
		p.nextToken()
		return p.parseFuncDecl(true)
	case token.STRUCT:
		return p.parseStructDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.TRAIT:
		return p.parseTraitDecl()
	case token.IMPL:
		return p.parseImplDecl()
	case token.TYPE:
		return p.parseTypeAliasDecl()
	case token.ACTOR:
		return p.parseActorDecl()
	case token.SEMICOLON:
		p.nextToken()
		return nil
	default:
		return p.parseStatement()
	}
}

// ---------- Declarations ----------

func (p *Parser) parseImportDecl() ast.Statement {
	tok := p.curToken
	d := &ast.ImportDecl{Tok: tok}

	switch {
	case p.peekTokenIs(token.ASTERISK):
		p.nextToken()
		d.Glob = true
		if !p.expectPeek(token.FROM) {
			p.synchronize()
			return d
		}
	case p.peekTokenIs(token.LBRACE):
		p.nextToken() // {
		for !p.peekTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
			if !p.expectPeek(token.IDENT) {
				break
			}
			d.Members = append(d.Members, p.curToken.Literal)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
		p.expectPeek(token.RBRACE)
		if !p.expectPeek(token.FROM) {
			p.synchronize()
			return d
		}
	case p.peekTokenIs(token.IDENT):
		p.nextToken()
		d.Default = p.curToken.Literal
		if !p.expectPeek(token.FROM) {
			p.synchronize()
			return d
		}
	default:
		p.addError("UnexpectedToken", "expected import target after 'import'")
		p.synchronize()
		return d
	}

	if !p.expectPeek(token.STRING) {
		p.synchronize()
		return d
	}
	d.Path = p.curToken.Literal

	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if p.expectPeek(token.IDENT) {
			d.Alias = p.curToken.Literal
		}
	}

	d.SpanVal = posSpan(tok.Pos, 0)
	return d
}

func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	tok := p.curToken
	switch tok.Type {
	case token.LBRACKET:
		p.nextToken()
		elem := p.parseTypeExpr()
		p.expectPeek(token.RBRACKET)
		return &ast.TypeExpr{Kind: "array", Params: []*ast.TypeExpr{elem}, SpanVal: posSpan(tok.Pos, 0)}
	case token.LPAREN:
		p.nextToken()
		var elems []*ast.TypeExpr
		for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
			elems = append(elems, p.parseTypeExpr())
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
			}
			p.nextToken()
		}
		if p.peekTokenIs(token.ARROW) {
			p.nextToken()
			p.nextToken()
			result := p.parseTypeExpr()
			return &ast.TypeExpr{Kind: "function", Params: elems, Result: result}
		}
		return &ast.TypeExpr{Kind: "tuple", Params: elems}
	case token.AMP:
		p.nextToken()
		mut := false
		if p.curTokenIs(token.MUT) {
			mut = true
			p.nextToken()
		}
		elem := p.parseTypeExpr()
		return &ast.TypeExpr{Kind: "reference", Mutable: mut, Params: []*ast.TypeExpr{elem}}
	case token.IDENT:
		name := tok.Literal
		te := &ast.TypeExpr{Kind: "named", Name: name, SpanVal: posSpan(tok.Pos, len(name))}
		switch name {
		case "Option":
			if p.peekTokenIs(token.LT) {
				p.nextToken()
				p.nextToken()
				inner := p.parseTypeExpr()
				p.expectPeek(token.GT)
				return &ast.TypeExpr{Kind: "option", Result: inner}
			}
		case "Result":
			if p.peekTokenIs(token.LT) {
				p.nextToken()
				p.nextToken()
				ok := p.parseTypeExpr()
				p.expectPeek(token.COMMA)
				p.nextToken()
				errT := p.parseTypeExpr()
				p.expectPeek(token.GT)
				return &ast.TypeExpr{Kind: "result", Result: ok, ErrType: errT}
			}
		}
		if p.peekTokenIs(token.LT) {
			p.nextToken()
			var params []*ast.TypeExpr
			for {
				p.nextToken()
				params = append(params, p.parseTypeExpr())
				if p.peekTokenIs(token.COMMA) {
					p.nextToken()
					continue
				}
				break
			}
			p.expectPeek(token.GT)
			return &ast.TypeExpr{Kind: "generic", Name: name, Params: params}
		}
		return te
	default:
		p.addError("InvalidTypeExpression", "expected type expression, got %s", tok.Type)
		return &ast.TypeExpr{Kind: "named", Name: "unknown"}
	}
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	if !p.expectPeek(token.LPAREN) {
		return params
	}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	for {
		name := p.curToken.Literal
		param := &ast.Param{Name: name}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			param.Type = p.parseTypeExpr()
		}
		params = append(params, param)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.expectPeek(token.RPAREN)
	return params
}

func (p *Parser) parseFuncDecl(isAsync bool) ast.Statement {
	tok := p.curToken
	d := &ast.FuncDecl{Tok: tok, IsAsync: isAsync}
	sigOnly := p.inTrait
	p.inTrait = false
	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return d
	}
	d.Name = p.curToken.Literal

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		for !p.peekTokenIs(token.GT) && !p.curTokenIs(token.EOF) {
			p.nextToken()
			d.TypeParams = append(d.TypeParams, p.curToken.Literal)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
		p.expectPeek(token.GT)
	}

	d.Params = p.parseParams()

	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		d.ReturnType = p.parseTypeExpr()
	}

	if sigOnly && !p.peekTokenIs(token.LBRACE) {
		d.SpanVal = posSpan(tok.Pos, 0)
		return d
	}
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return d
	}
	d.Body = p.parseBlockStatement()
	d.SpanVal = posSpan(tok.Pos, 0)
	return d
}

func (p *Parser) parseStructDecl() ast.Statement {
	tok := p.curToken
	d := &ast.StructDecl{Tok: tok}
	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return d
	}
	d.Name = p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return d
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		prevPos := p.curToken.Pos
		fd := &ast.FieldDecl{Name: p.curToken.Literal}
		if p.expectPeek(token.COLON) {
			p.nextToken()
			fd.Type = p.parseTypeExpr()
		}
		d.Fields = append(d.Fields, fd)
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
		if p.curToken.Pos == prevPos {
			p.nextToken()
		}
	}
	d.SpanVal = posSpan(tok.Pos, 0)
	return d
}

func (p *Parser) parseEnumDecl() ast.Statement {
	tok := p.curToken
	d := &ast.EnumDecl{Tok: tok}
	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return d
	}
	d.Name = p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return d
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		v := &ast.EnumVariantDecl{Name: p.curToken.Literal}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
				v.Payload = append(v.Payload, p.parseTypeExpr())
				p.nextToken()
				if p.curTokenIs(token.COMMA) {
					p.nextToken()
				}
			}
		}
		d.Variants = append(d.Variants, v)
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	d.SpanVal = posSpan(tok.Pos, 0)
	return d
}

func (p *Parser) parseTraitDecl() ast.Statement {
	tok := p.curToken
	d := &ast.TraitDecl{Tok: tok}
	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return d
	}
	d.Name = p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return d
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.FUN) || p.curTokenIs(token.FN) {
			p.inTrait = true
			fn := p.parseFuncDecl(false).(*ast.FuncDecl)
			d.Methods = append(d.Methods, fn)
		}
		p.nextToken()
	}
	d.SpanVal = posSpan(tok.Pos, 0)
	return d
}

func (p *Parser) parseImplDecl() ast.Statement {
	tok := p.curToken
	d := &ast.ImplDecl{Tok: tok}
	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return d
	}
	first := p.curToken.Literal
	if p.peekTokenIs(token.FOR) {
		p.nextToken() // for
		p.expectPeek(token.IDENT)
		d.TraitName = first
		d.TargetType = p.curToken.Literal
	} else {
		d.TargetType = first
	}
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return d
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.FUN) || p.curTokenIs(token.FN) {
			fn := p.parseFuncDecl(false).(*ast.FuncDecl)
			d.Methods = append(d.Methods, fn)
		}
		p.nextToken()
	}
	d.SpanVal = posSpan(tok.Pos, 0)
	return d
}

func (p *Parser) parseTypeAliasDecl() ast.Statement {
	tok := p.curToken
	d := &ast.TypeAliasDecl{Tok: tok}
	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return d
	}
	d.Name = p.curToken.Literal
	if !p.expectPeek(token.ASSIGN) {
		p.synchronize()
		return d
	}
	p.nextToken()
	d.Target = p.parseTypeExpr()
	d.SpanVal = posSpan(tok.Pos, 0)
	return d
}

func (p *Parser) parseActorDecl() ast.Statement {
	tok := p.curToken
	d := &ast.ActorDecl{Tok: tok}
	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return d
	}
	d.Name = p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return d
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.FUN, token.FN:
			d.Handlers = append(d.Handlers, p.parseFuncDecl(false).(*ast.FuncDecl))
		case token.IDENT:
			fd := &ast.FieldDecl{Name: p.curToken.Literal}
			if p.expectPeek(token.COLON) {
				p.nextToken()
				fd.Type = p.parseTypeExpr()
			}
			d.Fields = append(d.Fields, fd)
		}
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	d.SpanVal = posSpan(tok.Pos, 0)
	return d
}

// ---------- Statements ----------

func (p *Parser) parseBlockStatement() *ast.BlockStmt {
	tok := p.curToken // LBRACE
	blk := &ast.BlockStmt{Tok: tok}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		before := p.curToken
		stmt := p.parseStatement()
		if stmt != nil {
			blk.Stmts = append(blk.Stmts, stmt)
		}
		switch stmt.(type) {
		case *ast.FuncDecl, *ast.StructDecl, *ast.EnumDecl, *ast.BlockStmt:
			if p.curTokenIs(token.RBRACE) {
				p.nextToken()
			}
		}
		if p.curToken == before {
			p.nextToken()
		}
	}
	blk.SpanVal = posSpan(tok.Pos, 0)
	return blk
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStmt()
	case token.CONST:
		return p.parseLetStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		s := &ast.BreakStmt{Tok: p.curToken, SpanVal: posSpan(p.curToken.Pos, 0)}
		p.nextToken()
		return s
	case token.CONTINUE:
		s := &ast.ContinueStmt{Tok: p.curToken, SpanVal: posSpan(p.curToken.Pos, 0)}
		p.nextToken()
		return s
	case token.THROW:
		tok := p.curToken
		p.nextToken()
		val := p.parseExpression(LOWEST)
		s := &ast.ThrowStmt{Tok: tok, Value: val, SpanVal: posSpan(tok.Pos, 0)}
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		p.nextToken()
		return s
	case token.IF:
		return p.parseIfStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.LOOP:
		return p.parseLoopStmt()
	case token.TRY:
		return p.parseTryCatchStmt()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.FUN, token.FN:
		return p.parseFuncDecl(false)
	case token.STRUCT:
		return p.parseStructDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.SEMICOLON:
		p.nextToken()
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStmt() ast.Statement {
	tok := p.curToken
	s := &ast.LetStmt{Tok: tok}
	if p.peekTokenIs(token.MUT) {
		p.nextToken()
		s.Mutable = true
	}
	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return s
	}
	s.Name = p.curToken.Literal

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		s.Type = p.parseTypeExpr()
	}
	if !p.expectPeek(token.ASSIGN) {
		p.synchronize()
		return s
	}
	p.nextToken()
	s.Value = p.parseExpression(LOWEST)
	s.SpanVal = posSpan(tok.Pos, 0)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	p.nextToken()
	return s
}

func (p *Parser) parseReturnStmt() ast.Statement {
	tok := p.curToken
	s := &ast.ReturnStmt{Tok: tok}
	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		s.SpanVal = posSpan(tok.Pos, 0)
		return s
	}
	p.nextToken()
	s.Value = p.parseExpression(LOWEST)
	s.SpanVal = posSpan(tok.Pos, 0)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	p.nextToken()
	return s
}

func (p *Parser) parseIfStmt() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return &ast.IfStmt{Tok: tok, Cond: cond}
	}
	then := p.parseBlockStatement()
	s := &ast.IfStmt{Tok: tok, Cond: cond, Then: then, SpanVal: posSpan(tok.Pos, 0)}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			s.ElseIf = p.parseIfStmt().(*ast.IfStmt)
			return s
		}
		if p.expectPeek(token.LBRACE) {
			s.Else = p.parseBlockStatement()
		}
	}
	p.nextToken()
	return s
}

func (p *Parser) parseForStmt() ast.Statement {
	tok := p.curToken
	s := &ast.ForStmt{Tok: tok}
	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return s
	}
	s.VarName = p.curToken.Literal
	if !p.expectPeek(token.IN) {
		p.synchronize()
		return s
	}
	p.nextToken()
	s.Iterable = p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return s
	}
	s.Body = p.parseBlockStatement()
	s.SpanVal = posSpan(tok.Pos, 0)
	p.nextToken()
	return s
}

func (p *Parser) parseWhileStmt() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return &ast.WhileStmt{Tok: tok, Cond: cond}
	}
	body := p.parseBlockStatement()
	s := &ast.WhileStmt{Tok: tok, Cond: cond, Body: body, SpanVal: posSpan(tok.Pos, 0)}
	p.nextToken()
	return s
}

func (p *Parser) parseLoopStmt() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return &ast.LoopStmt{Tok: tok}
	}
	body := p.parseBlockStatement()
	s := &ast.LoopStmt{Tok: tok, Body: body, SpanVal: posSpan(tok.Pos, 0)}
	p.nextToken()
	return s
}

func (p *Parser) parseTryCatchStmt() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LBRACE) {
		p.synchronize()
		return &ast.TryCatchStmt{Tok: tok}
	}
	body := p.parseBlockStatement()
	s := &ast.TryCatchStmt{Tok: tok, Body: body}
	for p.peekTokenIs(token.CATCH) {
		p.nextToken()
		cc := &ast.CatchClause{}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			cc.Pattern = p.parsePattern()
			p.expectPeek(token.RPAREN)
		}
		if p.expectPeek(token.LBRACE) {
			cc.Body = p.parseBlockStatement()
		}
		s.Catches = append(s.Catches, cc)
	}
	if p.peekTokenIs(token.FINALLY) {
		p.nextToken()
		if p.expectPeek(token.LBRACE) {
			s.Finally = p.parseBlockStatement()
		}
	}
	s.SpanVal = posSpan(tok.Pos, 0)
	p.nextToken()
	return s
}

// parseExpressionStatement parses an expression, promoting it to an
// AssignStmt if followed by an assignment operator (grounded on the
// teacher's parseExpressionStatement "detects trailing = to promote to
// AssignStmt" idiom).
func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)

	switch p.peekToken.Type {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN:
		op := p.peekToken.Type
		p.nextToken()
		p.nextToken()
		val := p.parseExpression(LOWEST)
		s := &ast.AssignStmt{Tok: tok, Target: expr, Op: op, Value: val, SpanVal: posSpan(tok.Pos, 0)}
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		p.nextToken()
		return s
	}

	s := &ast.ExprStmt{Tok: tok, X: expr, SpanVal: posSpan(tok.Pos, 0)}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	p.nextToken()
	return s
}

// ---------- Expressions (Pratt core) ----------

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError("UnexpectedToken", "no prefix parse function for %s (%q)", p.curToken.Type, p.curToken.Literal)
		return &ast.BadExpr{Tok: p.curToken, SpanVal: posSpan(p.curToken.Pos, 0)}
	}
	left := prefix()

	for !p.peekTokenIs(token.SEMICOLON) && !p.peekTokenIs(token.EOF) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.curToken
	name := tok.Literal

	if p.peekTokenIs(token.LBRACE) && startsWithUpper(name) {
		return p.parseStructLiteral(name)
	}
	switch name {
	case "Ok":
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			v := p.parseExpression(LOWEST)
			p.expectPeek(token.RPAREN)
			return &ast.OkExpr{Tok: tok, Value: v, SpanVal: posSpan(tok.Pos, 0)}
		}
	case "Err":
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			v := p.parseExpression(LOWEST)
			p.expectPeek(token.RPAREN)
			return &ast.ErrExpr{Tok: tok, Value: v, SpanVal: posSpan(tok.Pos, 0)}
		}
	case "Some":
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			v := p.parseExpression(LOWEST)
			p.expectPeek(token.RPAREN)
			return &ast.SomeExpr{Tok: tok, Value: v, SpanVal: posSpan(tok.Pos, 0)}
		}
	case "None":
		return &ast.NoneExpr{Tok: tok, SpanVal: posSpan(tok.Pos, 0)}
	}

	// macro-like call site: name!(...) or name![...] or name!{...}
	if p.peekTokenIs(token.BANG) {
		p.nextToken()
		m := &ast.MacroCall{Tok: tok, Name: name, SpanVal: posSpan(tok.Pos, 0)}
		switch p.peekToken.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
		default:
			p.addError("UnexpectedToken", "expected (, [ or { after macro name")
			return m
		}
		p.nextToken()
		depth := 1
		p.nextToken()
		for depth > 0 && !p.curTokenIs(token.EOF) {
			if p.curTokenIs(token.LPAREN) || p.curTokenIs(token.LBRACKET) || p.curTokenIs(token.LBRACE) {
				depth++
			}
			if p.curTokenIs(token.RPAREN) || p.curTokenIs(token.RBRACKET) || p.curTokenIs(token.RBRACE) {
				depth--
				if depth == 0 {
					break
				}
			}
			m.RawTokens = append(m.RawTokens, p.curToken)
			p.nextToken()
		}
		return m
	}

	return &ast.Ident{Tok: tok, Name: name, SpanVal: posSpan(tok.Pos, len(name))}
}

func startsWithUpper(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}

func (p *Parser) parseStructLiteral(name string) ast.Expression {
	tok := p.curToken
	p.nextToken() // consume {
	p.nextToken()
	lit := &ast.StructLit{Tok: tok, Name: name}
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		key := p.curToken.Literal
		if !p.expectPeek(token.COLON) {
			break
		}
		p.nextToken()
		val := p.parseExpression(LOWEST)
		lit.Fields = append(lit.Fields, ast.ObjectField{Key: key, Value: val})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	lit.SpanVal = posSpan(tok.Pos, 0)
	return lit
}

func (p *Parser) parseIntLiteral() ast.Expression {
	tok := p.curToken
	return &ast.IntLit{Tok: tok, Value: tok.Literal, Suffix: tok.Suffix, SpanVal: posSpan(tok.Pos, len(tok.Literal))}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.curToken
	return &ast.FloatLit{Tok: tok, Value: tok.Literal, SpanVal: posSpan(tok.Pos, len(tok.Literal))}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	tok := p.curToken
	return &ast.BoolLit{Tok: tok, Value: tok.Type == token.TRUE, SpanVal: posSpan(tok.Pos, 0)}
}

func (p *Parser) parseNilLiteral() ast.Expression {
	tok := p.curToken
	return &ast.NilLit{Tok: tok, SpanVal: posSpan(tok.Pos, 0)}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	tok := p.curToken
	r := decodeEscapes(tok.Literal)
	var v rune
	if len(r) > 0 {
		v = []rune(r)[0]
	}
	return &ast.CharLit{Tok: tok, Value: v, SpanVal: posSpan(tok.Pos, 0)}
}

func (p *Parser) parseByteLiteral() ast.Expression {
	tok := p.curToken
	r := decodeEscapes(tok.Literal)
	var v byte
	if len(r) > 0 {
		v = r[0]
	}
	return &ast.ByteLit{Tok: tok, Value: v, SpanVal: posSpan(tok.Pos, 0)}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.curToken
	return &ast.StringLit{Tok: tok, Value: decodeEscapes(tok.Literal), SpanVal: posSpan(tok.Pos, 0)}
}

// parseFStringLiteral splits the raw f-string content into alternating
// literal/expr fragments and re-enters each embedded expression substring
// into a throwaway sub-parser sharing this parser's prefix/infix tables
// (spec §4.1/§4.2: "f-string payloads are re-entered into the same parser").
func (p *Parser) parseFStringLiteral() ast.Expression {
	tok := p.curToken
	parts := p.splitFString(tok.Literal, tok.Pos.Line)
	return &ast.FStringLit{Tok: tok, Parts: parts, SpanVal: posSpan(tok.Pos, 0)}
}

func (p *Parser) splitFString(s string, line int) []ast.StringPart {
	var parts []ast.StringPart
	var lit strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '{' {
			if i+1 < len(s) && s[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			if lit.Len() > 0 {
				parts = append(parts, ast.StringPart{Text: decodeEscapes(lit.String())})
				lit.Reset()
			}
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				if s[j] == '{' {
					depth++
				} else if s[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			exprSrc := s[i+1 : j]
			parts = append(parts, ast.StringPart{IsExpr: true, Expr: p.parseEmbeddedExpression(exprSrc, line)})
			i = j + 1
			continue
		}
		if s[i] == '}' && i+1 < len(s) && s[i+1] == '}' {
			lit.WriteByte('}')
			i += 2
			continue
		}
		lit.WriteByte(s[i])
		i++
	}
	if lit.Len() > 0 {
		parts = append(parts, ast.StringPart{Text: decodeEscapes(lit.String())})
	}
	return parts
}

func (p *Parser) parseEmbeddedExpression(src string, line int) ast.Expression {
	sub := New(lexer.New(src), p.file)
	expr := sub.parseExpression(LOWEST)
	p.diags.Extend(sub.diags)
	return expr
}

func decodeEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.curToken
	op := string(tok.Literal)
	p.nextToken()
	operand := p.parseExpression(UNARY)
	return &ast.UnaryExpr{Tok: tok, Op: op, Operand: operand, SpanVal: posSpan(tok.Pos, 0)}
}

func (p *Parser) parsePostfixExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	return &ast.UnaryExpr{Tok: tok, Op: string(tok.Literal), Operand: left, Postfix: true, SpanVal: left.Span()}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := string(tok.Literal)
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Tok: tok, Left: left, Op: op, Right: right, SpanVal: left.Span()}
}

func (p *Parser) parseBinaryExpressionRightAssoc(left ast.Expression) ast.Expression {
	tok := p.curToken
	op := string(tok.Literal)
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec - 1)
	return &ast.BinaryExpr{Tok: tok, Left: left, Op: op, Right: right, SpanVal: left.Span()}
}

func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	inclusive := tok.Type == token.DOTDOTEQ
	p.nextToken()
	right := p.parseExpression(RANGEOP)
	return &ast.RangeExpr{Tok: tok, Start: left, End: right, Inclusive: inclusive, SpanVal: left.Span()}
}

func (p *Parser) parsePipelineExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(PIPELINE)
	return &ast.PipelineExpr{Tok: tok, Left: left, Right: right, SpanVal: left.Span()}
}

func (p *Parser) parseTryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	return &ast.TryExpr{Tok: tok, X: left, SpanVal: left.Span()}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.curToken
	args := p.parseExpressionList(token.RPAREN)
	return &ast.CallExpr{Tok: tok, Callee: callee, Args: args, SpanVal: callee.Span()}
}

func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	p.expectPeek(end)
	return list
}

func (p *Parser) parseIndexExpression(x ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	idx := p.parseExpression(LOWEST)
	p.expectPeek(token.RBRACKET)
	return &ast.IndexExpr{Tok: tok, X: x, Index: idx, SpanVal: x.Span()}
}

func (p *Parser) parseMemberExpression(recv ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return recv
	}
	return &ast.MemberExpr{Tok: tok, Receiver: recv, Property: p.curToken.Literal, SpanVal: recv.Span()}
}

func (p *Parser) parseGroupedOrTuple() ast.Expression {
	tok := p.curToken
	p.nextToken()
	if p.curTokenIs(token.RPAREN) {
		return &ast.TupleLit{Tok: tok, SpanVal: posSpan(tok.Pos, 0)}
	}
	first := p.parseExpression(LOWEST)
	if p.peekTokenIs(token.COMMA) {
		elems := []ast.Expression{first}
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if p.peekTokenIs(token.RPAREN) {
				break
			}
			p.nextToken()
			elems = append(elems, p.parseExpression(LOWEST))
		}
		p.expectPeek(token.RPAREN)
		return &ast.TupleLit{Tok: tok, Elements: elems, SpanVal: posSpan(tok.Pos, 0)}
	}
	p.expectPeek(token.RPAREN)
	return first
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.curToken
	elems := p.parseExpressionList(token.RBRACKET)
	return &ast.ListLit{Tok: tok, Elements: elems, SpanVal: posSpan(tok.Pos, 0)}
}

func (p *Parser) parseIfExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return &ast.BadExpr{Tok: tok}
	}
	then := p.parseBlockExpr()
	e := &ast.IfExpr{Tok: tok, Cond: cond, Then: then, SpanVal: posSpan(tok.Pos, 0)}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			e.Else = p.parseIfExpression()
			return e
		}
		if p.expectPeek(token.LBRACE) {
			e.Else = p.parseBlockExpr()
		}
	}
	return e
}

// parseBlockExpr parses a brace block as a single expression value (the
// value of its final expression statement), used by if-expressions and
// match arms.
func (p *Parser) parseBlockExpr() ast.Expression {
	blk := p.parseBlockStatement()
	if len(blk.Stmts) == 0 {
		return &ast.NilLit{Tok: blk.Tok}
	}
	last := blk.Stmts[len(blk.Stmts)-1]
	if es, ok := last.(*ast.ExprStmt); ok {
		return es.X
	}
	return &ast.NilLit{Tok: blk.Tok}
}

func (p *Parser) parseMatchExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	subject := p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return &ast.BadExpr{Tok: tok}
	}
	p.nextToken()
	m := &ast.MatchExpr{Tok: tok, Subject: subject}
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		arm := &ast.MatchArm{}
		arm.Pattern = p.parsePattern()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			p.nextToken()
			arm.Guard = p.parseExpression(LOWEST)
		}
		if !p.expectPeek(token.FAT_ARROW) {
			p.synchronize()
			break
		}
		p.nextToken()
		if p.curTokenIs(token.LBRACE) {
			arm.Body = p.parseBlockExpr()
		} else {
			arm.Body = p.parseExpression(LOWEST)
		}
		m.Arms = append(m.Arms, arm)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}
	m.SpanVal = posSpan(tok.Pos, 0)
	return m
}

func (p *Parser) parsePattern() ast.Pattern {
	pat := p.parsePrimaryPattern()
	for p.peekTokenIs(token.PIPE) {
		p.nextToken()
		p.nextToken()
		next := p.parsePrimaryPattern()
		if or, ok := pat.(*ast.OrPattern); ok {
			or.Alternatives = append(or.Alternatives, next)
		} else {
			pat = &ast.OrPattern{Alternatives: []ast.Pattern{pat, next}}
		}
	}
	return pat
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	tok := p.curToken
	switch tok.Type {
	case token.IDENT:
		name := tok.Literal
		if name == "_" {
			return &ast.WildcardPattern{Tok: tok, SpanVal: posSpan(tok.Pos, 0)}
		}
		if p.peekTokenIs(token.COLONCOLON) {
			path := []string{name}
			for p.peekTokenIs(token.COLONCOLON) {
				p.nextToken()
				p.nextToken()
				path = append(path, p.curToken.Literal)
			}
			vp := &ast.VariantPattern{Tok: tok, Path: path, SpanVal: posSpan(tok.Pos, 0)}
			if p.peekTokenIs(token.LPAREN) {
				p.nextToken()
				p.nextToken()
				for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
					vp.Payload = append(vp.Payload, p.parsePattern())
					p.nextToken()
					if p.curTokenIs(token.COMMA) {
						p.nextToken()
					}
				}
			}
			return vp
		}
		if p.peekTokenIs(token.AT) {
			p.nextToken()
			p.nextToken()
			inner := p.parsePrimaryPattern()
			return &ast.AtBindingPattern{Tok: tok, Name: name, Pattern: inner, SpanVal: posSpan(tok.Pos, 0)}
		}
		if p.peekTokenIs(token.LPAREN) {
			// variant with no module path, e.g. Some(x)/Err(e)
			p.nextToken()
			p.nextToken()
			vp := &ast.VariantPattern{Tok: tok, Path: []string{name}, SpanVal: posSpan(tok.Pos, 0)}
			for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
				vp.Payload = append(vp.Payload, p.parsePattern())
				p.nextToken()
				if p.curTokenIs(token.COMMA) {
					p.nextToken()
				}
			}
			return vp
		}
		if startsWithUpper(name) && p.peekTokenIs(token.LBRACE) {
			return p.parseStructPattern(name)
		}
		return &ast.IdentPattern{Tok: tok, Name: name, SpanVal: posSpan(tok.Pos, 0)}
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.CHAR, token.NIL, token.MINUS:
		lit := p.parseExpression(RANGEOP + 1)
		if p.peekTokenIs(token.DOTDOT) || p.peekTokenIs(token.DOTDOTEQ) {
			inclusive := p.peekTokenIs(token.DOTDOTEQ)
			p.nextToken()
			p.nextToken()
			high := p.parseExpression(RANGEOP + 1)
			return &ast.RangePattern{Tok: tok, Low: lit, High: high, Inclusive: inclusive, SpanVal: posSpan(tok.Pos, 0)}
		}
		return &ast.LiteralPattern{Tok: tok, Value: lit, SpanVal: posSpan(tok.Pos, 0)}
	case token.LPAREN:
		p.nextToken()
		var elems []ast.Pattern
		for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
			elems = append(elems, p.parsePattern())
			p.nextToken()
			if p.curTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
		return &ast.TuplePattern{Tok: tok, Elements: elems, SpanVal: posSpan(tok.Pos, 0)}
	case token.LBRACKET:
		p.nextToken()
		lp := &ast.ListPattern{Tok: tok}
		for !p.curTokenIs(token.RBRACKET) && !p.curTokenIs(token.EOF) {
			if p.curTokenIs(token.DOTDOT) {
				rest := &ast.RestPattern{Tok: p.curToken}
				if p.peekTokenIs(token.IDENT) {
					p.nextToken()
					rest.Name = p.curToken.Literal
				}
				lp.Rest = rest
			} else {
				lp.Elements = append(lp.Elements, p.parsePattern())
			}
			p.nextToken()
			if p.curTokenIs(token.COMMA) {
				p.nextToken()
			}
		}
		lp.SpanVal = posSpan(tok.Pos, 0)
		return lp
	case token.DOTDOT:
		return &ast.RestPattern{Tok: tok, SpanVal: posSpan(tok.Pos, 0)}
	default:
		p.addError("InvalidPattern", "unexpected token in pattern: %s", tok.Type)
		return &ast.WildcardPattern{Tok: tok, SpanVal: posSpan(tok.Pos, 0)}
	}
}

func (p *Parser) parseStructPattern(name string) ast.Pattern {
	tok := p.curToken
	p.nextToken() // {
	p.nextToken()
	sp := &ast.StructPattern{Tok: tok, TypeName: name}
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.DOTDOT) {
			sp.HasRest = true
			p.nextToken()
			continue
		}
		field := ast.StructFieldPattern{Name: p.curToken.Literal}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			field.Pattern = p.parsePattern()
		}
		sp.Fields = append(sp.Fields, field)
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	sp.SpanVal = posSpan(tok.Pos, 0)
	return sp
}

func (p *Parser) parseSpawnExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	body := p.parseExpression(UNARY)
	return &ast.SpawnExpr{Tok: tok, Body: body, SpanVal: posSpan(tok.Pos, 0)}
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	x := p.parseExpression(UNARY)
	return &ast.AwaitExpr{Tok: tok, X: x, SpanVal: posSpan(tok.Pos, 0)}
}

// parseLambdaExpression handles `fun(x, y) { ... }` / `fun(x) => x + 1`
// anonymous function literals.
func (p *Parser) parseLambdaExpression() ast.Expression {
	tok := p.curToken
	params := p.parseParams()
	l := &ast.LambdaExpr{Tok: tok, Params: params, SpanVal: posSpan(tok.Pos, 0)}
	if p.peekTokenIs(token.FAT_ARROW) {
		p.nextToken()
		p.nextToken()
		l.Body = p.parseExpression(ASSIGN)
		return l
	}
	if p.expectPeek(token.LBRACE) {
		l.Body = p.parseBlockStatement()
	}
	return l
}

// parsePipeLambda handles the short closure syntax `|x, y| x + y`.
func (p *Parser) parsePipeLambda() ast.Expression {
	tok := p.curToken
	var params []*ast.Param
	p.nextToken()
	for !p.curTokenIs(token.PIPE) && !p.curTokenIs(token.EOF) {
		params = append(params, &ast.Param{Name: p.curToken.Literal})
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume closing |
	l := &ast.LambdaExpr{Tok: tok, Params: params, SpanVal: posSpan(tok.Pos, 0)}
	if p.curTokenIs(token.LBRACE) {
		l.Body = p.parseBlockStatement()
	} else {
		l.Body = p.parseExpression(ASSIGN)
	}
	return l
}
