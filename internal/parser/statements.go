package parser

import (
	"github.com/chinanuke/bwcc/internal/ast"
	"github.com/chinanuke/bwcc/internal/token"
)

// parseBlockItem parses one item of a compound statement's item list: a
// declaration or a statement, freely interleaved.
func (p *Parser) parseBlockItem() ast.Stmt {
	if p.isDeclarationStart() {
		return p.parseLocalDeclaration()
	}
	return p.parseStatement()
}

// parseLocalDeclaration parses a declaration that appears inside a
// function body. A single declarator yields a bare *ast.Decl; more than
// one yields an *ast.DeclList.
func (p *Parser) parseLocalDeclaration() ast.Stmt {
	pos := p.cur.Pos
	spec := p.parseDeclarationSpecifiers()
	if p.failed() {
		return &ast.EmptyStatement{Coord: pos}
	}
	isTypedef := false
	for _, s := range spec.storage {
		if s == "typedef" {
			isTypedef = true
		}
	}
	base := spec.baseType()

	if p.at(token.SEMI) {
		p.advance()
		return &ast.EmptyStatement{Coord: pos}
	}

	parseOne := func() (ast.Stmt, string) {
		name, dpos, chain := p.parseDeclarator()
		if p.failed() {
			return nil, ""
		}
		fixDeclType(chain, base, spec.quals)

		if isTypedef {
			if err := p.scopes.AddTypedefName(name, dpos); err != nil {
				p.errorf(dpos, "%s", err)
				return nil, name
			}
			return &ast.Typedef{Name: name, Quals: spec.quals, Storage: spec.storage, Type: chain, Coord: dpos}, name
		}
		if err := p.scopes.AddIdentifier(name, dpos); err != nil {
			p.errorf(dpos, "%s", err)
			return nil, name
		}
		decl := &ast.Decl{Name: name, Quals: spec.quals, Storage: spec.storage, Type: chain, Coord: dpos}
		if p.at(token.EQUALS) {
			p.advance()
			decl.Init = p.parseInitializer()
		}
		return decl, name
	}

	first, _ := parseOne()
	if p.failed() {
		return &ast.EmptyStatement{Coord: pos}
	}
	if !p.at(token.COMMA) {
		p.expect(token.SEMI)
		return first
	}

	list := &ast.DeclList{Coord: pos}
	if d, ok := first.(*ast.Decl); ok {
		list.Decls = append(list.Decls, d)
	}
	for p.at(token.COMMA) {
		p.advance()
		next, _ := parseOne()
		if p.failed() {
			return list
		}
		if d, ok := next.(*ast.Decl); ok {
			list.Decls = append(list.Decls, d)
		}
	}
	p.expect(token.SEMI)
	return list
}

func (p *Parser) parseInitializer() ast.Expr {
	if p.at(token.LBRACE) {
		pos := p.cur.Pos
		p.advance()
		list := &ast.InitList{Coord: pos}
		for !p.at(token.RBRACE) && !p.failed() {
			list.Exprs = append(list.Exprs, p.parseAssignment())
			if !p.at(token.COMMA) {
				break
			}
			p.advance()
		}
		p.expect(token.RBRACE)
		return list
	}
	return p.parseAssignment()
}

// parseStatement parses one statement production.
func (p *Parser) parseStatement() ast.Stmt {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.LBRACE:
		return p.parseCompound()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.FOR:
		return p.parseFor()
	case token.BREAK:
		p.advance()
		p.expect(token.SEMI)
		return &ast.Break{Coord: pos}
	case token.CONTINUE:
		p.advance()
		p.expect(token.SEMI)
		return &ast.Continue{Coord: pos}
	case token.RETURN:
		p.advance()
		var expr ast.Expr
		if !p.at(token.SEMI) {
			expr = p.parseExpression()
		}
		p.expect(token.SEMI)
		return &ast.Return{Expr: expr, Coord: pos}
	case token.SEMI:
		p.advance()
		return &ast.EmptyStatement{Coord: pos}
	default:
		expr := p.parseExpression()
		p.expect(token.SEMI)
		return &ast.ExprStmt{Expr: expr, Coord: pos}
	}
}

// parseCompound parses `{ block-item* }`. The lexer's brace callbacks
// already push/pop the scope stack the instant each brace is scanned;
// this function never pushes or pops itself, it only consumes the
// already-produced tokens.
func (p *Parser) parseCompound() *ast.Compound {
	pos := p.expect(token.LBRACE).Pos
	c := &ast.Compound{Coord: pos}
	for !p.at(token.RBRACE) && !p.at(token.EOF) && !p.failed() {
		c.Items = append(c.Items, p.parseBlockItem())
	}
	p.expect(token.RBRACE)
	return c
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.cur.Pos
	p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	then := p.parseStatement()
	var els ast.Stmt
	if p.at(token.ELSE) {
		p.advance()
		els = p.parseStatement()
	}
	return &ast.If{Cond: cond, Then: then, Else: els, Coord: pos}
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.cur.Pos
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.While{Cond: cond, Body: body, Coord: pos}
}

func (p *Parser) parseDoWhile() ast.Stmt {
	pos := p.cur.Pos
	p.expect(token.DO)
	body := p.parseStatement()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	p.expect(token.SEMI)
	return &ast.DoWhile{Body: body, Cond: cond, Coord: pos}
}

func (p *Parser) parseFor() ast.Stmt {
	pos := p.cur.Pos
	p.expect(token.FOR)
	p.expect(token.LPAREN)

	var init ast.Stmt
	if p.at(token.SEMI) {
		p.advance()
	} else if p.isDeclarationStart() {
		init = p.parseLocalDeclaration()
	} else {
		ipos := p.cur.Pos
		init = &ast.ExprStmt{Expr: p.parseExpression(), Coord: ipos}
		p.expect(token.SEMI)
	}

	var cond ast.Expr
	if !p.at(token.SEMI) {
		cond = p.parseExpression()
	}
	p.expect(token.SEMI)

	var next ast.Expr
	if !p.at(token.RPAREN) {
		next = p.parseExpression()
	}
	p.expect(token.RPAREN)

	body := p.parseStatement()
	return &ast.For{Init: init, Cond: cond, Next: next, Body: body, Coord: pos}
}
