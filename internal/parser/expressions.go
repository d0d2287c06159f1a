package parser

import (
	"strings"

	"github.com/chinanuke/bwcc/internal/ast"
	"github.com/chinanuke/bwcc/internal/token"
)

// parseExpression parses the comma-operator level: one or more
// assignment-expressions joined by `,`. A single expression is returned
// unwrapped; more than one is wrapped in an *ast.ExprList.
func (p *Parser) parseExpression() ast.Expr {
	pos := p.cur.Pos
	first := p.parseAssignment()
	if !p.at(token.COMMA) {
		return first
	}
	list := &ast.ExprList{Exprs: []ast.Expr{first}, Coord: pos}
	for p.at(token.COMMA) {
		p.advance()
		list.Exprs = append(list.Exprs, p.parseAssignment())
	}
	return list
}

// parseAssignment parses `conditional-expression (assignment-operator
// assignment-expression)?`, right-associative.
func (p *Parser) parseAssignment() ast.Expr {
	pos := p.cur.Pos
	left := p.parseConditional()
	if !assignOps[p.cur.Kind] {
		return left
	}
	op := p.cur.Lexeme
	p.advance()
	right := p.parseAssignment()
	return &ast.Assignment{Op: op, LValue: left, RValue: right, Coord: pos}
}

// parseConditional parses `logical-or-expression ('?' expression ':'
// conditional-expression)?`, right-associative.
func (p *Parser) parseConditional() ast.Expr {
	pos := p.cur.Pos
	cond := p.parseBinary(precLowest + 1)
	if !p.at(token.CONDOP) {
		return cond
	}
	p.advance()
	then := p.parseExpression()
	p.expect(token.COLON)
	els := p.parseConditional()
	return &ast.TernaryOp{Cond: cond, Then: then, Else: els, Coord: pos}
}

// parseBinary implements precedence climbing over the binary operator
// ladder (|| && | ^ & == != < > <= >= << >> + - * / %), all left
// associative.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec, ok := binaryPrecedence[p.cur.Kind]
		if !ok || prec < minPrec {
			return left
		}
		op := p.cur.Lexeme
		pos := p.cur.Pos
		p.advance()
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryOp{Op: op, Left: left, Right: right, Coord: pos}
	}
}

var prefixUnaryOps = map[token.Kind]bool{
	token.PLUS: true, token.MINUS: true, token.LNOT: true, token.NOT: true,
	token.PLUSPLUS: true, token.MINUSMINUS: true, token.AND: true, token.TIMES: true,
}

// parseUnary parses prefix unary operators (+ - ! ~ ++ -- & *) over a
// postfix-expression.
func (p *Parser) parseUnary() ast.Expr {
	if prefixUnaryOps[p.cur.Kind] {
		op := p.cur.Lexeme
		pos := p.cur.Pos
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Op: op, Operand: operand, Coord: pos}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary-expression followed by zero or more of
// `[expr]`, `(args)`, `.name`, `->name`, `++`, `--`.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		pos := p.cur.Pos
		switch p.cur.Kind {
		case token.LBRACKET:
			p.advance()
			index := p.parseExpression()
			p.expect(token.RBRACKET)
			expr = &ast.ArrayRef{Array: expr, Index: index, Coord: pos}
		case token.LPAREN:
			callee, ok := expr.(*ast.ID)
			if !ok {
				p.errorf(pos, "called expression must be a plain function name")
				return expr
			}
			p.advance()
			args := &ast.ExprList{Coord: pos}
			if !p.at(token.RPAREN) {
				args.Exprs = append(args.Exprs, p.parseAssignment())
				for p.at(token.COMMA) {
					p.advance()
					args.Exprs = append(args.Exprs, p.parseAssignment())
				}
			}
			p.expect(token.RPAREN)
			expr = &ast.FuncCall{Callee: callee, Args: args, Coord: pos}
		case token.PERIOD:
			p.advance()
			field := p.expect(token.IDENT).Lexeme
			expr = &ast.StructRef{Base: expr, Op: ".", Field: field, Coord: pos}
		case token.ARROW:
			p.advance()
			field := p.expect(token.IDENT).Lexeme
			expr = &ast.StructRef{Base: expr, Op: "->", Field: field, Coord: pos}
		case token.PLUSPLUS:
			p.advance()
			expr = &ast.UnaryOp{Op: "p++", Operand: expr, Coord: pos}
		case token.MINUSMINUS:
			p.advance()
			expr = &ast.UnaryOp{Op: "p--", Operand: expr, Coord: pos}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.IDENT, token.TYPEID:
		name := p.cur.Lexeme
		p.advance()
		return &ast.ID{Name: name, Coord: pos}
	case token.INT_CONST:
		lit := p.cur.Lexeme
		suffix := lit[len(strings.TrimRight(lit, "uUlL")):]
		lower := strings.ToLower(suffix)
		if strings.Count(lower, "u") > 1 || strings.Count(lower, "l") > 2 || strings.Contains(suffix, "lL") || strings.Contains(suffix, "Ll") {
			p.errorf(pos, "malformed integer suffix in %q", lit)
		}
		p.advance()
		return &ast.Constant{TypeTag: "int", Literal: lit, Coord: pos}
	case token.FLOAT_CONST:
		lit := p.cur.Lexeme
		p.advance()
		return &ast.Constant{TypeTag: "float", Literal: lit, Coord: pos}
	case token.CHAR_CONST:
		lit := p.cur.Lexeme
		p.advance()
		return &ast.Constant{TypeTag: "char", Literal: lit, Coord: pos}
	case token.STRING_LITERAL:
		lit := p.cur.Lexeme
		p.advance()
		return &ast.Constant{TypeTag: "string", Literal: lit, Coord: pos}
	case token.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(token.RPAREN)
		return expr
	default:
		p.errorf(pos, "expected expression, got %s (%q)", p.cur.Kind, p.cur.Lexeme)
		return &ast.Constant{TypeTag: "int", Literal: "0", Coord: pos}
	}
}
