// Package parser implements the BWCC recursive-descent parser.
//
// It builds the AST directly while it scans (no separate CST), resolving
// the typedef/identifier ambiguity through the lexer callback loop rather
// than a two-pass grammar. Expression parsing follows a
// precedence-climbing scheme for the binary operator ladder, with
// assignment, conditional, unary and postfix handled as their own
// recursive levels.
//
// There is no error recovery: the first error raised aborts the parse.
package parser

import (
	"fmt"

	"github.com/chinanuke/bwcc/internal/ast"
	"github.com/chinanuke/bwcc/internal/errors"
	"github.com/chinanuke/bwcc/internal/lexer"
	"github.com/chinanuke/bwcc/internal/token"
)

// Precedence levels for the binary operator ladder, lowest first.
const (
	_ int = iota
	precLowest
	precLOr // ||
	precLAnd
	precOr
	precXor
	precAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

var binaryPrecedence = map[token.Kind]int{
	token.LOR: precLOr, token.LAND: precLAnd,
	token.OR: precOr, token.XOR: precXor, token.AND: precAnd,
	token.EQ: precEquality, token.NE: precEquality,
	token.LT: precRelational, token.GT: precRelational,
	token.LE: precRelational, token.GE: precRelational,
	token.LSHIFT: precShift, token.RSHIFT: precShift,
	token.PLUS: precAdditive, token.MINUS: precAdditive,
	token.TIMES: precMultiplicative, token.DIVIDE: precMultiplicative, token.MOD: precMultiplicative,
}

var assignOps = map[token.Kind]bool{
	token.EQUALS: true, token.PLUSEQUAL: true, token.MINUSEQUAL: true,
	token.TIMESEQUAL: true, token.DIVEQUAL: true, token.MODEQUAL: true,
	token.LSHIFTEQUAL: true, token.RSHIFTEQUAL: true,
	token.ANDEQUAL: true, token.OREQUAL: true, token.XOREQUAL: true,
}

// storageKeywords and qualKeywords classify declaration-specifier
// keywords that are not themselves type names.
var storageKeywords = map[token.Kind]string{
	token.AUTO: "auto", token.EXTERN: "extern", token.REGISTER: "register",
	token.STATIC: "static", token.TYPEDEF: "typedef",
}

var qualKeywords = map[token.Kind]string{
	token.CONST: "const", token.VOLATILE: "volatile",
}

var typeSpecKeywords = map[token.Kind]string{
	token.VOID: "void", token.CHAR: "char", token.SHORT: "short",
	token.INT: "int", token.LONG: "long", token.FLOAT: "float",
	token.DOUBLE: "double", token.SIGNED: "signed", token.UNSIGNED: "unsigned",
}

// Parser turns a token stream into a *ast.FileAST.
type Parser struct {
	l        *lexer.Lexer
	scopes   *ScopeStack
	source   string
	filename string

	cur  token.Token
	peek token.Token

	err *errors.CompilerError
}

// New creates a Parser over source text. It owns the lexer and the scope
// stack so that the lexer's typedef/identifier callbacks always resolve
// against this parser's own scope.
func New(source, filename string) *Parser {
	scopes := NewScopeStack()
	l := lexer.New(source, lexer.WithResolver(scopes), lexer.WithFilename(filename))

	p := &Parser{l: l, scopes: scopes, source: source, filename: filename}
	p.advance()
	p.advance()
	return p
}

// Err returns the first error raised during parsing, or nil.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) failed() bool { return p.err != nil }

// errorf records the first parse error. Once set, every subsequent
// parsing function should check failed() and unwind without doing
// further work; there is no recovery.
func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	if p.err != nil {
		return
	}
	p.err = errors.NewCompilerError(errors.Syntactic, pos, fmt.Sprintf(format, args...), p.source)
}

func (p *Parser) expect(k token.Kind) token.Token {
	tok := p.cur
	if tok.Kind != k {
		p.errorf(tok.Pos, "expected %s, got %s (%q)", k, tok.Kind, tok.Lexeme)
		return tok
	}
	p.advance()
	return tok
}

func (p *Parser) at(k token.Kind) bool     { return p.cur.Kind == k }
func (p *Parser) peekAt(k token.Kind) bool { return p.peek.Kind == k }

// isDeclarationStart reports whether the current token can begin a
// declaration: a storage-class keyword, a type-qualifier keyword, a
// builtin type-specifier keyword, struct/enum, or a TYPEID the lexer has
// already classified as a known typedef name.
func (p *Parser) isDeclarationStart() bool {
	switch p.cur.Kind {
	case token.TYPEID, token.STRUCT, token.ENUM:
		return true
	}
	if _, ok := storageKeywords[p.cur.Kind]; ok {
		return true
	}
	if _, ok := qualKeywords[p.cur.Kind]; ok {
		return true
	}
	if _, ok := typeSpecKeywords[p.cur.Kind]; ok {
		return true
	}
	return false
}

// ParseProgram parses a whole translation unit. Lexer errors observed
// along the way are surfaced as the first parser error.
func (p *Parser) ParseProgram() *ast.FileAST {
	file := &ast.FileAST{}
	for !p.at(token.EOF) && !p.failed() {
		decl := p.parseExternalDeclaration()
		if p.failed() {
			break
		}
		if decl != nil {
			file.Decls = append(file.Decls, decl...)
		}
	}
	if !p.failed() {
		if lexErrs := p.l.Errors(); len(lexErrs) > 0 {
			e := lexErrs[0]
			p.errorf(e.Pos, "%s", e.Message)
		}
	}
	return file
}

// Parse is the package-level convenience entry point.
func Parse(source, filename string) (*ast.FileAST, error) {
	p := New(source, filename)
	file := p.ParseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return file, nil
}
