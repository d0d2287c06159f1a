package parser

import (
	"github.com/chinanuke/bwcc/internal/ast"
	"github.com/chinanuke/bwcc/internal/token"
)

// typeModifyDecl splices modifier into decl's declarator chain. If decl is
// itself the terminal TypeDecl, modifier simply wraps it and becomes the
// new chain head. Otherwise modifier is spliced directly next to the
// terminal TypeDecl, pushing every previously-applied modifier further
// out — this is what gives `*a[3]` its "array of pointer" reading and
// `**a` its "pointer to pointer" reading when each `*`/`[...]` is applied
// in the order it was parsed.
func typeModifyDecl(decl ast.Type, modifier ast.Type) ast.Type {
	if _, ok := decl.(*ast.TypeDecl); ok {
		setInner(modifier, decl)
		return modifier
	}
	tail := decl
	for {
		inner := getInner(tail)
		if _, ok := inner.(*ast.TypeDecl); ok {
			break
		}
		tail = inner
	}
	setInner(modifier, getInner(tail))
	setInner(tail, modifier)
	return decl
}

func getInner(node ast.Type) ast.Type {
	switch n := node.(type) {
	case *ast.PtrDecl:
		return n.Inner
	case *ast.ArrayDecl:
		return n.Inner
	case *ast.FuncDecl:
		return n.Inner
	}
	return nil
}

func setInner(node ast.Type, inner ast.Type) {
	switch n := node.(type) {
	case *ast.PtrDecl:
		n.Inner = inner
	case *ast.ArrayDecl:
		n.Inner = inner
	case *ast.FuncDecl:
		n.Inner = inner
	}
}

// declSpec accumulates a declaration's specifier words before they are
// folded into a base Type and merged into the terminal TypeDecl.
type declSpec struct {
	storage  []string
	quals    []string
	typeName []string // specifier keywords, e.g. ["unsigned", "int"]
	typeNode ast.Type // set instead of typeName for struct/enum/typedef-name specifiers
	pos      token.Position
}

// parseDeclarationSpecifiers parses the storage-class, qualifier and
// type-specifier words that precede a declarator, in any order (C allows
// `static const int x` and `const static int x` interchangeably).
func (p *Parser) parseDeclarationSpecifiers() declSpec {
	var spec declSpec
	spec.pos = p.cur.Pos
	sawTypeName := false

	for {
		if p.failed() {
			return spec
		}
		switch {
		case storageKeywords[p.cur.Kind] != "":
			spec.storage = append(spec.storage, storageKeywords[p.cur.Kind])
			p.advance()
		case qualKeywords[p.cur.Kind] != "":
			spec.quals = append(spec.quals, qualKeywords[p.cur.Kind])
			p.advance()
		case typeSpecKeywords[p.cur.Kind] != "":
			if sawTypeName {
				p.errorf(p.cur.Pos, "cannot combine %q with a previously named type", p.cur.Lexeme)
				return spec
			}
			spec.typeName = append(spec.typeName, typeSpecKeywords[p.cur.Kind])
			p.advance()
		case p.at(token.TYPEID):
			if len(spec.typeName) > 0 || spec.typeNode != nil {
				return spec
			}
			sawTypeName = true
			spec.typeNode = &ast.IdentifierType{Names: []string{p.cur.Lexeme}, Coord: p.cur.Pos}
			p.advance()
		case p.at(token.STRUCT):
			sawTypeName = true
			spec.typeNode = p.parseStructSpecifier()
			return spec
		case p.at(token.ENUM):
			sawTypeName = true
			spec.typeNode = p.parseEnumSpecifier()
			return spec
		default:
			return spec
		}
	}
}

// baseType folds the accumulated specifier words into a single base Type.
// Declarations with no type specifier at all default to int, whatever
// their declarator; a missing type specifier on a non-function
// declarator is not reported as an error.
func (spec declSpec) baseType() ast.Type {
	if spec.typeNode != nil {
		return spec.typeNode
	}
	names := spec.typeName
	if len(names) == 0 {
		names = []string{"int"}
	}
	return &ast.IdentifierType{Names: names, Coord: spec.pos}
}

// parseStructSpecifier parses `struct [tag] [{ member-declaration-list }]`.
func (p *Parser) parseStructSpecifier() ast.Type {
	pos := p.cur.Pos
	p.expect(token.STRUCT)
	name := ""
	if p.at(token.IDENT) || p.at(token.TYPEID) {
		name = p.cur.Lexeme
		p.advance()
	}
	s := &ast.Struct{Name: name, Coord: pos}
	if p.at(token.LBRACE) {
		p.advance()
		for !p.at(token.RBRACE) && !p.failed() {
			s.Fields = append(s.Fields, p.parseStructDeclaration()...)
		}
		p.expect(token.RBRACE)
	}
	return s
}

// parseStructDeclaration parses one member-declaration: a
// specifier-qualifier-list followed by one or more declarators. It reuses
// parseDeclarationSpecifiers (storage-class words are simply ignored for
// members, matching the specifier-qualifier-list production) rather than
// a separate accumulator, avoiding the duplicated logic that the member
// declarator path in the reference grammar keeps as a second, easily
// drifting copy of the top-level declaration-specifier accumulator.
func (p *Parser) parseStructDeclaration() []*ast.Decl {
	spec := p.parseDeclarationSpecifiers()
	base := spec.baseType()

	var decls []*ast.Decl
	for {
		name, pos, chain := p.parseDeclarator()
		if p.failed() {
			return decls
		}
		fixDeclType(chain, base, spec.quals)
		decls = append(decls, &ast.Decl{Name: name, Quals: spec.quals, Type: chain, Coord: pos})
		if !p.at(token.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(token.SEMI)
	return decls
}

// parseEnumSpecifier parses `enum [tag] [{ enumerator-list }]`. Each
// enumerator name is bound as an identifier in the current scope as soon
// as it is parsed, so it shadows an outer typedef of the same name for
// the rest of the enum body. The lexer's brace callbacks give the enum
// body its own scope, which is gone once the closing brace is scanned,
// so every enumerator is bound again in the enclosing scope after the
// body, where later uses in the translation unit resolve it.
func (p *Parser) parseEnumSpecifier() ast.Type {
	pos := p.cur.Pos
	p.expect(token.ENUM)
	name := ""
	if p.at(token.IDENT) || p.at(token.TYPEID) {
		name = p.cur.Lexeme
		p.advance()
	}
	e := &ast.Enum{Name: name, Coord: pos}
	if p.at(token.LBRACE) {
		p.advance()
		for !p.at(token.RBRACE) && !p.failed() {
			enumPos := p.cur.Pos
			enumName := p.cur.Lexeme
			if !p.at(token.IDENT) && !p.at(token.TYPEID) {
				p.errorf(p.cur.Pos, "expected enumerator name, got %q", p.cur.Lexeme)
				return e
			}
			p.advance()
			if err := p.scopes.AddIdentifier(enumName, enumPos); err != nil {
				p.errorf(enumPos, "%s", err)
				return e
			}
			var value ast.Expr
			if p.at(token.EQUALS) {
				p.advance()
				value = p.parseConditional()
			}
			e.Enumerators = append(e.Enumerators, &ast.Enumerator{Name: enumName, Value: value, Coord: enumPos})
			if !p.at(token.COMMA) {
				break
			}
			p.advance()
		}
		p.expect(token.RBRACE)
		for _, en := range e.Enumerators {
			if err := p.scopes.AddIdentifier(en.Name, en.Coord); err != nil {
				p.errorf(en.Coord, "%s", err)
				return e
			}
		}
	}
	return e
}

// fixDeclType walks chain to its terminal TypeDecl and installs the
// parsed base type and qualifiers there: the declarator and the
// specifier list are parsed independently and only joined once both
// are known.
func fixDeclType(chain ast.Type, base ast.Type, quals []string) {
	node := chain
	for {
		if td, ok := node.(*ast.TypeDecl); ok {
			td.Inner = base
			td.Quals = append(td.Quals, quals...)
			return
		}
		node = getInner(node)
	}
}

// declName returns the name bound at chain's terminal TypeDecl.
func declName(chain ast.Type) string {
	node := chain
	for {
		if td, ok := node.(*ast.TypeDecl); ok {
			return td.Declname
		}
		node = getInner(node)
	}
}

// parseDeclarator parses a full declarator: zero or more leading `*`
// (each with its own const/volatile qualifiers), then a direct
// declarator (a name, or a parenthesized declarator) followed by zero or
// more array/function suffixes.
func (p *Parser) parseDeclarator() (name string, pos token.Position, chain ast.Type) {
	var pointers []*ast.PtrDecl
	for p.at(token.TIMES) {
		starPos := p.cur.Pos
		p.advance()
		var quals []string
		for qualKeywords[p.cur.Kind] != "" {
			quals = append(quals, qualKeywords[p.cur.Kind])
			p.advance()
		}
		pointers = append(pointers, &ast.PtrDecl{Quals: quals, Coord: starPos})
	}

	name, pos, chain = p.parseDirectDeclarator()
	if p.failed() {
		return
	}

	for _, ptr := range pointers {
		chain = typeModifyDecl(chain, ptr)
	}
	return
}

func (p *Parser) parseDirectDeclarator() (name string, pos token.Position, chain ast.Type) {
	switch {
	case p.at(token.IDENT) || p.at(token.TYPEID):
		name = p.cur.Lexeme
		pos = p.cur.Pos
		p.advance()
		leaf := &ast.TypeDecl{Declname: name, Coord: pos}
		chain = leaf
	case p.at(token.LPAREN):
		p.advance()
		name, pos, chain = p.parseDeclarator()
		p.expect(token.RPAREN)
	default:
		p.errorf(p.cur.Pos, "expected declarator, got %q", p.cur.Lexeme)
		return
	}

	for !p.failed() {
		switch {
		case p.at(token.LBRACKET):
			bpos := p.cur.Pos
			p.advance()
			var dim ast.Expr
			if !p.at(token.RBRACKET) {
				dim = p.parseConditional()
			}
			p.expect(token.RBRACKET)
			chain = typeModifyDecl(chain, &ast.ArrayDecl{Dim: dim, Coord: bpos})
		case p.at(token.LPAREN):
			fpos := p.cur.Pos
			p.advance()
			params := p.parseParamList()
			p.expect(token.RPAREN)
			chain = typeModifyDecl(chain, &ast.FuncDecl{Params: params, Coord: fpos})
		default:
			return
		}
	}
	return
}

// parseParamList parses a function declarator's parameter list. `(void)`
// is a zero-parameter list, matching the reference grammar's special
// case; `()` is treated the same way, since this subset has no
// old-style K&R parameter lists or varargs.
func (p *Parser) parseParamList() *ast.ParamList {
	pos := p.cur.Pos
	list := &ast.ParamList{Coord: pos}
	if p.at(token.RPAREN) {
		return list
	}
	if p.at(token.VOID) && p.peekAt(token.RPAREN) {
		p.advance()
		return list
	}
	for {
		ppos := p.cur.Pos
		spec := p.parseDeclarationSpecifiers()
		if p.failed() {
			return list
		}
		base := spec.baseType()
		name, dpos, chain := p.parseDeclarator()
		if p.failed() {
			return list
		}
		fixDeclType(chain, base, spec.quals)
		if name == "" {
			dpos = ppos
		}
		list.Params = append(list.Params, &ast.Param{Name: name, Type: chain, Coord: dpos})
		if !p.at(token.COMMA) {
			break
		}
		p.advance()
	}
	return list
}

// parseExternalDeclaration parses one top-level declaration, typedef or
// function definition (translation_unit -> external_declaration).
func (p *Parser) parseExternalDeclaration() []ast.ExternalDecl {
	spec := p.parseDeclarationSpecifiers()
	if p.failed() {
		return nil
	}
	isTypedef := false
	for _, s := range spec.storage {
		if s == "typedef" {
			isTypedef = true
		}
	}
	base := spec.baseType()

	if p.at(token.SEMI) {
		// A bare struct/enum specifier declaration with no declarator.
		p.advance()
		return nil
	}

	name, pos, chain := p.parseDeclarator()
	if p.failed() {
		return nil
	}
	fixDeclType(chain, base, spec.quals)

	if isTypedef {
		if err := p.scopes.AddTypedefName(name, pos); err != nil {
			p.errorf(pos, "%s", err)
			return nil
		}
		typedefDecl := &ast.Typedef{Name: name, Quals: spec.quals, Storage: spec.storage, Type: chain, Coord: pos}
		for p.at(token.COMMA) {
			p.advance()
			n2, p2, c2 := p.parseDeclarator()
			if p.failed() {
				return nil
			}
			fixDeclType(c2, base, spec.quals)
			if err := p.scopes.AddTypedefName(n2, p2); err != nil {
				p.errorf(p2, "%s", err)
				return nil
			}
			_ = n2
			_ = c2
		}
		p.expect(token.SEMI)
		// The token after `;` was scanned before the names above were
		// bound; reclassify it now that they are.
		if p.at(token.IDENT) && p.scopes.IsTypeName(p.cur.Lexeme) {
			p.cur.Kind = token.TYPEID
		}
		return []ast.ExternalDecl{typedefDecl}
	}

	if err := p.scopes.AddIdentifier(name, pos); err != nil {
		p.errorf(pos, "%s", err)
		return nil
	}

	if _, ok := chain.(*ast.FuncDecl); ok && p.at(token.LBRACE) {
		return []ast.ExternalDecl{p.parseFunctionBody(name, spec, chain, pos)}
	}

	decl := &ast.Decl{Name: name, Quals: spec.quals, Storage: spec.storage, Type: chain, Coord: pos}
	if p.at(token.EQUALS) {
		p.advance()
		decl.Init = p.parseInitializer()
	}
	decls := []ast.ExternalDecl{decl}
	for p.at(token.COMMA) {
		p.advance()
		n2, p2, c2 := p.parseDeclarator()
		if p.failed() {
			return decls
		}
		fixDeclType(c2, base, spec.quals)
		if err := p.scopes.AddIdentifier(n2, p2); err != nil {
			p.errorf(p2, "%s", err)
			return decls
		}
		d2 := &ast.Decl{Name: n2, Quals: spec.quals, Storage: spec.storage, Type: c2, Coord: p2}
		if p.at(token.EQUALS) {
			p.advance()
			d2.Init = p.parseInitializer()
		}
		decls = append(decls, d2)
	}
	p.expect(token.SEMI)
	return decls
}

// parseFunctionBody parses a function definition's compound-statement
// body, after the declarator (which already contains the FuncDecl and
// its parameter list) has been parsed. p.cur is the opening brace here
// but has not been consumed yet: the lexer's brace callback already
// pushed the function's block scope the moment it scanned that `{`
// (the callback fires at scan time, one token ahead of where the parser
// currently sits), so the scope to bind parameter names into already
// exists. Registering them now, before calling expect(LBRACE), means
// every body token scanned from here on resolves against them; the one
// body token already scanned (p.peek) is reclassified right after the
// parameters are bound. Doing it after consuming the brace would leave
// a second already-scanned token resolved against the wrong (outer)
// scope.
func (p *Parser) parseFunctionBody(name string, spec declSpec, chain ast.Type, pos token.Position) *ast.FuncDef {
	decl := &ast.Decl{Name: name, Quals: spec.quals, Storage: spec.storage, Type: chain, Coord: pos}

	funcDecl, _ := chain.(*ast.FuncDecl)
	if funcDecl != nil && funcDecl.Params != nil {
		for _, param := range funcDecl.Params.Params {
			if param.Name == "" {
				continue
			}
			if err := p.scopes.AddIdentifier(param.Name, param.Coord); err != nil {
				p.errorf(param.Coord, "%s", err)
				return &ast.FuncDef{Decl: decl, Coord: pos}
			}
		}
	}
	if p.peek.Kind == token.TYPEID && !p.scopes.IsTypeName(p.peek.Lexeme) {
		p.peek.Kind = token.IDENT
	}

	lbrace := p.expect(token.LBRACE)
	if p.failed() {
		return &ast.FuncDef{Decl: decl, Coord: pos}
	}

	body := &ast.Compound{Coord: lbrace.Pos}
	for !p.at(token.RBRACE) && !p.at(token.EOF) && !p.failed() {
		body.Items = append(body.Items, p.parseBlockItem())
	}
	p.expect(token.RBRACE)

	return &ast.FuncDef{Decl: decl, Body: body, Coord: pos}
}
