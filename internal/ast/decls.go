package ast

// Decl is a variable, parameter or function declaration. Walking
// Type.Inner...Inner always reaches a TypeDecl whose Declname equals
// Name; the parser's declaration fixup establishes this once the
// declarator chain and the specifier list have both been parsed.
type Decl struct {
	Name    string
	Quals   []string
	Storage []string // "static", "extern", "register", "auto" (accepted, mostly ignored by codegen)
	Type    Type
	Init    Expr // optional initializer
	Coord   Coord
}

func (n *Decl) Pos() Coord          { return n.Coord }
func (*Decl) stmtNode()             {}
func (*Decl) externalDeclNode()     {}

// Typedef introduces Name as a type alias for Type; the parser records it
// in the current scope as a typedef name.
type Typedef struct {
	Name    string
	Quals   []string
	Storage []string
	Type    Type
	Coord   Coord
}

func (n *Typedef) Pos() Coord      { return n.Coord }
func (*Typedef) stmtNode()         {}
func (*Typedef) externalDeclNode() {}

// Param is one parameter of a function declarator.
type Param struct {
	Name  string
	Type  Type
	Coord Coord
}

func (n *Param) Pos() Coord { return n.Coord }

// ParamList is a function declarator's parameter list.
type ParamList struct {
	Params []*Param
	Coord  Coord
}

func (n *ParamList) Pos() Coord { return n.Coord }

// FuncDef is a function definition: `declaration_specifiers declarator
// compound_statement`. Decl's type chain ends in a FuncDecl; Body is the
// function's compound statement.
type FuncDef struct {
	Decl  *Decl
	Body  *Compound
	Coord Coord
}

func (n *FuncDef) Pos() Coord      { return n.Coord }
func (*FuncDef) externalDeclNode() {}
