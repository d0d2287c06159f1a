package ast

// Type nodes form a declarator chain: every Decl's type chain is terminated
// by a TypeDecl whose Declname equals the owning Decl's Name. Reading the
// chain outermost-first describes the declared C type, e.g.
// PtrDecl{ArrayDecl{TypeDecl}} reads "pointer to array of int".

// IdentifierType names a base type by one or more specifier words, e.g.
// []string{"unsigned", "int"}. Multiple IdentifierType specifiers in a
// single declaration are merged into one by the parser's declaration
// fixup.
type IdentifierType struct {
	Names []string
	Coord Coord
}

func (n *IdentifierType) Pos() Coord  { return n.Coord }
func (*IdentifierType) typeNode() {}

// TypeDecl terminates a declarator chain; Declname is the name being
// declared (empty for abstract declarators, none of which this subset
// parses to completion since casts are out of scope).
type TypeDecl struct {
	Declname string
	Quals    []string
	Inner    Type
	Coord    Coord
}

func (n *TypeDecl) Pos() Coord  { return n.Coord }
func (*TypeDecl) typeNode() {}

// PtrDecl wraps an inner type: "pointer to Inner".
type PtrDecl struct {
	Quals []string
	Inner Type
	Coord Coord
}

func (n *PtrDecl) Pos() Coord  { return n.Coord }
func (*PtrDecl) typeNode() {}

// ArrayDecl wraps an inner type: "array of Inner", with an optional
// constant-expression dimension (nil for `T a[]`).
type ArrayDecl struct {
	Inner     Type
	Dim       Expr
	DimQuals  []string
	Coord     Coord
}

func (n *ArrayDecl) Pos() Coord  { return n.Coord }
func (*ArrayDecl) typeNode() {}

// FuncDecl wraps a return-type chain with a parameter list: "function
// (Params) returning Inner".
type FuncDecl struct {
	Params *ParamList
	Inner  Type
	Coord  Coord
}

func (n *FuncDecl) Pos() Coord  { return n.Coord }
func (*FuncDecl) typeNode() {}

// Struct is a (possibly anonymous) struct specifier with its member field
// declarations. BWCC supports struct declarations as a type specifier but
// not as a full member-access codegen target beyond what StructRef parses;
// unions and bitfields are not supported.
type Struct struct {
	Name   string
	Fields []*Decl
	Coord  Coord
}

func (n *Struct) Pos() Coord  { return n.Coord }
func (*Struct) typeNode() {}

// Enumerator is one `NAME` or `NAME = value` member of an Enum.
type Enumerator struct {
	Name  string
	Value Expr // nil if the enumerator has no explicit value
	Coord Coord
}

func (n *Enumerator) Pos() Coord { return n.Coord }

// Enum is a (possibly anonymous) enum specifier.
type Enum struct {
	Name        string
	Enumerators []*Enumerator
	Coord       Coord
}

func (n *Enum) Pos() Coord  { return n.Coord }
func (*Enum) typeNode() {}
