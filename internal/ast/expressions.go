package ast

// Constant is a literal. TypeTag is one of "int", "float", "char", "string"
// (mirroring the lexer's literal kinds); Literal is the raw source text,
// quotes and suffixes included, exactly as the lexer produced it.
type Constant struct {
	TypeTag string
	Literal string
	Coord   Coord
}

func (n *Constant) Pos() Coord { return n.Coord }
func (*Constant) exprNode()    {}

// ID is a bare identifier reference.
type ID struct {
	Name  string
	Coord Coord
}

func (n *ID) Pos() Coord { return n.Coord }
func (*ID) exprNode()    {}

// BinaryOp is `Left Op Right`; Op is the literal source operator text,
// e.g. "+", "<=".
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
	Coord Coord
}

func (n *BinaryOp) Pos() Coord { return n.Coord }
func (*BinaryOp) exprNode()    {}

// UnaryOp is a prefix or postfix unary operation. Prefix operators use the
// raw operator text ("-", "!", "++"); postfix ++/-- are encoded as "p++"
// and "p--".
type UnaryOp struct {
	Op      string
	Operand Expr
	Coord   Coord
}

func (n *UnaryOp) Pos() Coord { return n.Coord }
func (*UnaryOp) exprNode()    {}

// TernaryOp is `Cond ? Then : Else`.
type TernaryOp struct {
	Cond  Expr
	Then  Expr
	Else  Expr
	Coord Coord
}

func (n *TernaryOp) Pos() Coord { return n.Coord }
func (*TernaryOp) exprNode()    {}

// Assignment is `LValue Op RValue`; Op is "=" or one of the compound forms
// ("+=", "-=", ...), which parse but are rejected by the translator.
type Assignment struct {
	Op     string
	LValue Expr
	RValue Expr
	Coord  Coord
}

func (n *Assignment) Pos() Coord { return n.Coord }
func (*Assignment) exprNode()    {}

// FuncCall is `Callee(Args)`. Callee is always an *ID: the subset has no
// function pointers or computed callees.
type FuncCall struct {
	Callee *ID
	Args   *ExprList
	Coord  Coord
}

func (n *FuncCall) Pos() Coord { return n.Coord }
func (*FuncCall) exprNode()    {}

// ArrayRef is `Array[Index]`.
type ArrayRef struct {
	Array Expr
	Index Expr
	Coord Coord
}

func (n *ArrayRef) Pos() Coord { return n.Coord }
func (*ArrayRef) exprNode()    {}

// StructRef is `Base.Field` or `Base->Field`; Op records which.
type StructRef struct {
	Base  Expr
	Op    string // "." or "->"
	Field string
	Coord Coord
}

func (n *StructRef) Pos() Coord { return n.Coord }
func (*StructRef) exprNode()    {}

// ExprList is a comma-separated expression list: call arguments, or the
// top-level comma operator.
type ExprList struct {
	Exprs []Expr
	Coord Coord
}

func (n *ExprList) Pos() Coord { return n.Coord }
func (*ExprList) exprNode()    {}

// InitList is a brace-enclosed initializer list: `{ 1, 2, 3 }`.
type InitList struct {
	Exprs []Expr
	Coord Coord
}

func (n *InitList) Pos() Coord { return n.Coord }
func (*InitList) exprNode()    {}
