// Package ast defines the abstract syntax tree produced by the parser.
//
// Every node variant is a plain struct rather than a class hierarchy;
// the translator dispatches over these with a type switch. All nodes
// embed a Coord so diagnostics can always point back into the source.
package ast

import "github.com/chinanuke/bwcc/internal/token"

// Coord is the (file, line, column) triple every node carries.
type Coord = token.Position

// Node is implemented by every AST node.
type Node interface {
	Pos() Coord
}

// Type is implemented by the type-chain node variants (IdentifierType,
// TypeDecl, PtrDecl, ArrayDecl, FuncDecl, Struct, Enum).
type Type interface {
	Node
	typeNode()
}

// Stmt is implemented by statement node variants.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression node variants.
type Expr interface {
	Node
	exprNode()
}

// ExternalDecl is implemented by top-level declarations admitted into a
// FileAST: Decl, Typedef and FuncDef.
type ExternalDecl interface {
	Node
	externalDeclNode()
}

// FileAST is the AST root: a translation unit as a list of external
// declarations.
type FileAST struct {
	Decls []ExternalDecl
}

func (f *FileAST) Pos() Coord {
	if len(f.Decls) == 0 {
		return Coord{}
	}
	return f.Decls[0].Pos()
}
