// Package bwcc is the library facade over the compiler pipeline: parse,
// translate to quadruples, assemble to x86 GAS text. The CLI host and any
// embedding Go program should go through this package rather than reach
// into internal/ directly.
package bwcc

import (
	"github.com/chinanuke/bwcc/internal/ast"
	"github.com/chinanuke/bwcc/internal/codegen"
	"github.com/chinanuke/bwcc/internal/ir"
	"github.com/chinanuke/bwcc/internal/parser"
)

// Parse turns source into an AST. filename is used only for diagnostics.
func Parse(source, filename string) (*ast.FileAST, error) {
	return parser.Parse(source, filename)
}

// Translate lowers an AST into a quadruple Program.
func Translate(file *ast.FileAST, source string) (*ir.Program, error) {
	return ir.Translate(file, source)
}

// Assemble renders a quadruple Program as x86 GAS assembly text.
func Assemble(prog *ir.Program, filename string) (string, error) {
	return codegen.Generate(prog, filename)
}

// Compile runs the full pipeline and returns the generated assembly.
func Compile(source, filename string) (string, error) {
	file, err := Parse(source, filename)
	if err != nil {
		return "", err
	}
	prog, err := Translate(file, source)
	if err != nil {
		return "", err
	}
	return Assemble(prog, filename)
}
