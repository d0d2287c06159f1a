package cmd

import (
	"fmt"
	"os"

	"github.com/chinanuke/bwcc/internal/ast"
	"github.com/chinanuke/bwcc/internal/errors"
	"github.com/chinanuke/bwcc/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a source file and list its top-level declarations",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	file, err := parser.Parse(string(content), filename)
	if err != nil {
		if ce, ok := err.(*errors.CompilerError); ok {
			fmt.Fprintln(os.Stderr, ce.Format(true))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return fmt.Errorf("parsing failed")
	}

	for _, decl := range file.Decls {
		dumpExternalDecl(decl, 0)
	}
	return nil
}

func indent(depth int) string {
	s := ""
	for i := 0; i < depth; i++ {
		s += "  "
	}
	return s
}

func dumpExternalDecl(d ast.ExternalDecl, depth int) {
	switch n := d.(type) {
	case *ast.FuncDef:
		fmt.Printf("%sFuncDef %s\n", indent(depth), n.Decl.Name)
	case *ast.Decl:
		fmt.Printf("%sDecl %s\n", indent(depth), n.Name)
	case *ast.Typedef:
		fmt.Printf("%sTypedef %s\n", indent(depth), n.Name)
	default:
		fmt.Printf("%s%T\n", indent(depth), d)
	}
}
