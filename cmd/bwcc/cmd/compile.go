package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chinanuke/bwcc/internal/errors"
	"github.com/chinanuke/bwcc/pkg/bwcc"
	"github.com/spf13/cobra"
)

var (
	outputFile   string
	ccToolchain  string
	compileVerbose bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a source file to x86 assembly",
	Long: `Compile translates a source file through the full pipeline (lex, parse,
translate to quadruples, generate code) and writes the resulting 32-bit
x86 GAS assembly.

Examples:
  # Compile to <input>.s
  bwcc compile main.c

  # Compile and then assemble+link with an external C toolchain
  bwcc compile main.c --cc gcc -o main`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: <input>.s, or the linked binary when --cc is set)")
	compileCmd.Flags().StringVar(&ccToolchain, "cc", "", "shell out to this C compiler to assemble and link the generated .s file")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func runCompile(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	asm, err := bwcc.Compile(string(content), filename)
	if err != nil {
		if ce, ok := err.(*errors.CompilerError); ok {
			fmt.Fprintln(os.Stderr, ce.Format(true))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return fmt.Errorf("compilation failed")
	}

	asmFile := outputFile
	if asmFile == "" || ccToolchain != "" {
		asmFile = replaceExt(filename, ".s")
	}
	if err := os.WriteFile(asmFile, []byte(asm), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", asmFile, err)
	}
	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Assembly written to %s\n", asmFile)
	}

	if ccToolchain == "" {
		if !compileVerbose {
			fmt.Printf("Compiled %s -> %s\n", filename, asmFile)
		}
		return nil
	}

	binOut := outputFile
	if binOut == "" {
		binOut = replaceExt(filename, "")
	}
	ccArgs := []string{asmFile, "-o", binOut}
	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Running %s %s\n", ccToolchain, strings.Join(ccArgs, " "))
	}
	ccCmd := exec.Command(ccToolchain, ccArgs...)
	ccCmd.Stdout = os.Stdout
	ccCmd.Stderr = os.Stderr
	if err := ccCmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", ccToolchain, err)
	}
	fmt.Printf("Compiled %s -> %s\n", filename, binOut)
	return nil
}

func replaceExt(filename, newExt string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if newExt == "" {
		return base
	}
	return base + newExt
}
