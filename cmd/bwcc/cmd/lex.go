package cmd

import (
	"fmt"
	"os"

	"github.com/chinanuke/bwcc/internal/lexer"
	"github.com/chinanuke/bwcc/internal/token"
	"github.com/spf13/cobra"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file and print the token stream",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	l := lexer.New(string(content), lexer.WithFilename(filename))
	for {
		tok := l.NextToken()
		fmt.Println(tok.String())
		if tok.Kind == token.EOF {
			break
		}
	}
	if errs := l.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return fmt.Errorf("lexing failed with %d error(s)", len(errs))
	}
	return nil
}
