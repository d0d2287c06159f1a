// Package errors formats BWCC compiler diagnostics with source context:
// a line/column header, the offending source line, and a caret pointing
// at the error column. Every phase (lexer, parser, translator, code
// generator) surfaces failures as a *CompilerError rather than
// panicking: the first error aborts compilation, no recovery is
// attempted.
package errors

import (
	"fmt"
	"strings"

	"github.com/chinanuke/bwcc/internal/token"
)

// Phase identifies which pipeline stage raised the error.
type Phase string

const (
	Lexical    Phase = "lexical"
	Syntactic  Phase = "syntactic"
	Semantic   Phase = "semantic"
	Translator Phase = "translator"
)

// CompilerError is a single diagnostic with enough context to render a
// caret under the offending column.
type CompilerError struct {
	Phase   Phase
	Message string
	Source  string
	Pos     token.Position
}

// NewCompilerError builds a CompilerError.
func NewCompilerError(phase Phase, pos token.Position, message, source string) *CompilerError {
	return &CompilerError{Phase: phase, Pos: pos, Message: message, Source: source}
}

// Error implements the error interface.
func (e *CompilerError) Error() string { return e.Format(false) }

// Format renders the error with a source line and caret indicator. When
// color is true, ANSI codes highlight the caret and message; the CLI host
// always formats with color on.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.Pos.File != "" {
		fmt.Fprintf(&sb, "%s error in %s:%d:%d\n", e.Phase, e.Pos.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s error at %d:%d\n", e.Phase, e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(prefix)+max(e.Pos.Column-1, 0)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func (e *CompilerError) sourceLine(line int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FormatAll renders a batch of errors, one per error, separated by a blank
// line. Every phase stops at its first error, and the CLI host formats
// that single error with Format directly rather than through FormatAll.
func FormatAll(errs []*CompilerError, color bool) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Format(color))
	}
	return strings.Join(parts, "\n\n")
}
