// Package codegen renders a quadruple Program as textual 32-bit x86 GAS
// assembly in a MinGW-flavored dialect: .def/.scl/.type directives, CFI
// annotations, and .rdata string pooling.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chinanuke/bwcc/internal/errors"
	"github.com/chinanuke/bwcc/internal/ir"
	"github.com/chinanuke/bwcc/internal/token"
)

// condSuffix maps the jump-condition codes the translator emits ("g",
// "l", "eq", ...) to the GAS mnemonic suffix.
var condSuffix = map[string]string{
	"g": "g", "l": "l", "eq": "e", "ge": "ge", "le": "le", "ne": "ne",
}

type Assembler struct {
	prog     *ir.Program
	filename string
	out      strings.Builder

	cfiCounter int
}

// Generate renders prog as a complete assembly file.
func Generate(prog *ir.Program, filename string) (string, error) {
	a := &Assembler{prog: prog, filename: filename}
	if err := a.run(); err != nil {
		return "", err
	}
	return a.out.String(), nil
}

func (a *Assembler) w(format string, args ...any) {
	fmt.Fprintf(&a.out, format, args...)
}

func (a *Assembler) run() error {
	a.w("\t.file\t%q\n", a.filename)

	funcQuads := a.splitByFunction()
	for _, name := range a.prog.Funcs {
		if err := a.genFunction(name, funcQuads[name]); err != nil {
			return err
		}
		a.genConstants(name)
	}
	a.genGlobals()

	a.w("\t.ident\t\"BWCC: 1.0\"\n")
	a.w("\t.def\t_printf;\t.scl\t2;\t.type\t32;\t.endef\n")
	return nil
}

// splitByFunction groups the quadruple stream's func..endfunc spans by
// function name, preserving order within each span.
func (a *Assembler) splitByFunction() map[string][]ir.Quad {
	out := make(map[string][]ir.Quad)
	var name string
	var body []ir.Quad
	for _, q := range a.prog.Quads {
		switch q.Op {
		case "func":
			name = q.Arg1
			body = nil
		case "endfunc":
			out[name] = body
		default:
			body = append(body, q)
		}
	}
	return out
}

func (a *Assembler) genFunction(name string, body []ir.Quad) error {
	table := a.prog.FuncTable[name]
	a.cfiCounter++
	n := a.cfiCounter

	a.w("\t.text\n")
	a.w("\t.globl\t_%s\n", name)
	a.w("\t.def\t_%s;\t.scl\t2;\t.type\t32;\t.endef\n", name)
	a.w("_%s:\n", name)
	a.w("LFB%d:\n", n)
	a.w("\t.cfi_startproc\n")
	a.w("\tpushl\t%%ebp\n")
	a.w("\t.cfi_def_cfa_offset 8\n")
	a.w("\t.cfi_offset 5, -8\n")
	a.w("\tmovl\t%%esp, %%ebp\n")
	a.w("\t.cfi_def_cfa_register 5\n")
	if table.StackSize > 0 {
		if name == "main" {
			a.w("\tandl\t$-16, %%esp\n")
		}
		a.w("\tsubl\t$%d, %%esp\n", table.StackSize)
	}
	if name == "main" {
		a.w("\tcall\t___main\n")
	}

	for _, q := range body {
		if err := a.genQuad(name, table, q); err != nil {
			return err
		}
	}

	a.w("Lret_%s:\n", name)
	if name == "main" {
		a.w("\tleave\n")
	} else {
		a.w("\tpopl\t%%ebp\n")
	}
	a.w("\t.cfi_restore 5\n")
	a.w("\t.cfi_def_cfa 4, 4\n")
	a.w("\tret\n")
	a.w("\t.cfi_endproc\n")
	a.w("LFE%d:\n", n)
	return nil
}

// genGlobals emits a .comm directive per file-scope variable, giving
// each one common (zero-initialized) storage sized to its declared
// width and element count.
func (a *Assembler) genGlobals() {
	names := a.prog.Globals.Names()
	if len(names) == 0 {
		return
	}
	for _, name := range names {
		sym, _ := a.prog.Globals.Lookup(name)
		a.w("\t.comm\t_%s, %d, %d\n", name, sym.Width*sym.Count, sym.Width)
	}
}

func (a *Assembler) genConstants(funcName string) {
	var labels []string
	for _, label := range a.prog.Constants.Labels() {
		if a.prog.Constants.Owner(label) == funcName {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return
	}
	a.w("\t.section .rdata,\"dr\"\n")
	for _, label := range labels {
		a.w("%s:\n", label)
		a.w("\t.ascii \"%s\\0\"\n", a.prog.Constants.Text(label))
	}
}

// operand renders an IR place as a GAS operand: an immediate, a frame
// offset relative to %esp, a pointer-typed address-of, or a data label
// for string constants and globals.
func (a *Assembler) operand(table *ir.SymbolTable, place string) string {
	switch {
	case strings.HasPrefix(place, "$"):
		return place
	case strings.HasPrefix(place, "&"):
		name := place[1:]
		if sym, ok := table.Lookup(name); ok {
			return fmt.Sprintf("%d(%%esp)", sym.Offset+table.StackSize)
		}
		return "_" + name
	case strings.HasPrefix(place, "LC"):
		return "$" + place
	default:
		if sym, ok := table.Lookup(place); ok {
			return fmt.Sprintf("%d(%%esp)", sym.Offset+table.StackSize)
		}
		if _, ok := a.prog.Globals.Lookup(place); ok {
			return "_" + place
		}
		return place
	}
}

// genQuad dispatches one quadruple to its instruction sequence. Binary
// arithmetic ops load the left operand into %eax (and the right one into
// %ecx where the instruction needs it in a register), compute, and store
// the result back to the destination's frame slot — the straightforward,
// unoptimized scheme a pedagogical one-pass code generator uses.
func (a *Assembler) genQuad(funcName string, table *ir.SymbolTable, q ir.Quad) error {
	switch q.Op {
	case "label":
		a.w("%s:\n", q.Result)
	case "j":
		a.w("\tjmp\t%s\n", q.Result)
	case "jg", "jl", "jge", "jle", "jne", "jeq":
		code := condSuffix[strings.TrimPrefix(q.Op, "j")]
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		a.w("\tcmpl\t%s, %%eax\n", a.operand(table, q.Arg2))
		a.w("\tj%s\t%s\n", code, q.Result)
	case "=":
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
	case "+", "-", "&", "|", "^":
		mnemonic := map[string]string{"+": "addl", "-": "subl", "&": "andl", "|": "orl", "^": "xorl"}[q.Op]
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		if q.Op == "-" {
			a.w("\tmovl\t%s, %%ecx\n", a.operand(table, q.Arg2))
			a.w("\tsubl\t%%ecx, %%eax\n")
		} else {
			a.w("\t%s\t%s, %%eax\n", mnemonic, a.operand(table, q.Arg2))
		}
		a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
	case "*":
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		a.w("\timull\t%s, %%eax\n", a.operand(table, q.Arg2))
		a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
	case "/":
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		a.w("\tcltd\n")
		a.w("\tmovl\t%s, %%ecx\n", a.operand(table, q.Arg2))
		a.w("\tidivl\t%%ecx\n")
		a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
	case "%":
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		a.w("\tcltd\n")
		a.w("\tmovl\t%s, %%ecx\n", a.operand(table, q.Arg2))
		a.w("\tidivl\t%%ecx\n")
		a.w("\tmovl\t%%edx, %s\n", a.operand(table, q.Result))
	case "<<", ">>":
		mnemonic := "sall"
		if q.Op == ">>" {
			mnemonic = "sarl"
		}
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		a.w("\tmovl\t%s, %%ecx\n", a.operand(table, q.Arg2))
		a.w("\t%s\t%%cl, %%eax\n", mnemonic)
		a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
	case "neg":
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg2))
		a.w("\tnegl\t%%eax\n")
		a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
	case "not":
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		a.w("\tnotl\t%%eax\n")
		a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
	case "=[]":
		a.w("\tmovl\t%s, %%ecx\n", a.operand(table, q.Arg2))
		base := a.operand(table, q.Arg1)
		a.w("\tmovl\t%s(%%ecx), %%eax\n", base)
		a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
	case "[]=":
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Result))
		a.w("\tmovl\t%s, %%ecx\n", a.operand(table, q.Arg2))
		base := a.operand(table, q.Arg1)
		a.w("\tmovl\t%%eax, %s(%%ecx)\n", base)
	case "=*":
		a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		a.w("\tmovl\t(%%eax), %%eax\n")
		a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
	case "param":
		i, _ := strconv.Atoi(q.Arg1)
		n, _ := strconv.Atoi(q.Result)
		off := (n - 1 - i) * 4
		dest := "(%esp)"
		if off != 0 {
			dest = fmt.Sprintf("%d(%%esp)", off)
		}
		val := a.operand(table, q.Arg2)
		if strings.HasPrefix(val, "$") {
			a.w("\tmovl\t%s, %s\n", val, dest)
		} else {
			a.w("\tmovl\t%s, %%eax\n", val)
			a.w("\tmovl\t%%eax, %s\n", dest)
		}
	case "call":
		a.w("\tcall\t_%s\n", q.Arg1)
		if q.Result != "" {
			a.w("\tmovl\t%%eax, %s\n", a.operand(table, q.Result))
		}
	case "return":
		if q.Arg1 != "" {
			a.w("\tmovl\t%s, %%eax\n", a.operand(table, q.Arg1))
		}
		a.w("\tjmp\tLret_%s\n", funcName)
	case "func", "endfunc":
		// handled by genFunction's span split
	default:
		return errors.NewCompilerError(errors.Translator, token.Position{}, fmt.Sprintf("code generator has no lowering for op %q", q.Op), "")
	}
	return nil
}
