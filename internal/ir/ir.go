// Package ir lowers a parsed translation unit into four-address quadruples,
// alongside the per-function symbol table and shared string-constant table
// the code generator needs to emit assembly.
package ir

import "fmt"

// Quad is a single four-address instruction: `Result = Arg1 Op Arg2`,
// with the operand slots reused for the non-arithmetic ops (func,
// endfunc, param, call, return, label, j, j<cond>).
type Quad struct {
	Op     string
	Arg1   string
	Arg2   string
	Result string
}

func (q Quad) String() string {
	switch q.Op {
	case "label":
		return q.Result + ":"
	case "j":
		return "j " + q.Result
	case "func", "endfunc", "param", "call", "return":
		parts := []string{q.Op}
		for _, s := range []string{q.Arg1, q.Arg2, q.Result} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		return fmt.Sprintf("%v", parts)
	default:
		if q.Arg2 != "" {
			return fmt.Sprintf("%s = %s %s %s", q.Result, q.Arg1, q.Op, q.Arg2)
		}
		if q.Arg1 != "" {
			return fmt.Sprintf("%s = %s %s", q.Result, q.Op, q.Arg1)
		}
		return fmt.Sprintf("%s %s", q.Op, q.Result)
	}
}

// widthOf maps a base type-specifier name to its byte width. Everything
// BWCC recognizes as an integer scalar (bool-like `char` included) is
// either 4 or 1 bytes wide; there is no 64-bit arithmetic in this subset.
func widthOf(names []string) int {
	for _, n := range names {
		if n == "char" {
			return 1
		}
	}
	return 4
}

// Symbol is one entry of a function's symbol table: a local variable or
// parameter with its eventual stack-frame offset.
type Symbol struct {
	Name   string
	Width  int
	Count  int // element count: 1 for scalars, >1 for arrays
	Offset int // set by FinalizeOffsets; 0 until then
}

// SymbolTable is an insertion-ordered map from name to Symbol. Order
// matters: FinalizeOffsets walks symbols in declaration order to assign
// stack offsets, so a plain Go map (unordered iteration) cannot be used
// here.
type SymbolTable struct {
	order []string
	byName map[string]*Symbol
	StackSize int
	outArgs int // bytes reserved for outgoing call arguments, grown by GrowOutArgs
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Declare adds a new symbol in insertion order. Re-declaring an existing
// name is a no-op that returns the existing symbol, so a second
// declaration of the same name in one function (including one in an
// inner block) shares the first declaration's slot.
func (t *SymbolTable) Declare(name string, width, count int) *Symbol {
	if s, ok := t.byName[name]; ok {
		return s
	}
	s := &Symbol{Name: name, Width: width, Count: count}
	t.byName[name] = s
	t.order = append(t.order, name)
	return s
}

func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// GrowOutArgs reserves n more bytes at the low end of the frame (nearest
// %esp) for a call's outgoing arguments. Every `param` quad the translator
// emits grows its function's table by one word, mirroring how a new temp
// grows it by the temp's width; the reservation is unnamed, so it never
// competes with a named symbol's declaration-order offset.
func (t *SymbolTable) GrowOutArgs(n int) {
	t.outArgs += n
}

// FinalizeOffsets assigns each symbol a negative %esp-relative offset by
// walking declaration order and rounding the running offset down to a
// multiple of 4 after subtracting each symbol's total size, then rounds
// the final frame size (named symbols plus any reserved outgoing-argument
// area) up to a multiple of 16.
func (t *SymbolTable) FinalizeOffsets() {
	running := 0
	for _, name := range t.order {
		s := t.byName[name]
		size := s.Width * s.Count
		running -= size
		if rem := running % 4; rem != 0 {
			running -= 4 + rem // round further negative to a multiple of 4
		}
		s.Offset = running
	}
	size := -running + t.outArgs
	if rem := size % 16; rem != 0 {
		size += 16 - rem
	}
	t.StackSize = size
}

// Names returns symbols in declaration order.
func (t *SymbolTable) Names() []string { return t.order }

// ConstantTable interns string literals, grouped by the function that
// first referenced them, for the code generator's per-function .rdata
// blocks.
type ConstantTable struct {
	order   []string
	byLabel map[string]string
	byText  map[string]string
	owner   map[string]string
	count   int
}

func NewConstantTable() *ConstantTable {
	return &ConstantTable{byLabel: make(map[string]string), byText: make(map[string]string), owner: make(map[string]string)}
}

// Intern returns the label for text, defining a new one (owned by
// funcName) the first time text is seen. Repeated identical literals
// anywhere in the unit share one label.
func (c *ConstantTable) Intern(funcName, text string) string {
	if label, ok := c.byText[text]; ok {
		return label
	}
	label := fmt.Sprintf("LC%d", c.count)
	c.count++
	c.byLabel[label] = text
	c.byText[text] = label
	c.owner[label] = funcName
	c.order = append(c.order, label)
	return label
}

func (c *ConstantTable) Text(label string) string  { return c.byLabel[label] }
func (c *ConstantTable) Owner(label string) string { return c.owner[label] }
func (c *ConstantTable) Labels() []string          { return c.order }

// Program is the full output of Translate: the quadruple stream plus
// every function's finalized symbol table and the shared constant table.
type Program struct {
	Quads     []Quad
	Funcs     []string // function names, in definition order
	FuncTable map[string]*SymbolTable
	Constants *ConstantTable
	Globals   *SymbolTable
}
