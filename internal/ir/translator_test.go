package ir

import (
	"strconv"
	"strings"
	"testing"

	"github.com/chinanuke/bwcc/internal/parser"
)

func translateSource(t *testing.T, src string) *Program {
	t.Helper()
	file, err := parser.Parse(src, "test.c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := Translate(file, src)
	if err != nil {
		t.Fatalf("translate error: %v", err)
	}
	return prog
}

func quadString(prog *Program) string {
	var sb strings.Builder
	for _, q := range prog.Quads {
		sb.WriteString(q.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestTranslateEmptyMain(t *testing.T) {
	prog := translateSource(t, `int main() { return 0; }`)
	if len(prog.Funcs) != 1 || prog.Funcs[0] != "main" {
		t.Fatalf("expected one function named main, got %v", prog.Funcs)
	}
	if prog.Quads[0].Op != "func" {
		t.Fatalf("expected first quad to open the function, got %v", prog.Quads[0])
	}
	if prog.Quads[len(prog.Quads)-1].Op != "endfunc" {
		t.Fatalf("expected last quad to close the function, got %v", prog.Quads[len(prog.Quads)-1])
	}
}

func TestTranslateArithmeticProducesTemps(t *testing.T) {
	prog := translateSource(t, `
int f(int a, int b) {
    int c;
    c = a + b * 2;
    return c;
}
`)
	out := quadString(prog)
	if !strings.Contains(out, "*") || !strings.Contains(out, "+") {
		t.Fatalf("expected + and * quads in output:\n%s", out)
	}
	table := prog.FuncTable["f"]
	if _, ok := table.Lookup("c"); !ok {
		t.Fatal("expected c to be declared in f's symbol table")
	}
	for _, temp := range []string{"_t1", "_t2"} {
		if _, ok := table.Lookup(temp); !ok {
			t.Fatalf("expected temp %s to be declared in f's symbol table:\n%s", temp, out)
		}
	}
}

func TestTranslateCallEmitsReverseParams(t *testing.T) {
	prog := translateSource(t, `
int g(int x, int y, int z) { return x; }
int main() {
    return g(1, 2, 3);
}
`)
	var params []Quad
	for _, q := range prog.Quads {
		if q.Op == "param" {
			params = append(params, q)
		}
	}
	if len(params) != 3 {
		t.Fatalf("expected 3 param quads, got %d", len(params))
	}
	if params[0].Arg2 != "$3" || params[2].Arg2 != "$1" {
		t.Fatalf("expected params emitted last-to-first, got %v", params)
	}
	for idx, q := range params {
		if q.Arg1 != strconv.Itoa(idx) {
			t.Fatalf("param %d: expected reverse index %d, got %q", idx, idx, q.Arg1)
		}
		if q.Result != "3" {
			t.Fatalf("param %d: expected total count 3, got %q", idx, q.Result)
		}
	}
}

func TestTranslateWhileLoopControlFlow(t *testing.T) {
	prog := translateSource(t, `
int main() {
    int i;
    i = 0;
    while (i < 10) {
        i = i + 1;
    }
    return i;
}
`)
	var sawRelational bool
	for _, q := range prog.Quads {
		if q.Op == "jl" {
			sawRelational = true
		}
	}
	if !sawRelational {
		t.Fatalf("expected a jl quad for the loop condition:\n%s", quadString(prog))
	}
}

func TestTranslateShortCircuitAnd(t *testing.T) {
	prog := translateSource(t, `
int main() {
    int a, b;
    if (a > 0 && b > 0) {
        return 1;
    }
    return 0;
}
`)
	// Short-circuit lowering for && must branch on the left operand
	// before ever evaluating the right one; there is no boolean "and"
	// quad op in the stream.
	for _, q := range prog.Quads {
		if q.Op == "&&" {
			t.Fatalf("did not expect a literal && quad, short-circuit lowering should use branches")
		}
	}
}

func TestTranslateRejectsCompoundAssignment(t *testing.T) {
	file, err := parser.Parse(`int main() { int a; a += 1; return a; }`, "test.c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := Translate(file, ""); err == nil {
		t.Fatal("expected compound assignment to be rejected by the translator")
	}
}

func TestTranslateDoWhileRunsBodyOnce(t *testing.T) {
	prog := translateSource(t, `
int main() {
    int i;
    i = 0;
    do {
        i = i + 1;
    } while (i < 3);
    return i;
}
`)
	if !strings.Contains(quadString(prog), "jl") {
		t.Fatalf("expected condition test with jl:\n%s", quadString(prog))
	}
	addAt, jlAt := -1, -1
	for i, q := range prog.Quads {
		if q.Op == "+" && addAt == -1 {
			addAt = i
		}
		if q.Op == "jl" {
			jlAt = i
		}
	}
	if addAt == -1 || jlAt == -1 || addAt > jlAt {
		t.Fatalf("expected the body's + quad before the bottom jl test:\n%s", quadString(prog))
	}
}

func TestSymbolTableOffsetsRoundToFrameAlignment(t *testing.T) {
	table := NewSymbolTable()
	table.Declare("a", 4, 1)
	table.Declare("b", 1, 1)
	table.FinalizeOffsets()
	if table.StackSize%16 != 0 {
		t.Fatalf("expected stack size rounded to 16, got %d", table.StackSize)
	}
	symA, _ := table.Lookup("a")
	symB, _ := table.Lookup("b")
	if symA.Offset >= 0 || symB.Offset >= 0 {
		t.Fatalf("expected negative offsets, got a=%d b=%d", symA.Offset, symB.Offset)
	}
	if symA.Offset%4 != 0 || symB.Offset%4 != 0 {
		t.Fatalf("expected offsets rounded to a multiple of 4, got a=%d b=%d", symA.Offset, symB.Offset)
	}
}

func TestConstantTableInternsSharedLiterals(t *testing.T) {
	c := NewConstantTable()
	l1 := c.Intern("main", "hello")
	l2 := c.Intern("other", "hello")
	if l1 != l2 {
		t.Fatalf("expected identical literals to share a label, got %q and %q", l1, l2)
	}
	if c.Owner(l1) != "main" {
		t.Fatalf("expected the label to stay owned by the function that first interned it")
	}
}
