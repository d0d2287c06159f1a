package codegen

import (
	"strings"
	"testing"

	"github.com/chinanuke/bwcc/internal/ir"
	"github.com/chinanuke/bwcc/internal/parser"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	file, err := parser.Parse(src, "test.c")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := ir.Translate(file, src)
	if err != nil {
		t.Fatalf("translate error: %v", err)
	}
	asm, err := Generate(prog, "test.c")
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return asm
}

func TestGenerateMainHasToolchainBoilerplate(t *testing.T) {
	asm := generate(t, `
int main() {
    int a;
    a = 1;
    return a;
}
`)
	for _, want := range []string{
		"\t.file",
		"_main:",
		".cfi_startproc",
		"andl\t$-16, %esp",
		"call\t___main",
		".cfi_endproc",
		"_printf;",
	} {
		if !strings.Contains(asm, want) {
			t.Fatalf("expected assembly to contain %q:\n%s", want, asm)
		}
	}
	if i, j := strings.Index(asm, "andl\t$-16, %esp"), strings.Index(asm, "subl\t$"); i == -1 || j == -1 || i > j {
		t.Fatalf("expected andl to precede subl:\n%s", asm)
	}
}

func TestGenerateEmptyMainHasNoStackAlignment(t *testing.T) {
	asm := generate(t, `int main() { return 0; }`)
	if strings.Contains(asm, "andl\t$-16, %esp") {
		t.Fatalf("expected no andl for a zero-stacksize main:\n%s", asm)
	}
	if strings.Contains(asm, "subl\t$") {
		t.Fatalf("expected no subl for a zero-stacksize main:\n%s", asm)
	}
	if !strings.Contains(asm, "call\t___main") {
		t.Fatalf("expected call to ___main regardless of stacksize:\n%s", asm)
	}
}

func TestGenerateNonMainHasNoMainPrologue(t *testing.T) {
	asm := generate(t, `
int add(int a, int b) { return a + b; }
int main() { return add(1, 2); }
`)
	if strings.Count(asm, "call\t___main") != 1 {
		t.Fatalf("expected exactly one call to ___main:\n%s", asm)
	}
	if !strings.Contains(asm, "_add:") {
		t.Fatalf("expected a label for add:\n%s", asm)
	}
}

func TestGenerateStringConstantSection(t *testing.T) {
	asm := generate(t, `
int printf();
int main() {
    printf("hello\n");
    return 0;
}
`)
	if !strings.Contains(asm, `.section .rdata,"dr"`) {
		t.Fatalf("expected a .rdata section:\n%s", asm)
	}
	if !strings.Contains(asm, "LC0:") {
		t.Fatalf("expected a string constant label:\n%s", asm)
	}
}

func TestGenerateArithmeticMnemonics(t *testing.T) {
	asm := generate(t, `
int main() {
    int a;
    a = 1 & 2 | 3 ^ 4;
    a = a << 1;
    a = a >> 1;
    a = a % 3;
    return a;
}
`)
	for _, want := range []string{"andl", "orl", "xorl", "sall", "sarl", "idivl"} {
		if !strings.Contains(asm, want) {
			t.Fatalf("expected mnemonic %q in assembly:\n%s", want, asm)
		}
	}
}
