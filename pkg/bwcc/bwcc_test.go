package bwcc

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	_ = v
}

// The following mirror the reference scenarios: an empty program, a
// single local with a return, nested loops printing a multiplication
// table, if/else, postfix vs prefix increment, and typedef-as-identifier
// disambiguation.

func TestCompileEmptyProgram(t *testing.T) {
	asm, err := Compile(``, "empty.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, asm)
}

func TestCompileSingleLocalReturn(t *testing.T) {
	asm, err := Compile(`
int main() {
    int x;
    x = 42;
    return x;
}
`, "single_local.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, asm)
}

func TestCompileMultiplicationTable(t *testing.T) {
	asm, err := Compile(`
int printf();

int main() {
    int i, j;
    for (i = 1; i <= 9; i = i + 1) {
        for (j = 1; j <= 9; j = j + 1) {
            printf("%d*%d=%d\t", i, j, i * j);
        }
        printf("\n");
    }
    return 0;
}
`, "times_table.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, asm)
}

func TestCompileIfElse(t *testing.T) {
	asm, err := Compile(`
int main() {
    int a;
    a = 5;
    if (a > 0) {
        return 1;
    } else {
        return -1;
    }
}
`, "if_else.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, asm)
}

func TestCompilePostfixVsPrefix(t *testing.T) {
	asm, err := Compile(`
int main() {
    int i;
    i = 0;
    i++;
    ++i;
    return i;
}
`, "incr.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, asm)
}

func TestCompileTypedefAsIdentifier(t *testing.T) {
	asm, err := Compile(`
typedef int length;

int f(int length) {
    return length * 2;
}

int main() {
    length x;
    x = 10;
    return f(x);
}
`, "typedef_shadow.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snaps.MatchSnapshot(t, asm)
}

func TestCompileParseErrorSurfacesCaret(t *testing.T) {
	_, err := Compile(`int main() { return }`, "bad.c")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "^") {
		t.Fatalf("expected a caret under the error column:\n%s", err)
	}
}
