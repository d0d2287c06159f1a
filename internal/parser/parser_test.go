package parser

import (
	"testing"

	"github.com/chinanuke/bwcc/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.FileAST {
	t.Helper()
	p := New(src, "test.c")
	file := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return file
}

func TestParseEmptyProgram(t *testing.T) {
	file := mustParse(t, "")
	if len(file.Decls) != 0 {
		t.Fatalf("expected no decls, got %d", len(file.Decls))
	}
}

func TestParseFunctionDefinition(t *testing.T) {
	file := mustParse(t, `
int add(int a, int b) {
    return a + b;
}
`)
	if len(file.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(file.Decls))
	}
	fn, ok := file.Decls[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("expected *ast.FuncDef, got %T", file.Decls[0])
	}
	if fn.Decl.Name != "add" {
		t.Fatalf("expected function named add, got %q", fn.Decl.Name)
	}
	funcDecl, ok := fn.Decl.Type.(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected FuncDecl, got %T", fn.Decl.Type)
	}
	if len(funcDecl.Params.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(funcDecl.Params.Params))
	}
	if len(fn.Body.Items) != 1 {
		t.Fatalf("expected 1 body item, got %d", len(fn.Body.Items))
	}
	if _, ok := fn.Body.Items[0].(*ast.Return); !ok {
		t.Fatalf("expected *ast.Return, got %T", fn.Body.Items[0])
	}
}

func TestParseMultiDeclarator(t *testing.T) {
	file := mustParse(t, `int main() { int a, b = 2, *p; return 0; }`)
	fn := file.Decls[0].(*ast.FuncDef)
	dl, ok := fn.Body.Items[0].(*ast.DeclList)
	if !ok {
		t.Fatalf("expected *ast.DeclList, got %T", fn.Body.Items[0])
	}
	if len(dl.Decls) != 3 {
		t.Fatalf("expected 3 declarators, got %d", len(dl.Decls))
	}
	if _, ok := dl.Decls[2].Type.(*ast.PtrDecl); !ok {
		t.Fatalf("expected third declarator to be a pointer, got %T", dl.Decls[2].Type)
	}
}

func TestParsePointerToArrayPrecedence(t *testing.T) {
	// `*a[3]` is "array of 3 pointers to int": the outer node is the
	// array, the inner node (next to the terminal TypeDecl) is the
	// pointer.
	file := mustParse(t, `int main() { int *a[3]; return 0; }`)
	fn := file.Decls[0].(*ast.FuncDef)
	decl := fn.Body.Items[0].(*ast.Decl)
	arr, ok := decl.Type.(*ast.ArrayDecl)
	if !ok {
		t.Fatalf("expected outer ArrayDecl, got %T", decl.Type)
	}
	if _, ok := arr.Inner.(*ast.PtrDecl); !ok {
		t.Fatalf("expected inner PtrDecl, got %T", arr.Inner)
	}
}

func TestTypedefDisambiguationInParser(t *testing.T) {
	file := mustParse(t, `
typedef int myint;
myint x;
`)
	if len(file.Decls) != 2 {
		t.Fatalf("expected 2 decls, got %d", len(file.Decls))
	}
	if _, ok := file.Decls[0].(*ast.Typedef); !ok {
		t.Fatalf("expected first decl to be a Typedef, got %T", file.Decls[0])
	}
	decl, ok := file.Decls[1].(*ast.Decl)
	if !ok {
		t.Fatalf("expected second decl to be a Decl, got %T", file.Decls[1])
	}
	if decl.Name != "x" {
		t.Fatalf("expected declarator named x, got %q", decl.Name)
	}
}

func TestTypedefNameShadowedByLocalAsIdentifier(t *testing.T) {
	// Once `myint` is a local parameter name, the lexer must classify
	// it as IDENT inside that function's scope even though it is a
	// typedef name at file scope.
	file := mustParse(t, `
typedef int myint;
int f(int myint) {
    return myint + 1;
}
`)
	if len(file.Decls) != 2 {
		t.Fatalf("expected 2 decls, got %d", len(file.Decls))
	}
	fn, ok := file.Decls[1].(*ast.FuncDef)
	if !ok {
		t.Fatalf("expected FuncDef, got %T", file.Decls[1])
	}
	ret, ok := fn.Body.Items[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", fn.Body.Items[0])
	}
	bin, ok := ret.Expr.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected BinaryOp, got %T", ret.Expr)
	}
	if _, ok := bin.Left.(*ast.ID); !ok {
		t.Fatalf("expected parameter reference to parse as ID, got %T", bin.Left)
	}
}

func TestParseIfElseWhileForDoWhile(t *testing.T) {
	mustParse(t, `
int main() {
    int i;
    for (i = 0; i < 10; i = i + 1) {
        if (i < 5) {
            continue;
        } else {
            break;
        }
    }
    while (i > 0) {
        i = i - 1;
    }
    do {
        i = i + 1;
    } while (i < 1);
    return 0;
}
`)
}

func TestParseStructAndEnum(t *testing.T) {
	file := mustParse(t, `
struct point { int x; int y; };
enum color { RED, GREEN = 5, BLUE };
int main() { return 0; }
`)
	// A struct or enum specifier with no declarator yields no external
	// declaration, so only main is left.
	if len(file.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(file.Decls))
	}
}

func TestParseErrorOnRedeclareTypedefAsIdentifier(t *testing.T) {
	p := New(`
typedef int T;
int T;
`, "test.c")
	p.ParseProgram()
	if p.Err() == nil {
		t.Fatal("expected a redeclaration error")
	}
}

func TestParsePostfixVsPrefixIncrement(t *testing.T) {
	file := mustParse(t, `int main() { int i; i++; ++i; return i; }`)
	fn := file.Decls[0].(*ast.FuncDef)
	post := fn.Body.Items[1].(*ast.ExprStmt).Expr.(*ast.UnaryOp)
	if post.Op != "p++" {
		t.Fatalf("expected postfix op p++, got %q", post.Op)
	}
	pre := fn.Body.Items[2].(*ast.ExprStmt).Expr.(*ast.UnaryOp)
	if pre.Op != "++" {
		t.Fatalf("expected prefix op ++, got %q", pre.Op)
	}
}
