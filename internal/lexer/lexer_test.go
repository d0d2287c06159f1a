package lexer

import (
	"testing"

	"github.com/chinanuke/bwcc/internal/token"
)

func kinds(l *Lexer) []token.Kind {
	var out []token.Kind
	for {
		tok := l.NextToken()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestNextTokenKeywordsAndPunctuation(t *testing.T) {
	input := `int main() { return 0; }`
	l := New(input)

	want := []token.Kind{
		token.INT, token.IDENT, token.LPAREN, token.RPAREN,
		token.LBRACE, token.RETURN, token.INT_CONST, token.SEMI,
		token.RBRACE, token.EOF,
	}
	got := kinds(l)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i, k := range want {
		if got[i] != k {
			t.Errorf("token %d = %s, want %s", i, got[i], k)
		}
	}
}

func TestOperatorsLongestMatch(t *testing.T) {
	input := `<<= << <= < = == -- - ->`
	l := New(input)
	want := []token.Kind{
		token.LSHIFTEQUAL, token.LSHIFT, token.LE, token.LT,
		token.EQUALS, token.EQ, token.MINUSMINUS, token.MINUS, token.ARROW,
		token.EOF,
	}
	got := kinds(l)
	for i, k := range want {
		if i >= len(got) || got[i] != k {
			t.Fatalf("token %d = %v, want %s", i, got, k)
		}
	}
}

func TestIntegerSuffixConsumedGreedily(t *testing.T) {
	l := New(`123ullLL`)
	tok := l.NextToken()
	if tok.Kind != token.INT_CONST || tok.Lexeme != "123ullLL" {
		t.Fatalf("got %v", tok)
	}
}

func TestFloatConstant(t *testing.T) {
	for _, in := range []string{"3.14", "3.", ".5", "1e10", "1.5e-3f"} {
		l := New(in)
		tok := l.NextToken()
		if tok.Kind != token.FLOAT_CONST {
			t.Errorf("%q: got kind %s, want FLOAT_CONST", in, tok.Kind)
		}
	}
}

func TestCharConstant(t *testing.T) {
	l := New(`'a'`)
	tok := l.NextToken()
	if tok.Kind != token.CHAR_CONST || tok.Lexeme != "'a'" {
		t.Fatalf("got %v", tok)
	}
}

func TestEmptyCharConstantIsError(t *testing.T) {
	l := New(`''`)
	tok := l.NextToken()
	if tok.Kind != token.ILLEGAL {
		t.Fatalf("got %v, want ILLEGAL", tok)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("errors = %v, want 1", l.Errors())
	}
}

func TestStringLiteralNoEscapeProcessing(t *testing.T) {
	l := New(`"a\nb"`)
	tok := l.NextToken()
	if tok.Kind != token.STRING_LITERAL {
		t.Fatalf("got %v", tok)
	}
	if tok.Lexeme != `"a\nb"` {
		t.Fatalf("lexeme = %q, want literal backslash-n preserved", tok.Lexeme)
	}
}

func TestIllegalCharacterSkipsOne(t *testing.T) {
	l := New("int $x;")
	_ = l.NextToken() // int
	tok := l.NextToken()
	if tok.Kind != token.ILLEGAL {
		t.Fatalf("got %v, want ILLEGAL", tok)
	}
	next := l.NextToken()
	if next.Kind != token.IDENT || next.Lexeme != "x" {
		t.Fatalf("got %v, want identifier x after skipping illegal char", next)
	}
}

// scopeStub is a minimal ScopeResolver used to test the typedef/identifier
// feedback loop without a real parser attached.
type scopeStub struct {
	typeNames map[string]bool
	braces    []string
}

func (s *scopeStub) OnLBrace() { s.braces = append(s.braces, "{") }
func (s *scopeStub) OnRBrace() { s.braces = append(s.braces, "}") }
func (s *scopeStub) IsTypeName(name string) bool { return s.typeNames[name] }

func TestTypedefDisambiguation(t *testing.T) {
	resolver := &scopeStub{typeNames: map[string]bool{"T": true}}
	l := New(`T a;`, WithResolver(resolver))

	tok := l.NextToken()
	if tok.Kind != token.TYPEID || tok.Lexeme != "T" {
		t.Fatalf("got %v, want TYPEID(T)", tok)
	}

	resolver.typeNames["T"] = false
	l2 := New(`T b;`, WithResolver(resolver))
	tok2 := l2.NextToken()
	if tok2.Kind != token.IDENT {
		t.Fatalf("got %v, want IDENT once T is shadowed", tok2)
	}
}

func TestBraceCallbacksFireBeforeTokenReturned(t *testing.T) {
	resolver := &scopeStub{typeNames: map[string]bool{}}
	l := New(`{}`, WithResolver(resolver))
	_ = l.NextToken()
	_ = l.NextToken()
	if len(resolver.braces) != 2 {
		t.Fatalf("braces = %v, want 2 callbacks", resolver.braces)
	}
}

func TestColumnCountsRunesNotBytes(t *testing.T) {
	// "é" is two bytes but one rune, so x sits at column 3, not 4.
	l := New("é x")
	_ = l.NextToken()
	tok := l.NextToken()
	if tok.Pos.Line != 1 || tok.Pos.Column != 3 {
		t.Fatalf("pos = %+v", tok.Pos)
	}
}
