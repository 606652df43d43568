package lexer

import (
	"testing"

	"strait/internal/diag"
	"strait/internal/source"
	"strait/internal/token"
)

func tokenize(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ts", []byte(src))
	bag := diag.NewBag(16)
	toks := Tokenize(fs.Get(id), diag.BagReporter{Bag: bag})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeDeclaration(t *testing.T) {
	toks, bag := tokenize(t, "export const x: number = 42;")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []token.Kind{
		token.KwExport, token.KwConst, token.Ident, token.Colon,
		token.Ident, token.Assign, token.Number, token.Semicolon, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[6].Text != "42" {
		t.Fatalf("number text = %q, want 42", toks[6].Text)
	}
}

func TestTokenizeOperators(t *testing.T) {
	toks, bag := tokenize(t, "a === b !== c => ... <= >= && || | &")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []token.Kind{
		token.Ident, token.EqEqEq, token.Ident, token.BangEqEq, token.Ident,
		token.FatArrow, token.Ellipsis, token.LtEq, token.GtEq,
		token.AndAnd, token.OrOr, token.Pipe, token.Amp, token.EOF,
	}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, bag := tokenize(t, `const s = "a\nb";`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[3].Kind != token.String || toks[3].Text != "a\nb" {
		t.Fatalf("string token = %v %q", toks[3].Kind, toks[3].Text)
	}
}

func TestTokenizeComments(t *testing.T) {
	toks, bag := tokenize(t, "// line\n/* block */ const x = 1;")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[0].Kind != token.KwConst {
		t.Fatalf("first token = %v, want const", toks[0].Kind)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, bag := tokenize(t, `const s = "oops`)
	if !bag.HasErrors() {
		t.Fatal("expected diagnostic for unterminated string")
	}
	if bag.Items()[0].Code != diag.LangBadLexeme {
		t.Fatalf("code = %v, want LangBadLexeme", bag.Items()[0].Code)
	}
}

func TestTemplateLiteralRejected(t *testing.T) {
	_, bag := tokenize(t, "const s = `tpl`;")
	if !bag.HasErrors() {
		t.Fatal("expected diagnostic for template literal")
	}
	if bag.Items()[0].Code != diag.LangUnsupportedSyntax {
		t.Fatalf("code = %v, want LangUnsupportedSyntax", bag.Items()[0].Code)
	}
}
