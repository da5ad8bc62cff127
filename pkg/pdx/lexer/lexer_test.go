package lexer

import (
	"testing"

	pdxErrors "pdx-hq/reqgraph/pkg/pdx/errors"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no comment", "a = b", "a = b"},
		{"trailing comment", "a = b # note\nc = d", "a = b \nc = d"},
		{"comment at eof", "a = b # note", "a = b "},
		{"whole line", "# header\na = b", "\na = b"},
		{"hash in quotes", `x = "a # b" # real`, `x = "a # b" `},
		{"escaped quote keeps string open", `x = "say \"#hi\"" # c`, `x = "say \"#hi\"" `},
		{"escaped backslash closes string", `x = "dir\\" # c`, `x = "dir\\" `},
		{"keeps newlines", "a # one\n# two\nb", "a \n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripComments(tt.in); got != tt.want {
				t.Errorf("StripComments(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize_Kinds(t *testing.T) {
	tokens := Tokenize(`civic = { size >= 5 flag != "x y" -1.5 word! }`)

	wantKinds := []Kind{
		Word, Equals, BraceOpen,
		Word, Comparator, Number,
		Word, Comparator, QuotedString,
		Number,
		Word, Comparator,
		BraceClose,
	}
	got := kinds(tokens)
	if len(got) != len(wantKinds) {
		t.Fatalf("got %d tokens %v, want %d", len(got), tokens, len(wantKinds))
	}
	for i := range wantKinds {
		if got[i] != wantKinds[i] {
			t.Errorf("token %d kind = %s, want %s", i, got[i], wantKinds[i])
		}
	}

	wantTexts := []string{"civic", "=", "{", "size", ">=", "5", "flag", "!=", "x y", "-1.5", "word", "!", "}"}
	if gotTexts := texts(tokens); !equalStrings(gotTexts, wantTexts) {
		t.Errorf("texts = %q, want %q", gotTexts, wantTexts)
	}
}

func TestTokenize_NoWhitespaceAroundSpecials(t *testing.T) {
	tokens := Tokenize(`a={b="c"}`)
	want := []string{"a", "=", "{", "b", "=", "c", "}"}
	if got := texts(tokens); !equalStrings(got, want) {
		t.Errorf("texts = %q, want %q", got, want)
	}
}

func TestTokenize_QuotedEscapes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"plain"`, "plain"},
		{`"say \"hi\""`, `say "hi"`},
		{`"back\\slash"`, `back\slash`},
		{`"new\nline"`, `new\nline`},
		{`"a # b"`, "a # b"},
		{`""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tokens := Tokenize(tt.in)
			if len(tokens) != 1 {
				t.Fatalf("got %d tokens, want 1", len(tokens))
			}
			if tokens[0].Kind != QuotedString {
				t.Errorf("kind = %s, want QuotedString", tokens[0].Kind)
			}
			if tokens[0].Text != tt.want {
				t.Errorf("text = %q, want %q", tokens[0].Text, tt.want)
			}
		})
	}
}

func TestTokenize_Numbers(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"42", Number},
		{"-3", Number},
		{"+0.25", Number},
		{".5", Number},
		{"2200.1.1", Word},
		{"1e5", Word},
		{"ethic_xenophobe", Word},
		{"-", Word},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tokens := Tokenize(tt.in)
			if len(tokens) != 1 || tokens[0].Kind != tt.want {
				t.Errorf("Tokenize(%q) = %v, want one %s", tt.in, tokens, tt.want)
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	tokens := Tokenize("a = b # comment\n  c = \"é\" d")

	want := []struct {
		text      string
		line, col int
	}{
		{"a", 1, 1}, {"=", 1, 3}, {"b", 1, 5},
		{"c", 2, 3}, {"=", 2, 5}, {"é", 2, 7}, {"d", 2, 11},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Text != w.text || tok.Line != w.line || tok.Column != w.col {
			t.Errorf("token %d = %v, want %q@%d:%d", i, tok, w.text, w.line, w.col)
		}
	}
}

func TestTokenize_UnterminatedQuote(t *testing.T) {
	tokens, diags := TokenizeWithDiagnostics(`name = "never closed`, "test.txt")

	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
	if tokens[2].Kind != QuotedString || tokens[2].Text != "never closed" {
		t.Errorf("last token = %v, want QuotedString(never closed)", tokens[2])
	}
	if !diags.HasErrorType(pdxErrors.ErrorTypeLexical) {
		t.Fatal("expected a lexical diagnostic")
	}
	loc := diags.Errors[0].Location
	if loc.File != "test.txt" || loc.Line != 1 || loc.Column != 8 {
		t.Errorf("location = %s, want test.txt:1:8", loc)
	}
}

func TestTokenize_Empty(t *testing.T) {
	if tokens := Tokenize("  \n\t# only a comment\n"); len(tokens) != 0 {
		t.Errorf("got %v, want no tokens", tokens)
	}
}
