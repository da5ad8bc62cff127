package errors

import (
	"strings"
	"testing"

	"pdx-hq/reqgraph/pkg/pdx/ast"
)

func TestError_Error(t *testing.T) {
	err := &Error{
		Type:       ErrorTypeStructural,
		Message:    "Block is never closed",
		Location:   ast.Location{File: "civics.txt", Line: 3, Column: 7},
		Suggestion: "Add the missing '}'",
	}

	out := err.Error()
	for _, want := range []string{"[structural]", "civics.txt:3:7", "suggestion: Add the missing '}'"} {
		if !strings.Contains(out, want) {
			t.Errorf("Error() missing %q:\n%s", want, out)
		}
	}
}

func TestErrorList(t *testing.T) {
	el := NewErrorList()
	if el.HasErrors() {
		t.Fatal("new list should be empty")
	}
	if el.ToError() != nil {
		t.Error("ToError() on empty list should be nil")
	}

	el.AddError(ErrorTypeLexical, "Unterminated quoted string", ast.Location{Line: 1, Column: 5})
	el.AddErrorWithSuggestion(ErrorTypeStructural, "Unexpected '}'", ast.Location{Line: 2, Column: 1}, "Remove it")

	if el.Count() != 2 {
		t.Errorf("Count() = %d, want 2", el.Count())
	}
	if !el.HasErrorType(ErrorTypeLexical) {
		t.Error("expected lexical diagnostic")
	}
	if el.HasErrorType(ErrorTypeIO) {
		t.Error("unexpected io diagnostic")
	}
	if got := len(el.ByType(ErrorTypeStructural)); got != 1 {
		t.Errorf("len(ByType(structural)) = %d, want 1", got)
	}
	if el.ToError() == nil {
		t.Error("ToError() should return the list")
	}
}

func TestExtractContextFromSource(t *testing.T) {
	source := []byte("a = 1\nb = {\nc = 3\nd = 4\n")
	ctx := ExtractContextFromSource(source, ast.Location{Line: 2, Column: 5}, 1)

	if !strings.Contains(ctx, "-> 2 | b = {") {
		t.Errorf("context missing marked line:\n%s", ctx)
	}
	if !strings.Contains(ctx, "1 | a = 1") || !strings.Contains(ctx, "3 | c = 3") {
		t.Errorf("context missing neighbours:\n%s", ctx)
	}
	if strings.Contains(ctx, "d = 4") {
		t.Errorf("context has too many lines:\n%s", ctx)
	}
	if !strings.Contains(ctx, "    ^") {
		t.Errorf("context missing column marker:\n%s", ctx)
	}
}

func TestSuggestKey(t *testing.T) {
	keys := []string{"authority", "ethics", "civics", "origin"}

	tests := []struct {
		unknown string
		want    string
	}{
		{"authorty", "Did you mean 'authority'?"},
		{"ethic", "Did you mean 'ethics'?"},
		{"has_megastructure", ""},
		{"civics", ""},
	}

	for _, tt := range tests {
		t.Run(tt.unknown, func(t *testing.T) {
			if got := SuggestKey(tt.unknown, keys, 2); got != tt.want {
				t.Errorf("SuggestKey(%q) = %q, want %q", tt.unknown, got, tt.want)
			}
		})
	}
}

func TestEditDistance(t *testing.T) {
	if d := editDistance("kitten", "sitting"); d != 3 {
		t.Errorf("distance = %d, want 3", d)
	}
	if d := editDistance("", "abc"); d != 3 {
		t.Errorf("distance = %d, want 3", d)
	}
}
