package parser

import (
	"os"
	"path/filepath"
	"testing"

	"pdx-hq/reqgraph/pkg/pdx/ast"
	pdxErrors "pdx-hq/reqgraph/pkg/pdx/errors"
)

func strs(t *testing.T, v *ast.Value) []string {
	t.Helper()
	if !v.IsList() {
		t.Fatalf("value kind = %q, want list", v.Kind)
	}
	out := make([]string, len(v.List))
	for i, item := range v.List {
		out[i] = item.String()
	}
	return out
}

func assertStrings(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseString_RepeatedKeyCoalesces(t *testing.T) {
	doc := ParseString(`block = { k = a k = b other = 1 k = c }`)

	block := doc.Root.Get("block")
	if !block.IsMapping() {
		t.Fatalf("block kind = %q, want mapping", block.Kind)
	}
	assertStrings(t, strs(t, block.Get("k")), []string{"a", "b", "c"})
	if got := block.Mapping.Keys(); len(got) != 2 || got[0] != "k" || got[1] != "other" {
		t.Errorf("Keys() = %v, want [k other]", got)
	}
}

func TestParseString_ListVsMapping(t *testing.T) {
	doc := ParseString(`
list = { a b c }
map = { x = 1 y = two }
mixed = { a x = 1 b }
empty = { }
`)

	assertStrings(t, strs(t, doc.Root.Get("list")), []string{"a", "b", "c"})

	m := doc.Root.Get("map")
	if !m.IsMapping() {
		t.Fatalf("map kind = %q, want mapping", m.Kind)
	}
	if m.Get("x").Kind != ast.KindNumber || m.Get("x").Num != 1 {
		t.Errorf("map.x = %v, want number 1", m.Get("x"))
	}
	if m.Get("y").Str != "two" {
		t.Errorf("map.y = %v, want two", m.Get("y"))
	}
	if m.Has(ast.ItemsKey) {
		t.Error("pure mapping should not have items")
	}

	mixed := doc.Root.Get("mixed")
	if !mixed.IsMapping() {
		t.Fatalf("mixed kind = %q, want mapping", mixed.Kind)
	}
	assertStrings(t, strs(t, mixed.Get(ast.ItemsKey)), []string{"a", "b"})
	if mixed.Get("x").Num != 1 {
		t.Errorf("mixed.x = %v, want 1", mixed.Get("x"))
	}

	empty := doc.Root.Get("empty")
	if !empty.IsList() || len(empty.List) != 0 {
		t.Errorf("empty = %v, want empty list", empty)
	}
}

func TestParseString_QuoteAndComment(t *testing.T) {
	doc := ParseString(`x = "a # b" # real comment` + "\ny = z")

	if got := doc.Root.Get("x"); !got.IsString() || got.Str != "a # b" {
		t.Errorf("x = %v, want %q", got, "a # b")
	}
	if got := doc.Root.Get("y"); got.Str != "z" {
		t.Errorf("y = %v, want z", got)
	}
	if doc.Root.Mapping.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (comment leaked)", doc.Root.Mapping.Len())
	}
}

func TestParseString_Scalars(t *testing.T) {
	doc := ParseString(`a = yes b = no c = -2.5 d = "yes" e = word f = >=`)

	tests := []struct {
		key  string
		kind ast.Kind
		want string
	}{
		{"a", ast.KindBool, "yes"},
		{"b", ast.KindBool, "no"},
		{"c", ast.KindNumber, "-2.5"},
		{"d", ast.KindString, "yes"},
		{"e", ast.KindString, "word"},
		{"f", ast.KindString, ">="},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := doc.Root.Get(tt.key)
			if v == nil {
				t.Fatalf("missing key %q", tt.key)
			}
			if v.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", v.Kind, tt.kind)
			}
			if v.String() != tt.want {
				t.Errorf("value = %q, want %q", v.String(), tt.want)
			}
		})
	}
}

func TestParseString_Comparisons(t *testing.T) {
	doc := ParseString(`trigger = { num_pops >= 10 name != "Old Earth" has_flag = x }`)

	trigger := doc.Root.Get("trigger")
	items := trigger.Items()
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Kind != ast.KindComparison {
		t.Fatalf("item kind = %q, want comparison", items[0].Kind)
	}
	if got := items[0].String(); got != "num_pops >= 10" {
		t.Errorf("item 0 = %q, want %q", got, "num_pops >= 10")
	}
	if got := items[1].String(); got != `name != "Old Earth"` {
		t.Errorf("item 1 = %q, want %q", got, `name != "Old Earth"`)
	}
	if got := trigger.Get("has_flag").Str; got != "x" {
		t.Errorf("has_flag = %q, want x", got)
	}
}

func TestParseString_ImplicitAssignment(t *testing.T) {
	doc := ParseString(`civic_a { potential { ethics = { value = ethic_a } } }`)

	civic := doc.Root.Get("civic_a")
	if !civic.IsMapping() {
		t.Fatalf("civic kind = %q, want mapping", civic.Kind)
	}
	value := civic.Get("potential").Get("ethics").Get("value")
	if value == nil || value.Str != "ethic_a" {
		t.Errorf("value = %v, want ethic_a", value)
	}
}

func TestParseString_TopLevelBareNamesAreTrue(t *testing.T) {
	doc := ParseString(`flag_a flag_b key = value`)

	for _, key := range []string{"flag_a", "flag_b"} {
		if !doc.Root.Get(key).IsTrue() {
			t.Errorf("%s = %v, want yes", key, doc.Root.Get(key))
		}
	}
	if doc.Root.Get("key").Str != "value" {
		t.Errorf("key = %v, want value", doc.Root.Get("key"))
	}
}

func TestParseString_AnonymousBlocksAndNumbers(t *testing.T) {
	doc := ParseString(`color = { 0.5 0.25 1 } groups = { { a b } { c } }`)

	color := doc.Root.Get("color")
	if !color.IsList() || len(color.List) != 3 {
		t.Fatalf("color = %v, want 3 numbers", color)
	}
	for _, item := range color.List {
		if item.Kind != ast.KindNumber {
			t.Errorf("color item kind = %q, want number", item.Kind)
		}
	}

	groups := doc.Root.Get("groups")
	if !groups.IsList() || len(groups.List) != 2 {
		t.Fatalf("groups = %v, want 2 lists", groups)
	}
	assertStrings(t, strs(t, groups.List[0]), []string{"a", "b"})
}

func TestParseString_RepeatedBlocks(t *testing.T) {
	doc := ParseString(`possible = { a = 1 } possible = { b = 2 }`)

	blocks := ast.Each(doc.Root.Get("possible"))
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if blocks[0].Get("a") == nil || blocks[1].Get("b") == nil {
		t.Errorf("blocks out of order: %v", blocks)
	}
}

func TestParseString_RepeatedListBlocks(t *testing.T) {
	doc := ParseString(`k = { a b } k = { c d }`)

	blocks := ast.Each(doc.Root.Get("k"))
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	assertStrings(t, strs(t, blocks[0]), []string{"a", "b"})
	assertStrings(t, strs(t, blocks[1]), []string{"c", "d"})
}

func TestParser_ExplicitItemsKeyWithBareItems(t *testing.T) {
	result, err := NewParser().ParseBytes([]byte(`e = { items = { a } b c }`), "items.txt")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}

	if !result.Diagnostics.HasErrorType(pdxErrors.ErrorTypeStructural) {
		t.Errorf("expected structural diagnostic, got %v", result.Diagnostics.Errors)
	}

	decls := ast.Each(result.Document.Root.Get("e").Get(ast.ItemsKey))
	if len(decls) != 2 {
		t.Fatalf("len(items) = %d, want 2 separate declarations", len(decls))
	}
	assertStrings(t, strs(t, decls[0]), []string{"a"})
	assertStrings(t, strs(t, decls[1]), []string{"b", "c"})
}

func TestParser_MalformedInput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantType  pdxErrors.ErrorType
		checkRoot func(t *testing.T, root *ast.Value)
	}{
		{
			name:     "unclosed block",
			input:    "a = { b = c",
			wantType: pdxErrors.ErrorTypeStructural,
			checkRoot: func(t *testing.T, root *ast.Value) {
				if root.Get("a").Get("b").Str != "c" {
					t.Errorf("a.b = %v, want c", root.Get("a").Get("b"))
				}
			},
		},
		{
			name:     "extra close",
			input:    "a = b } c = d",
			wantType: pdxErrors.ErrorTypeStructural,
			checkRoot: func(t *testing.T, root *ast.Value) {
				if root.Get("c").Str != "d" {
					t.Errorf("c = %v, want d", root.Get("c"))
				}
			},
		},
		{
			name:     "dangling equals at end",
			input:    "a = b c =",
			wantType: pdxErrors.ErrorTypeStructural,
			checkRoot: func(t *testing.T, root *ast.Value) {
				if root.Has("c") {
					t.Error("c should not be assigned")
				}
			},
		},
		{
			name:     "dangling equals in block",
			input:    "a = { b = }",
			wantType: pdxErrors.ErrorTypeStructural,
			checkRoot: func(t *testing.T, root *ast.Value) {
				if !root.Get("a").IsList() {
					t.Errorf("a = %v, want empty list", root.Get("a"))
				}
			},
		},
		{
			name:     "truncated quote",
			input:    `a = "open`,
			wantType: pdxErrors.ErrorTypeLexical,
			checkRoot: func(t *testing.T, root *ast.Value) {
				if root.Get("a").Str != "open" {
					t.Errorf("a = %v, want open", root.Get("a"))
				}
			},
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.ParseBytes([]byte(tt.input), "test.txt")
			if err != nil {
				t.Fatalf("ParseBytes() failed: %v", err)
			}
			if !result.Diagnostics.HasErrorType(tt.wantType) {
				t.Errorf("expected %s diagnostic, got %v", tt.wantType, result.Diagnostics.Errors)
			}
			tt.checkRoot(t, result.Document.Root)
		})
	}
}

func TestParser_WellFormedHasNoDiagnostics(t *testing.T) {
	result, err := NewParser().ParseBytes([]byte("a = { b = c d }\n"), "ok.txt")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	if result.Diagnostics.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", result.Diagnostics)
	}
	if result.Document.TokenCount != 8 {
		t.Errorf("TokenCount = %d, want 8", result.Document.TokenCount)
	}
}

func TestParser_DiagnosticContext(t *testing.T) {
	result, err := NewParser().ParseBytes([]byte("a = 1\nb = {\nc = 2\n"), "ctx.txt")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	if result.Diagnostics.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", result.Diagnostics.Count())
	}
	d := result.Diagnostics.Errors[0]
	if d.Location.Line != 2 || d.Location.Column != 5 {
		t.Errorf("location = %s, want ctx.txt:2:5", d.Location)
	}
	if d.Context == "" {
		t.Error("expected source context")
	}
}

func TestParser_Parse_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "civics.txt")
	content := "\ufeffcivic_a = { is_origin = no }\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	result, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if result.Document.Source != path {
		t.Errorf("Source = %q, want %q", result.Document.Source, path)
	}
	// BOM must not leak into the first key.
	if result.Document.Root.Get("civic_a") == nil {
		t.Errorf("missing civic_a, keys = %v", result.Document.Root.Mapping.Keys())
	}
}

func TestParser_Parse_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewParser().Parse(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(path, []byte("a = b c = d"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	_, err := NewParser().WithMaxFileSize(4).Parse(path)
	if err == nil {
		t.Fatal("expected size error")
	}
	if pdxErr, ok := err.(*pdxErrors.Error); !ok || pdxErr.Type != pdxErrors.ErrorTypeIO {
		t.Errorf("error = %v, want io error", err)
	}
}

func TestParser_Windows1252(t *testing.T) {
	// 0xE9 is "é" in windows-1252.
	data := []byte("name = \"Caf\xe9\"")
	result, err := NewParser().WithEncoding(EncodingWindows1252).ParseBytes(data, "legacy.txt")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	if got := result.Document.Root.Get("name").Str; got != "Café" {
		t.Errorf("name = %q, want %q", got, "Café")
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr bool
	}{
		{"", EncodingUTF8, false},
		{"UTF-8", EncodingUTF8, false},
		{"cp1252", EncodingWindows1252, false},
		{"ebcdic", "", true},
	}

	for _, tt := range tests {
		got, err := ParseEncoding(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEncoding(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseEncoding(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
