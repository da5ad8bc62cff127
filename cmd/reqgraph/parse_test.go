package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunParse_JSON(t *testing.T) {
	cfg := useTestConfig(t)
	path := filepath.Join(cfg.GameRoot, "common", "ethics", "00_ethics.txt")

	var buf bytes.Buffer
	if err := runParse(&buf, []string{path}); err != nil {
		t.Fatalf("runParse() error = %v", err)
	}

	var out []struct {
		File   string                     `json:"file"`
		Tokens int                        `json:"tokens"`
		Value  map[string]json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(out) != 1 {
		t.Fatalf("got %d files, want 1", len(out))
	}
	if out[0].File != path {
		t.Errorf("File = %q, want %q", out[0].File, path)
	}
	if out[0].Tokens == 0 {
		t.Error("Tokens should be counted")
	}
	for _, key := range []string{"ethic_spiritualist", "ethic_materialist"} {
		if _, ok := out[0].Value[key]; !ok {
			t.Errorf("value missing key %q", key)
		}
	}
}

func TestRunParse_Text(t *testing.T) {
	cfg := useTestConfig(t)
	path := writeFile(t, cfg.GameRoot, "broken.txt", "a = { b = 1\n")
	parseFlags.format = "text"

	var buf bytes.Buffer
	if err := runParse(&buf, []string{path}); err != nil {
		t.Fatalf("runParse() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "broken.txt: ") {
		t.Errorf("missing file summary:\n%s", out)
	}
	if !strings.Contains(out, "✗") {
		t.Errorf("unclosed block should be reported:\n%s", out)
	}
}

func TestRunParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		encoding string
		file     string
	}{
		{name: "missing file", format: "json", file: "does-not-exist.txt"},
		{name: "bad format", format: "xml", file: "x.txt"},
		{name: "bad encoding", format: "json", encoding: "ebcdic", file: "x.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := useTestConfig(t)
			parseFlags.format = tt.format
			parseFlags.encoding = tt.encoding

			var buf bytes.Buffer
			if err := runParse(&buf, []string{filepath.Join(cfg.GameRoot, tt.file)}); err == nil {
				t.Error("runParse() should fail")
			}
		})
	}
}
