package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pdx-hq/reqgraph/pkg/cli"
	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/pdx/ast"
	pdxErrors "pdx-hq/reqgraph/pkg/pdx/errors"
	"pdx-hq/reqgraph/pkg/pdx/parser"
)

var parseFlags struct {
	format   string
	encoding string
}

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Print the value tree of script files",
	Long: `Parse script files and print their value trees.

Duplicate keys become lists, bare values inside a block are kept under
"items", and comparisons such as "num_pops > 5" are printed as strings.
Structural problems are reported but never stop parsing.

Examples:
  # JSON value tree
  reqgraph parse common/ethics/00_ethics.txt

  # YAML, decoding a legacy file
  reqgraph parse --format yaml --encoding windows-1252 old_mod.txt

  # Only entity names and diagnostics
  reqgraph parse --format text common/governments/civics/*.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFlags.format, "format", "f", "json", "output format: text, json, yaml")
	parseCmd.Flags().StringVar(&parseFlags.encoding, "encoding", "", "source encoding: utf-8, windows-1252 (default from config)")
}

// ParsedFile is the parse result of one file.
type ParsedFile struct {
	File        string             `json:"file" yaml:"file"`
	Tokens      int                `json:"tokens" yaml:"tokens"`
	Diagnostics []*pdxErrors.Error `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Value       *ast.Value         `json:"value" yaml:"value"`
}

// parseResult is the output of the parse command.
type parseResult []ParsedFile

// RenderText lists each file's top-level keys and diagnostics.
func (r parseResult) RenderText(w io.Writer) error {
	for _, f := range r {
		var keys []string
		if f.Value.IsMapping() {
			for _, e := range f.Value.Mapping.Entries {
				keys = append(keys, e.Key)
			}
		}
		fmt.Fprintf(w, "%s: %d entries, %d tokens\n", f.File, len(keys), f.Tokens)
		if len(keys) > 0 {
			fmt.Fprintf(w, "  %s\n", strings.Join(keys, ", "))
		}
		for _, d := range f.Diagnostics {
			writeDiagnostic(w, d)
		}
	}
	return nil
}

func runParse(w io.Writer, files []string) error {
	format, err := cli.ParseFormat(parseFlags.format)
	if err != nil {
		return err
	}
	formatter, err := cli.NewFormatter(format, true)
	if err != nil {
		return err
	}

	cfg, _, err := setup()
	if err != nil {
		return err
	}
	p, err := newParser(cfg, parseFlags.encoding)
	if err != nil {
		return err
	}

	result := make(parseResult, 0, len(files))
	for _, path := range files {
		res, err := p.Parse(path)
		if err != nil {
			return cli.NewCommandError("parse", err)
		}
		var diags []*pdxErrors.Error
		if res.Diagnostics != nil {
			diags = res.Diagnostics.Errors
		}
		result = append(result, ParsedFile{
			File:        path,
			Tokens:      res.Document.TokenCount,
			Diagnostics: diags,
			Value:       res.Document.Root,
		})
	}

	return formatter.FormatTo(w, result)
}

// newParser builds a parser from the parser settings, with an optional
// encoding override.
func newParser(cfg *config.Config, encoding string) (*parser.Parser, error) {
	if encoding == "" {
		encoding = cfg.Parser.Encoding
	}
	enc, err := parser.ParseEncoding(encoding)
	if err != nil {
		return nil, cli.NewConfigError("parser.encoding", err.Error())
	}
	return parser.NewParser().
		WithMaxFileSize(cfg.Parser.MaxFileSize).
		WithEncoding(enc), nil
}

// writeDiagnostic prints one diagnostic on one line.
func writeDiagnostic(w io.Writer, d *pdxErrors.Error) {
	fmt.Fprintf(w, "  ✗ %d:%d %s: %s", d.Location.Line, d.Location.Column, d.Type, d.Message)
	if d.Suggestion != "" {
		fmt.Fprintf(w, " (%s)", d.Suggestion)
	}
	fmt.Fprintln(w)
}
