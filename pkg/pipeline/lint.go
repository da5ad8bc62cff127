package pipeline

import (
	"fmt"
	"strings"

	"pdx-hq/reqgraph/pkg/pdx/ast"
	pdxErrors "pdx-hq/reqgraph/pkg/pdx/errors"
	"pdx-hq/reqgraph/pkg/pdx/parser"
	"pdx-hq/reqgraph/pkg/requirements"
)

// maxSuggestionDistance is the largest edit distance between an unknown
// condition key and a schema key for the key to be reported.
const maxSuggestionDistance = 2

// logicalKeys are condition operators the schema never maps.
var logicalKeys = map[string]bool{
	"OR": true, "NOR": true, "NOT": true, "AND": true, "NAND": true,
	"value": true, "text": true,
}

// FileReport holds the diagnostics found in one source file.
type FileReport struct {
	Path        string             `json:"path" yaml:"path"`
	Diagnostics []*pdxErrors.Error `json:"diagnostics" yaml:"diagnostics"`
}

// LintFile parses one file and returns its diagnostics. When collection is
// not nil, condition keys that are unknown to its schema but close to a known
// key are reported as schema diagnostics.
func LintFile(p *parser.Parser, path string, collection *requirements.CollectionConfig) (*FileReport, error) {
	res, err := p.Parse(path)
	if err != nil {
		return nil, err
	}

	report := &FileReport{Path: path, Diagnostics: res.Diagnostics.Errors}
	if collection != nil {
		report.Diagnostics = append(report.Diagnostics, SchemaDiagnostics(res.Document, collection)...)
	}
	return report, nil
}

// SchemaDiagnostics walks the condition sections of every entity in doc and
// reports keys that look like misspelled schema keys.
func SchemaDiagnostics(doc *ast.Document, collection *requirements.CollectionConfig) []*pdxErrors.Error {
	known := collection.Schema.KnownKeys()
	var diags []*pdxErrors.Error

	for _, entry := range doc.Entries() {
		if strings.HasPrefix(entry.Key, "@") || entry.Key == ast.ItemsKey {
			continue
		}
		for _, body := range ast.Each(entry.Value) {
			if !body.IsMapping() {
				continue
			}
			for _, section := range collection.Schema.ConditionSections() {
				for _, block := range ast.Each(body.Get(section)) {
					diags = lintBlock(diags, entry.Key, block, &collection.Schema, known)
				}
			}
		}
	}
	return diags
}

func lintBlock(diags []*pdxErrors.Error, entity string, block *ast.Value, schema *requirements.Schema, known []string) []*pdxErrors.Error {
	if !block.IsMapping() {
		return diags
	}
	for _, e := range block.Mapping.Entries {
		if _, ok := schema.Facet(e.Key); ok {
			continue
		}
		if logicalKeys[e.Key] {
			for _, nested := range ast.Each(e.Value) {
				diags = lintBlock(diags, entity, nested, schema, known)
			}
			continue
		}

		suggestion := pdxErrors.SuggestKey(e.Key, known, maxSuggestionDistance)
		if suggestion == "" {
			continue
		}

		var loc ast.Location
		if vs := ast.Each(e.Value); len(vs) > 0 {
			loc = vs[0].Location
		}
		diags = append(diags, &pdxErrors.Error{
			Type:       pdxErrors.ErrorTypeSchema,
			Message:    fmt.Sprintf("Unknown condition key '%s' in %s", e.Key, entity),
			Location:   loc,
			Suggestion: suggestion,
		})
	}
	return diags
}
