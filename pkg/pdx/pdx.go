package pdx

import (
	"pdx-hq/reqgraph/pkg/pdx/ast"
	"pdx-hq/reqgraph/pkg/pdx/parser"
)

// ParseFile is a convenience function that parses a script file with the
// default parser settings and returns its document.
func ParseFile(path string) (*ast.Document, error) {
	result, err := parser.NewParser().Parse(path)
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

// ParseString parses script text held in memory.
func ParseString(text string) *ast.Document {
	return parser.ParseString(text)
}
