package parser

import (
	"fmt"
	"os"

	"pdx-hq/reqgraph/pkg/pdx/ast"
	pdxErrors "pdx-hq/reqgraph/pkg/pdx/errors"
	"pdx-hq/reqgraph/pkg/pdx/lexer"
)

// Parser parses Paradox-style script files into value trees.
// Malformed text never makes parsing fail; it is reported as diagnostics.
type Parser struct {
	// Configuration
	maxFileSize  int64    // Maximum file size in bytes (default: 10MB)
	encoding     Encoding // Source encoding (default: UTF-8)
	contextLines int      // Source lines shown around diagnostics (default: 2)
}

// Result is a parsed document together with the anomalies the lexer and
// parser recovered from.
type Result struct {
	Document    *ast.Document
	Diagnostics *pdxErrors.ErrorList
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize:  10 * 1024 * 1024, // 10MB
		encoding:     EncodingUTF8,
		contextLines: 2,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithEncoding sets the source encoding.
func (p *Parser) WithEncoding(enc Encoding) *Parser {
	p.encoding = enc
	return p
}

// WithContextLines sets how many source lines surround each diagnostic.
// Zero disables context extraction.
func (p *Parser) WithContextLines(n int) *Parser {
	p.contextLines = n
	return p
}

// Parse parses the file at path. It returns an error only if the file cannot
// be read, is too large, or cannot be decoded.
func (p *Parser) Parse(path string) (*Result, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &pdxErrors.Error{
			Type:     pdxErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &pdxErrors.Error{
			Type:     pdxErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pdxErrors.Error{
			Type:     pdxErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses a document held in memory. sourcePath is used in
// diagnostic locations only.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*Result, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &pdxErrors.Error{
			Type:     pdxErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	text, err := decode(data, p.encoding)
	if err != nil {
		return nil, &pdxErrors.Error{
			Type:     pdxErrors.ErrorTypeIO,
			Message:  err.Error(),
			Location: ast.Location{File: sourcePath},
		}
	}

	result := parseText(text, sourcePath)
	if p.contextLines > 0 {
		for _, d := range result.Diagnostics.Errors {
			d.Context = pdxErrors.ExtractContextFromSource([]byte(text), d.Location, p.contextLines)
		}
	}
	return result, nil
}

// ParseString parses text with no size limit and returns the document.
// Diagnostics are discarded.
func ParseString(text string) *ast.Document {
	return parseText(text, "").Document
}

func parseText(text, source string) *Result {
	tokens, diags := lexer.TokenizeWithDiagnostics(text, source)

	b := newBlockParser(tokens, source, diags)
	root := b.parseDocument()

	return &Result{
		Document: &ast.Document{
			Source:     source,
			Root:       root,
			TokenCount: len(tokens),
		},
		Diagnostics: diags,
	}
}
