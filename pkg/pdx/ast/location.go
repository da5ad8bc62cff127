package ast

import "fmt"

// Location represents the source location of a token or value in a parsed document.
// It enables precise diagnostics with file, line, and column information.
type Location struct {
	File   string `json:"file,omitempty" yaml:"file,omitempty"` // Path or logical name of the source document
	Line   int    `json:"line" yaml:"line"`                     // Line number (1-based)
	Column int    `json:"column" yaml:"column"`                 // Column number (1-based)
}

// String returns a human-readable representation of the location.
// Format: "file:line:column"
func (l Location) String() string {
	if l.File == "" {
		if l.Line > 0 {
			return fmt.Sprintf("<input>:%d:%d", l.Line, l.Column)
		}
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsValid returns true if the location has line information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
