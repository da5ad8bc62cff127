package errors

import (
	"fmt"
	"strings"

	"pdx-hq/reqgraph/pkg/pdx/ast"
)

// ErrorType categorizes a diagnostic.
type ErrorType string

const (
	ErrorTypeLexical    ErrorType = "lexical"    // unterminated quote, stray character
	ErrorTypeStructural ErrorType = "structural" // unbalanced braces, dangling operator
	ErrorTypeSchema     ErrorType = "schema"     // key unknown to a facet schema
	ErrorTypeIO         ErrorType = "io"
)

// Error is one diagnostic. Lexical and structural diagnostics do not stop
// the parser; it records them and keeps reading.
type Error struct {
	Type       ErrorType    `json:"type" yaml:"type"`
	Message    string       `json:"message" yaml:"message"`
	Location   ast.Location `json:"location" yaml:"location"`
	Context    string       `json:"context,omitempty" yaml:"context,omitempty"`
	Suggestion string       `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Error renders the diagnostic over several lines: header, location,
// source excerpt and suggestion, skipping whatever is unset.
func (e *Error) Error() string {
	lines := []string{fmt.Sprintf("[%s] %s", e.Type, e.Message)}
	if e.Location.IsValid() {
		lines = append(lines, "  --> "+e.Location.String())
	}
	if e.Context != "" {
		lines = append(lines, "  |", strings.TrimSuffix(e.Context, "\n"), "  |")
	}
	if e.Suggestion != "" {
		lines = append(lines, "  = suggestion: "+e.Suggestion)
	}
	return strings.Join(lines, "\n") + "\n"
}

// ErrorList collects the diagnostics of one document in source order.
// A nil list behaves as an empty one.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList returns an empty list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: []*Error{}}
}

func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.AddErrorWithSuggestion(errType, message, location, "")
}

func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.Add(&Error{Type: errType, Message: message, Location: location, Suggestion: suggestion})
}

func (el *ErrorList) HasErrors() bool {
	return el.Count() > 0
}

func (el *ErrorList) Count() int {
	if el == nil {
		return 0
	}
	return len(el.Errors)
}

// Error joins every diagnostic under a count header.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d diagnostic(s):\n", el.Count())
	for i, err := range el.Errors {
		fmt.Fprintf(&sb, "\nDiagnostic %d:\n%s", i+1, err.Error())
	}
	return sb.String()
}

// ToError returns el as an error, or nil when it is empty.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType filters the list by category, keeping source order.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var out []*Error
	if el == nil {
		return out
	}
	for _, err := range el.Errors {
		if err.Type == errType {
			out = append(out, err)
		}
	}
	return out
}

func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	if el == nil {
		return false
	}
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}
