package errors

import (
	"os"
	"strconv"
	"strings"

	"pdx-hq/reqgraph/pkg/pdx/ast"
)

// DefaultContextLines is how many lines AddContext shows on each side of a
// diagnostic.
const DefaultContextLines = 2

// ExtractContext reads the file named by location and returns an excerpt
// around it, or "" when the file cannot be read.
func ExtractContext(location ast.Location, contextLines int) string {
	if !location.IsValid() || location.File == "" {
		return ""
	}
	source, err := os.ReadFile(location.File)
	if err != nil {
		return ""
	}
	return excerpt(source, location, contextLines)
}

// ExtractContextFromSource is ExtractContext for a document already in
// memory.
func ExtractContextFromSource(source []byte, location ast.Location, contextLines int) string {
	if !location.IsValid() {
		return ""
	}
	return excerpt(source, location, contextLines)
}

// excerpt renders numbered lines around location.Line, marking the
// offending line with "->" and its column with a caret:
//
//	   3 |     potential = {
//	-> 4 |         authoritiy = auth_democratic
//	     |         ^
func excerpt(source []byte, location ast.Location, contextLines int) string {
	lines := strings.Split(strings.ReplaceAll(string(source), "\r\n", "\n"), "\n")
	target := location.Line - 1
	if target < 0 || target >= len(lines) {
		return ""
	}

	first := max(target-contextLines, 0)
	last := min(target+contextLines, len(lines)-1)
	width := len(strconv.Itoa(last + 1))
	gutter := strings.Repeat(" ", width)

	var sb strings.Builder
	for i := first; i <= last; i++ {
		marker := "  "
		if i == target {
			marker = "->"
		}
		sb.WriteString(marker + " " + leftPad(strconv.Itoa(i+1), width) + " | " + lines[i] + "\n")
		if i == target && location.Column > 0 {
			sb.WriteString("   " + gutter + " | " + strings.Repeat(" ", location.Column-1) + "^\n")
		}
	}
	return sb.String()
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// WithContext fills err.Context from the file named by its location.
func WithContext(err *Error, contextLines int) *Error {
	if err.Location.IsValid() {
		err.Context = ExtractContext(err.Location, contextLines)
	}
	return err
}

// AddContext fills the excerpt of every diagnostic in the list from source.
func (el *ErrorList) AddContext(source []byte) {
	if el == nil {
		return
	}
	for _, err := range el.Errors {
		err.Context = ExtractContextFromSource(source, err.Location, DefaultContextLines)
	}
}
