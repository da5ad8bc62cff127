// Package lexer turns Paradox-style script text into a flat token stream.
//
// Lexing happens in two passes: StripComments removes "#" comments while
// respecting quoted strings, then the scanner splits the remaining text into
// braces, "=", comparators, quoted strings, numbers and words. The lexer is
// deliberately permissive and never fails.
package lexer

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

const (
	BraceOpen    Kind = iota // {
	BraceClose               // }
	Equals                   // =
	Comparator               // > < ! >= <= !=
	QuotedString             // "..." with escapes decoded
	Number                   // optional-sign integer or decimal
	Word                     // any other run of non-special characters
)

var kindNames = [...]string{
	BraceOpen:    "BraceOpen",
	BraceClose:   "BraceClose",
	Equals:       "Equals",
	Comparator:   "Comparator",
	QuotedString: "QuotedString",
	Number:       "Number",
	Word:         "Word",
}

// String returns the kind name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit. Text holds the literal source text, except for
// QuotedString where it holds the decoded contents without quotes.
type Token struct {
	Kind   Kind
	Text   string
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Column)
}

// IsName reports whether the token can start an assignment or comparison:
// a bare word, a number-shaped word, or a quoted string.
func (t Token) IsName() bool {
	return t.Kind == Word || t.Kind == Number || t.Kind == QuotedString
}
