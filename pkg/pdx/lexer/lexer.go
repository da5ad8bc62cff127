package lexer

import (
	"regexp"
	"strings"

	"pdx-hq/reqgraph/pkg/pdx/ast"
	pdxErrors "pdx-hq/reqgraph/pkg/pdx/errors"
)

var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)$`)

// IsNumber reports whether s has the shape of a number literal.
func IsNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// Tokenize converts text into tokens. It never fails: anything the lexer does
// not recognize is folded into the surrounding Word token.
func Tokenize(text string) []Token {
	tokens, _ := TokenizeWithDiagnostics(text, "")
	return tokens
}

// TokenizeWithDiagnostics is Tokenize that also reports the lexical anomalies
// it recovered from. source names the document in diagnostic locations.
func TokenizeWithDiagnostics(text, source string) ([]Token, *pdxErrors.ErrorList) {
	s := &scanner{
		src:    StripComments(text),
		source: source,
		line:   1,
		col:    1,
		diags:  pdxErrors.NewErrorList(),
	}
	s.run()
	return s.tokens, s.diags
}

type scanner struct {
	src    string
	pos    int
	line   int
	col    int
	source string
	tokens []Token
	diags  *pdxErrors.ErrorList
}

func (s *scanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		line, col := s.line, s.col

		switch {
		case isSpace(c):
			s.advance()

		case c == '{':
			s.advance()
			s.emit(BraceOpen, "{", line, col)

		case c == '}':
			s.advance()
			s.emit(BraceClose, "}", line, col)

		case c == '=':
			s.advance()
			s.emit(Equals, "=", line, col)

		case c == '>' || c == '<' || c == '!':
			s.advance()
			op := string(c)
			if s.pos < len(s.src) && s.src[s.pos] == '=' {
				s.advance()
				op += "="
			}
			s.emit(Comparator, op, line, col)

		case c == '"':
			s.quoted(line, col)

		default:
			s.word(line, col)
		}
	}
}

// quoted consumes a quoted string starting at the opening quote. Only \" and
// \\ are escapes; any other backslash passes through literally.
func (s *scanner) quoted(line, col int) {
	s.advance()

	var sb strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]

		if c == '"' {
			s.advance()
			s.emit(QuotedString, sb.String(), line, col)
			return
		}

		if c == '\\' && s.pos+1 < len(s.src) {
			next := s.src[s.pos+1]
			if next == '"' || next == '\\' {
				s.advance()
				s.advance()
				sb.WriteByte(next)
				continue
			}
		}

		sb.WriteByte(c)
		s.advance()
	}

	s.diags.AddErrorWithSuggestion(pdxErrors.ErrorTypeLexical,
		"Quoted string is never terminated",
		ast.Location{File: s.source, Line: line, Column: col},
		`Add the closing '"'`,
	)
	s.emit(QuotedString, sb.String(), line, col)
}

func (s *scanner) word(line, col int) {
	start := s.pos
	for s.pos < len(s.src) && !isSpace(s.src[s.pos]) && !isSpecial(s.src[s.pos]) {
		s.advance()
	}

	text := s.src[start:s.pos]
	kind := Word
	if IsNumber(text) {
		kind = Number
	}
	s.emit(kind, text, line, col)
}

func (s *scanner) emit(kind Kind, text string, line, col int) {
	s.tokens = append(s.tokens, Token{Kind: kind, Text: text, Line: line, Column: col})
}

// advance moves one byte forward, counting columns in runes.
func (s *scanner) advance() {
	c := s.src[s.pos]
	s.pos++
	switch {
	case c == '\n':
		s.line++
		s.col = 1
	case c&0xC0 != 0x80:
		s.col++
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isSpecial(c byte) bool {
	switch c {
	case '{', '}', '=', '>', '<', '!', '"':
		return true
	}
	return false
}
