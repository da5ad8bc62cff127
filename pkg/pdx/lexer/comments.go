package lexer

import "strings"

// StripComments removes "#" comments that start outside a quoted string.
// A comment runs to end of line; the newline itself is kept so line numbers
// of the remaining text are unchanged.
//
// Quote state toggles on a '"' preceded by an even number (including zero) of
// consecutive backslashes. An odd number means the quote is escaped.
func StripComments(text string) string {
	if strings.IndexByte(text, '#') < 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	inQuote := false
	backslashes := 0

	for i := 0; i < len(text); i++ {
		c := text[i]

		if c == '#' && !inQuote {
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				break
			}
			i += nl - 1
			backslashes = 0
			continue
		}

		if c == '"' && backslashes%2 == 0 {
			inQuote = !inQuote
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}

		sb.WriteByte(c)
	}

	return sb.String()
}
