package parser

import (
	"fmt"
	"strconv"

	"pdx-hq/reqgraph/pkg/pdx/ast"
	pdxErrors "pdx-hq/reqgraph/pkg/pdx/errors"
	"pdx-hq/reqgraph/pkg/pdx/lexer"
)

// ParseTokens builds the document mapping from a token stream. It never fails:
// structural problems are recovered from and the result is best effort.
func ParseTokens(tokens []lexer.Token) *ast.Value {
	b := newBlockParser(tokens, "", pdxErrors.NewErrorList())
	return b.parseDocument()
}

// blockParser is a recursive-descent parser over a token slice. Every "{"
// recurses before control returns, so the "}" a call sees is its own.
type blockParser struct {
	tokens []lexer.Token
	pos    int
	source string
	diags  *pdxErrors.ErrorList
}

func newBlockParser(tokens []lexer.Token, source string, diags *pdxErrors.ErrorList) *blockParser {
	return &blockParser{
		tokens: tokens,
		source: source,
		diags:  diags,
	}
}

func (b *blockParser) eof() bool {
	return b.pos >= len(b.tokens)
}

func (b *blockParser) peek() lexer.Token {
	return b.tokens[b.pos]
}

func (b *blockParser) next() lexer.Token {
	tok := b.tokens[b.pos]
	b.pos++
	return tok
}

func (b *blockParser) location(tok lexer.Token) ast.Location {
	return ast.Location{File: b.source, Line: tok.Line, Column: tok.Column}
}

// collector gathers the two provisional halves of a block.
type collector struct {
	mapping *ast.Mapping
	items   []*ast.Value
}

func newCollector() *collector {
	return &collector{mapping: &ast.Mapping{}}
}

// parseDocument parses the top level. Bare names there are flags and get the
// value yes, which is a quirk of the format kept for compatibility.
func (b *blockParser) parseDocument() *ast.Value {
	c := newCollector()

	for !b.eof() {
		tok := b.peek()
		if tok.Kind == lexer.BraceClose {
			b.next()
			b.diags.AddErrorWithSuggestion(pdxErrors.ErrorTypeStructural,
				"Unexpected '}' with no open block",
				b.location(tok),
				"Remove the extra '}'",
			)
			continue
		}
		b.parseEntry(c, true)
	}

	root := b.resolve(c, true)
	root.Location = ast.Location{File: b.source, Line: 1, Column: 1}
	return root
}

// parseBlock parses the body of a block whose "{" has been consumed.
func (b *blockParser) parseBlock(open lexer.Token) *ast.Value {
	c := newCollector()

	for {
		if b.eof() {
			b.diags.AddErrorWithSuggestion(pdxErrors.ErrorTypeStructural,
				"Block opened here is never closed",
				b.location(open),
				pdxErrors.SuggestClosingBrace(1),
			)
			break
		}
		if b.peek().Kind == lexer.BraceClose {
			b.next()
			break
		}
		b.parseEntry(c, false)
	}

	v := b.resolve(c, false)
	v.Location = b.location(open)
	return v
}

// parseEntry consumes one entry of a block or of the document.
func (b *blockParser) parseEntry(c *collector, topLevel bool) {
	tok := b.next()

	switch tok.Kind {
	case lexer.BraceOpen:
		c.items = append(c.items, b.parseBlock(tok))

	case lexer.Equals:
		b.diags.AddError(pdxErrors.ErrorTypeStructural,
			"'=' has no key before it",
			b.location(tok),
		)

	case lexer.Comparator:
		v := ast.NewString(tok.Text)
		v.Location = b.location(tok)
		c.items = append(c.items, v)

	default:
		b.parseNamed(c, tok, topLevel)
	}
}

// parseNamed handles a name token according to what follows it.
func (b *blockParser) parseNamed(c *collector, name lexer.Token, topLevel bool) {
	if b.eof() {
		b.bare(c, name, topLevel)
		return
	}

	switch follow := b.peek(); follow.Kind {
	case lexer.Equals:
		b.next()
		value := b.parseValue()
		if value == nil {
			b.diags.AddErrorWithSuggestion(pdxErrors.ErrorTypeStructural,
				fmt.Sprintf("'%s =' has no value", name.Text),
				b.location(follow),
				"Add a value after '='",
			)
			return
		}
		c.mapping.Assign(name.Text, value)

	case lexer.Comparator:
		b.next()
		operand, quoted := "", false
		if !b.eof() && b.peek().IsName() {
			op := b.next()
			operand, quoted = op.Text, op.Kind == lexer.QuotedString
		}
		v := ast.NewComparison(name.Text, follow.Text, operand, quoted)
		v.Location = b.location(name)
		c.items = append(c.items, v)

	case lexer.BraceOpen:
		// "name { ... }" is read as "name = { ... }".
		b.next()
		c.mapping.Assign(name.Text, b.parseBlock(follow))

	default:
		b.bare(c, name, topLevel)
	}
}

func (b *blockParser) bare(c *collector, name lexer.Token, topLevel bool) {
	if topLevel {
		v := ast.NewBool(true)
		v.Location = b.location(name)
		c.mapping.Assign(name.Text, v)
		return
	}
	c.items = append(c.items, b.literal(name))
}

// parseValue parses the right-hand side of an assignment. It returns nil when
// there is no value (end of input or a closing brace).
func (b *blockParser) parseValue() *ast.Value {
	for !b.eof() {
		tok := b.peek()

		switch tok.Kind {
		case lexer.BraceClose:
			return nil

		case lexer.BraceOpen:
			b.next()
			return b.parseBlock(tok)

		case lexer.Equals:
			// "a == b" reads as "a = b".
			b.next()
			continue

		case lexer.Comparator:
			b.next()
			v := ast.NewString(tok.Text)
			v.Location = b.location(tok)
			return v

		case lexer.Word:
			b.next()
			var v *ast.Value
			switch tok.Text {
			case "yes":
				v = ast.NewBool(true)
			case "no":
				v = ast.NewBool(false)
			default:
				v = ast.NewString(tok.Text)
			}
			v.Location = b.location(tok)
			return v

		default:
			b.next()
			return b.literal(tok)
		}
	}
	return nil
}

// literal converts a single token to a scalar value without interpretation
// of yes/no.
func (b *blockParser) literal(tok lexer.Token) *ast.Value {
	var v *ast.Value
	if tok.Kind == lexer.Number {
		n, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			v = ast.NewString(tok.Text)
		} else {
			v = ast.NewNumber(n)
		}
	} else {
		v = ast.NewString(tok.Text)
	}
	v.Location = b.location(tok)
	return v
}

// resolve decides what a block is: a pure list when no keys were assigned,
// otherwise a mapping with any bare items stored under ast.ItemsKey. An
// explicit items key keeps its own declaration next to the bare items.
func (b *blockParser) resolve(c *collector, topLevel bool) *ast.Value {
	if c.mapping.Len() == 0 && !topLevel {
		if c.items == nil {
			c.items = []*ast.Value{}
		}
		return ast.NewList(c.items...)
	}
	if len(c.items) > 0 {
		if c.mapping.Has(ast.ItemsKey) {
			b.diags.AddErrorWithSuggestion(pdxErrors.ErrorTypeStructural,
				fmt.Sprintf("Bare items share the block with an explicit '%s' key", ast.ItemsKey),
				c.items[0].Location,
				fmt.Sprintf("Move the bare items into the '%s' block", ast.ItemsKey),
			)
		}
		c.mapping.Assign(ast.ItemsKey, ast.NewList(c.items...))
	}
	return ast.NewMapping(c.mapping)
}
