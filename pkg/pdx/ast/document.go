package ast

// Document is the result of parsing one source text.
type Document struct {
	// Source is the path or logical name the document was parsed from.
	Source string

	// Root is the top-level mapping. It is never nil.
	Root *Value

	// TokenCount is the number of tokens the lexer produced.
	TokenCount int
}

// Entries returns the top-level key/value pairs in source order.
func (d *Document) Entries() []Entry {
	if d == nil || !d.Root.IsMapping() {
		return nil
	}
	return d.Root.Mapping.Entries
}
