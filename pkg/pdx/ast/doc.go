// Package ast defines the generic value tree produced by parsing Paradox-style
// (Clausewitz engine) data files.
//
// The format has no schema: the same "{ ... }" block may hold an ordered list,
// a keyed mapping, or both. The parser resolves that ambiguity and the result
// is expressed with a single tagged union:
//
//	Value
//	├── string      bare words and quoted strings
//	├── number      optional-sign integers and decimals
//	├── bool        yes / no
//	├── comparison  "name > operand" items written without "="
//	├── list        ordered []*Value
//	└── mapping     ordered (key, *Value) pairs
//
// A block containing both assignments and bare items becomes a mapping whose
// list part is stored under the reserved key "items" (see ItemsKey).
//
// # Repeated keys
//
// Keys repeated within a block are coalesced into an ordered list by
// Mapping.Assign. Callers that want "every declaration of key" iterate with
// Each, which treats any value uniformly as zero or more values:
//
//	for _, block := range ast.Each(entity.Get("possible")) {
//	    // one iteration per possible = { ... } declaration
//	}
//
// # Encoding
//
// Values encode to JSON and YAML preserving mapping order (MarshalJSON,
// MarshalYAML), which is what "reqgraph parse" prints.
//
// # Immutability
//
// Value trees should be treated as immutable after the parser returns them.
package ast
