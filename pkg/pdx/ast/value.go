package ast

import (
	"strconv"
	"strings"
)

// Kind identifies which variant of the Value tagged union is populated.
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindBool       Kind = "bool"
	KindComparison Kind = "comparison" // name operator operand, e.g. "size > 5"
	KindList       Kind = "list"
	KindMapping    Kind = "mapping"
)

// ItemsKey is the reserved mapping key under which the list part of a block
// holding both keyed assignments and bare items is stored.
const ItemsKey = "items"

// Value is a node of a parsed document. Exactly one payload field is meaningful,
// selected by Kind. Values are immutable once the parser returns them.
type Value struct {
	Kind       Kind
	Str        string
	Num        float64
	Bool       bool
	Comparison *Comparison
	List       []*Value
	Mapping    *Mapping
	Location   Location

	// Multi marks a list built by coalescing a repeated key. Each splits
	// only these; any other list is a single value.
	Multi bool
}

// Comparison is a condition written without "=", such as "num_pops >= 10".
type Comparison struct {
	Name     string
	Operator string
	Operand  string
	Quoted   bool // Operand came from a quoted string
}

// String formats the comparison as "name operator operand", re-quoting the
// operand when it was quoted in the source.
func (c *Comparison) String() string {
	operand := c.Operand
	if c.Quoted {
		operand = strconv.Quote(operand)
	}
	if operand == "" {
		return c.Name + " " + c.Operator
	}
	return c.Name + " " + c.Operator + " " + operand
}

// NewString creates a string value.
func NewString(s string) *Value { return &Value{Kind: KindString, Str: s} }

// NewNumber creates a numeric value.
func NewNumber(n float64) *Value { return &Value{Kind: KindNumber, Num: n} }

// NewBool creates a boolean value.
func NewBool(b bool) *Value { return &Value{Kind: KindBool, Bool: b} }

// NewList creates a list value from the given items.
func NewList(items ...*Value) *Value { return &Value{Kind: KindList, List: items} }

// NewMapping creates a mapping value wrapping m.
func NewMapping(m *Mapping) *Value {
	if m == nil {
		m = &Mapping{}
	}
	return &Value{Kind: KindMapping, Mapping: m}
}

// NewComparison creates a comparison value.
func NewComparison(name, operator, operand string, quoted bool) *Value {
	return &Value{Kind: KindComparison, Comparison: &Comparison{
		Name:     name,
		Operator: operator,
		Operand:  operand,
		Quoted:   quoted,
	}}
}

// IsString returns true if v is a non-nil string value.
func (v *Value) IsString() bool { return v != nil && v.Kind == KindString }

// IsList returns true if v is a non-nil list value.
func (v *Value) IsList() bool { return v != nil && v.Kind == KindList }

// IsMapping returns true if v is a non-nil mapping value.
func (v *Value) IsMapping() bool { return v != nil && v.Kind == KindMapping }

// IsTrue reports whether v is the boolean yes.
func (v *Value) IsTrue() bool { return v != nil && v.Kind == KindBool && v.Bool }

// Get looks up key when v is a mapping. It returns nil otherwise.
func (v *Value) Get(key string) *Value {
	if !v.IsMapping() {
		return nil
	}
	return v.Mapping.Get(key)
}

// Has reports whether v is a mapping containing key.
func (v *Value) Has(key string) bool {
	return v.Get(key) != nil
}

// Items returns the list part of a mixed block, or nil.
func (v *Value) Items() []*Value {
	items := v.Get(ItemsKey)
	if items.IsList() {
		return items.List
	}
	return nil
}

// Each returns v as "zero or more" values: a coalesced repeated key yields
// one value per declaration, nil yields nothing, and any other value
// (including a list written as a block) yields itself.
func Each(v *Value) []*Value {
	switch {
	case v == nil:
		return nil
	case v.Multi:
		return v.List
	default:
		return []*Value{v}
	}
}

// String renders scalar values as they would appear in source. Lists and
// mappings render in a compact brace form.
func (v *Value) String() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "yes"
		}
		return "no"
	case KindComparison:
		return v.Comparison.String()
	case KindList:
		parts := make([]string, 0, len(v.List))
		for _, item := range v.List {
			parts = append(parts, item.String())
		}
		return "{ " + strings.Join(parts, " ") + " }"
	case KindMapping:
		var sb strings.Builder
		sb.WriteString("{ ")
		for _, e := range v.Mapping.Entries {
			sb.WriteString(e.Key)
			sb.WriteString(" = ")
			sb.WriteString(e.Value.String())
			sb.WriteString(" ")
		}
		sb.WriteString("}")
		return sb.String()
	}
	return ""
}
