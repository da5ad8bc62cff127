package requirements

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Atom is one required identifier, or an alternative group meaning "at least
// one of these identifiers is required".
type Atom struct {
	ID           string   // Set for a single identifier
	Alternatives []string // Set for an alternative group
}

// Single creates an atom for one identifier.
func Single(id string) Atom {
	return Atom{ID: id}
}

// Group creates an alternative group atom. Duplicate identifiers are dropped,
// keeping first occurrence order.
func Group(ids ...string) Atom {
	return Atom{Alternatives: uniqueStrings(ids)}
}

// IsGroup reports whether the atom is an alternative group.
func (a Atom) IsGroup() bool {
	return a.Alternatives != nil
}

// Equal reports whether two atoms hold the same content.
func (a Atom) Equal(b Atom) bool {
	if a.IsGroup() != b.IsGroup() {
		return false
	}
	if !a.IsGroup() {
		return a.ID == b.ID
	}
	if len(a.Alternatives) != len(b.Alternatives) {
		return false
	}
	for i := range a.Alternatives {
		if a.Alternatives[i] != b.Alternatives[i] {
			return false
		}
	}
	return true
}

// String renders a single atom as its identifier and a group as "[a|b|c]".
func (a Atom) String() string {
	if a.IsGroup() {
		return "[" + strings.Join(a.Alternatives, "|") + "]"
	}
	return a.ID
}

// MarshalJSON encodes a single atom as a string and a group as an array.
func (a Atom) MarshalJSON() ([]byte, error) {
	if a.IsGroup() {
		return json.Marshal(a.Alternatives)
	}
	return json.Marshal(a.ID)
}

// UnmarshalJSON accepts a string or an array of strings.
func (a *Atom) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*a = Single(id)
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("atom must be a string or an array of strings: %w", err)
	}
	*a = Atom{Alternatives: ids}
	if a.Alternatives == nil {
		a.Alternatives = []string{}
	}
	return nil
}

// MarshalYAML encodes a single atom as a scalar and a group as a flow sequence.
func (a Atom) MarshalYAML() (interface{}, error) {
	if !a.IsGroup() {
		return a.ID, nil
	}
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, id := range a.Alternatives {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: id})
	}
	return node, nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (a *Atom) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*a = Single(node.Value)
		return nil
	case yaml.SequenceNode:
		ids := make([]string, 0, len(node.Content))
		if err := node.Decode(&ids); err != nil {
			return err
		}
		*a = Atom{Alternatives: ids}
		return nil
	default:
		return fmt.Errorf("line %d: atom must be a scalar or a sequence", node.Line)
	}
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
