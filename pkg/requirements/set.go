package requirements

import "sort"

// RequirementSet holds, per facet, what an entity requires and what it forbids.
// Required lists may contain alternative groups; forbidden lists are always
// flat identifiers.
type RequirementSet struct {
	Required  map[string][]Atom   `json:"required,omitempty" yaml:"required,omitempty"`
	Forbidden map[string][]string `json:"forbidden,omitempty" yaml:"forbidden,omitempty"`
}

// NewRequirementSet creates an empty set.
func NewRequirementSet() *RequirementSet {
	return &RequirementSet{
		Required:  make(map[string][]Atom),
		Forbidden: make(map[string][]string),
	}
}

// AddRequired appends atoms to the facet's required list.
func (rs *RequirementSet) AddRequired(facet string, atoms ...Atom) {
	if len(atoms) == 0 {
		return
	}
	if rs.Required == nil {
		rs.Required = make(map[string][]Atom)
	}
	rs.Required[facet] = append(rs.Required[facet], atoms...)
}

// AddForbidden appends identifiers to the facet's forbidden list.
func (rs *RequirementSet) AddForbidden(facet string, ids ...string) {
	if len(ids) == 0 {
		return
	}
	if rs.Forbidden == nil {
		rs.Forbidden = make(map[string][]string)
	}
	rs.Forbidden[facet] = append(rs.Forbidden[facet], ids...)
}

// RequiredIDs returns the single (non-group) identifiers required for facet.
func (rs *RequirementSet) RequiredIDs(facet string) []string {
	var ids []string
	for _, a := range rs.Required[facet] {
		if !a.IsGroup() {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Alternatives returns the alternative groups required for facet.
func (rs *RequirementSet) Alternatives(facet string) [][]string {
	var groups [][]string
	for _, a := range rs.Required[facet] {
		if a.IsGroup() {
			groups = append(groups, a.Alternatives)
		}
	}
	return groups
}

// Facets returns every facet mentioned on either side, sorted.
func (rs *RequirementSet) Facets() []string {
	seen := make(map[string]struct{})
	for f := range rs.Required {
		seen[f] = struct{}{}
	}
	for f := range rs.Forbidden {
		seen[f] = struct{}{}
	}
	facets := make([]string, 0, len(seen))
	for f := range seen {
		facets = append(facets, f)
	}
	sort.Strings(facets)
	return facets
}

// IsEmpty reports whether the set has no requirements at all.
func (rs *RequirementSet) IsEmpty() bool {
	return len(rs.Required) == 0 && len(rs.Forbidden) == 0
}

// Dedupe reduces every required and forbidden list to first-occurrence unique
// values. Single atoms are compared by identifier; alternative groups are
// left alone, so two identical groups both survive.
func (rs *RequirementSet) Dedupe() {
	for facet, atoms := range rs.Required {
		out := make([]Atom, 0, len(atoms))
		seen := make(map[string]struct{}, len(atoms))
		for _, a := range atoms {
			if !a.IsGroup() {
				if _, ok := seen[a.ID]; ok {
					continue
				}
				seen[a.ID] = struct{}{}
			}
			out = append(out, a)
		}
		rs.Required[facet] = out
	}
	for facet, ids := range rs.Forbidden {
		rs.Forbidden[facet] = uniqueStrings(ids)
	}
}

// FlattenSingleAlternatives turns every required group holding exactly one
// identifier into a single atom, since a one-element alternative is a hard
// requirement. Forbidden lists are never affected.
func (rs *RequirementSet) FlattenSingleAlternatives() {
	for facet, atoms := range rs.Required {
		for i, a := range atoms {
			if a.IsGroup() && len(a.Alternatives) == 1 {
				atoms[i] = Single(a.Alternatives[0])
			}
		}
		rs.Required[facet] = atoms
	}
}

// Clone returns a deep copy.
func (rs *RequirementSet) Clone() *RequirementSet {
	out := NewRequirementSet()
	for facet, atoms := range rs.Required {
		cp := make([]Atom, len(atoms))
		for i, a := range atoms {
			cp[i] = a
			if a.IsGroup() {
				cp[i].Alternatives = append([]string{}, a.Alternatives...)
			}
		}
		out.Required[facet] = cp
	}
	for facet, ids := range rs.Forbidden {
		out.Forbidden[facet] = append([]string{}, ids...)
	}
	return out
}
