package requirements

import "sort"

// ClosureOptions configures incompatibility closure.
type ClosureOptions struct {
	// Facet is the facet whose forbidden lists are made symmetric.
	// Default: civics
	Facet string

	// LinkFacets are facets whose forbidden entries also produce edges when
	// they name a member of a target collection. A link edge is one-way: the
	// named target gains the declaring entity, the declaring entity's Facet
	// list is left alone.
	// Default: origins
	LinkFacets []string
}

// DefaultClosureOptions returns the options used for the built-in collections.
func DefaultClosureOptions() ClosureOptions {
	return ClosureOptions{
		Facet:      FacetCivics,
		LinkFacets: []string{FacetOrigins},
	}
}

func (o ClosureOptions) withDefaults() ClosureOptions {
	if o.Facet == "" {
		o.Facet = FacetCivics
	}
	if o.LinkFacets == nil {
		o.LinkFacets = []string{FacetOrigins}
	}
	return o
}

// Relation is an immutable incompatibility relation. Edges collected from the
// closure facet are symmetric; link-facet edges run from the target only.
type Relation struct {
	facet string
	edges map[string][]string
	pairs int
}

// Facet returns the facet the relation was collected for.
func (r *Relation) Facet() string {
	return r.facet
}

// Forbidden returns the sorted identifiers incompatible with id.
// The returned slice must not be modified.
func (r *Relation) Forbidden(id string) []string {
	return r.edges[id]
}

// Has reports whether a forbids b.
func (r *Relation) Has(a, b string) bool {
	list := r.edges[a]
	i := sort.SearchStrings(list, b)
	return i < len(list) && list[i] == b
}

// IDs returns every identifier that takes part in the relation, sorted.
func (r *Relation) IDs() []string {
	ids := make([]string, 0, len(r.edges))
	for id := range r.edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of distinct incompatible pairs, ignoring direction.
func (r *Relation) Len() int {
	return r.pairs
}

// Collect builds the relation from the forbidden declarations of every source
// collection. Declarations under a link facet only count when they name a
// member of a target collection. Identifiers that match no entity are kept.
func Collect(collections []*Collection, opts ClosureOptions) *Relation {
	opts = opts.withDefaults()

	targets := make(map[string]struct{})
	for _, c := range collections {
		if !c.Role.IsTarget() {
			continue
		}
		for _, e := range c.Entities {
			targets[e.ID] = struct{}{}
		}
	}

	pending := make(map[string]map[string]struct{})
	pairs := make(map[[2]string]struct{})
	link := func(from, to string) {
		set, ok := pending[from]
		if !ok {
			set = make(map[string]struct{})
			pending[from] = set
		}
		set[to] = struct{}{}
		if from < to {
			pairs[[2]string{from, to}] = struct{}{}
		} else {
			pairs[[2]string{to, from}] = struct{}{}
		}
	}
	add := func(a, b string) {
		if a == b {
			return
		}
		link(a, b)
		link(b, a)
	}

	for _, c := range collections {
		if !c.Role.IsSource() {
			continue
		}
		for _, e := range c.Entities {
			if e.Requirements == nil {
				continue
			}
			for _, id := range e.Requirements.Forbidden[opts.Facet] {
				add(e.ID, id)
			}
			for _, facet := range opts.LinkFacets {
				if facet == opts.Facet {
					continue
				}
				for _, id := range e.Requirements.Forbidden[facet] {
					if _, ok := targets[id]; ok && id != e.ID {
						link(id, e.ID)
					}
				}
			}
		}
	}

	edges := make(map[string][]string, len(pending))
	for id, set := range pending {
		list := make([]string, 0, len(set))
		for other := range set {
			list = append(list, other)
		}
		sort.Strings(list)
		edges[id] = list
	}
	return &Relation{facet: opts.Facet, edges: edges, pairs: len(pairs)}
}

// Apply returns new collections whose target entities forbid, under the
// relation's facet, the sorted union of what they declared and what the
// relation says. The input collections are not modified.
func (r *Relation) Apply(collections []*Collection) []*Collection {
	out := make([]*Collection, len(collections))
	for i, c := range collections {
		nc := NewCollection(c.Name, c.Role)
		nc.Pruned = append([]string(nil), c.Pruned...)
		for _, e := range c.Entities {
			rs := e.Requirements
			if rs == nil {
				rs = NewRequirementSet()
			} else {
				rs = rs.Clone()
			}
			if c.Role.IsTarget() {
				r.rewrite(rs, e.ID)
			}
			nc.Put(&Entity{ID: e.ID, Requirements: rs})
		}
		out[i] = nc
	}
	return out
}

func (r *Relation) rewrite(rs *RequirementSet, id string) {
	merged := make(map[string]struct{})
	for _, other := range rs.Forbidden[r.facet] {
		merged[other] = struct{}{}
	}
	for _, other := range r.edges[id] {
		merged[other] = struct{}{}
	}
	if len(merged) == 0 {
		delete(rs.Forbidden, r.facet)
		return
	}
	list := make([]string, 0, len(merged))
	for other := range merged {
		list = append(list, other)
	}
	sort.Strings(list)
	rs.Forbidden[r.facet] = list
}

// Close collects the relation over collections and applies it in one step.
func Close(collections []*Collection, opts ClosureOptions) ([]*Collection, *Relation) {
	rel := Collect(collections, opts)
	return rel.Apply(collections), rel
}
