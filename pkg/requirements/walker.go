package requirements

import "pdx-hq/reqgraph/pkg/pdx/ast"

// Condition operators recognized inside a facet node.
const (
	opOr    = "OR"
	opNor   = "NOR"
	opNot   = "NOT"
	opValue = "value"
)

// Extract walks a condition node (a potential or possible block, or a list of
// them when the section is declared more than once) and classifies what each
// schema-mapped key requires and forbids.
//
// Per facet node:
//   - OR: each OR block becomes one alternative group; empty groups are dropped
//   - NOR, NOT: gathered identifiers are appended to the forbidden list
//   - value: gathered identifiers are appended to the required list
//
// Unmapped keys are ignored. The result is deduplicated.
func Extract(node *ast.Value, schema *Schema) *RequirementSet {
	rs := NewRequirementSet()
	extractInto(rs, node, schema)
	rs.Dedupe()
	return rs
}

// ExtractEntity extracts every condition section of an entity body named by
// the collection's schema into one set, flattening single alternatives when
// the collection enables it.
func ExtractEntity(body *ast.Value, cfg *CollectionConfig) *RequirementSet {
	rs := NewRequirementSet()
	for _, section := range cfg.Schema.ConditionSections() {
		extractInto(rs, body.Get(section), &cfg.Schema)
	}
	if cfg.FlattenSingleAlternatives {
		rs.FlattenSingleAlternatives()
	}
	rs.Dedupe()
	return rs
}

func extractInto(rs *RequirementSet, node *ast.Value, schema *Schema) {
	for _, block := range ast.Each(node) {
		if !block.IsMapping() {
			continue
		}
		for _, entry := range block.Mapping.Entries {
			facet, ok := schema.Facet(entry.Key)
			if !ok {
				continue
			}
			for _, facetNode := range ast.Each(entry.Value) {
				extractFacet(rs, facet, facetNode)
			}
		}
	}
}

func extractFacet(rs *RequirementSet, facet string, node *ast.Value) {
	if !node.IsMapping() {
		return
	}

	for _, orBlock := range ast.Each(node.Get(opOr)) {
		if ids := Gather(orBlock); len(ids) > 0 {
			rs.AddRequired(facet, Group(ids...))
		}
	}

	rs.AddForbidden(facet, Gather(node.Get(opNor))...)
	rs.AddForbidden(facet, Gather(node.Get(opNot))...)

	for _, id := range Gather(node.Get(opValue)) {
		rs.AddRequired(facet, Single(id))
	}
}
