package requirements

import "pdx-hq/reqgraph/pkg/pdx/ast"

// Default availability keys.
const (
	DefaultAvailabilityBlock     = "playable"
	DefaultAvailabilityPredicate = "host_has_dlc"
)

// RequiresAbsentExpansion reports whether the entity's availability block
// holds a NOT wrapping the "requires expansion" predicate. Such entities are
// only valid without some expansion and are pruned before extraction.
func RequiresAbsentExpansion(body *ast.Value, availability Availability) bool {
	block := availability.Block
	if block == "" {
		block = DefaultAvailabilityBlock
	}
	predicate := availability.Predicate
	if predicate == "" {
		predicate = DefaultAvailabilityPredicate
	}

	for _, avail := range ast.Each(body.Get(block)) {
		for _, not := range ast.Each(avail.Get(opNot)) {
			if not.Has(predicate) {
				return true
			}
		}
	}
	return false
}

// Selects reports whether an entity body belongs to the collection according
// to its include and exclude flags.
func (c *CollectionConfig) Selects(body *ast.Value) bool {
	for _, flag := range c.IncludeFlags {
		if !body.Get(flag).IsTrue() {
			return false
		}
	}
	for _, flag := range c.ExcludeFlags {
		if body.Get(flag).IsTrue() {
			return false
		}
	}
	return true
}
