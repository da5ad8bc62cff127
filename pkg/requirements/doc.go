// Package requirements extracts per-entity requirement sets from parsed
// condition trees and closes the incompatibility relation across entity
// collections.
//
// Extraction is driven by a CollectionConfig: a Schema maps raw condition keys
// to facets, and per-collection toggles control single-alternative flattening,
// entity selection and the role the collection plays in closure.
//
// Closure runs in two phases. Collect reads every collection and produces an
// immutable Relation; Apply returns new collections whose forbidden
// lists for the closure facet include the relation.
package requirements
