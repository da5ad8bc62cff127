package requirements

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Canonical facet identifiers used by the built-in schemas.
const (
	FacetEthics            = "ethics"
	FacetAuthorities       = "authorities"
	FacetCivics            = "civics"
	FacetOrigins           = "origins"
	FacetSpeciesArchetypes = "species_archetypes"
	FacetSpeciesClasses    = "species_classes"
	FacetCultures          = "cultures"
)

// Default condition sections walked when a schema names none.
var DefaultSections = []string{"potential", "possible"}

// Schema maps raw condition keys to canonical facet identifiers. It is pure
// data: keys it does not know are ignored by the walker.
type Schema struct {
	// Keys maps a raw source key (e.g. "authority") to a facet id (e.g. "authorities").
	Keys map[string]string `yaml:"keys" json:"keys"`

	// Sections names the condition blocks of an entity to walk.
	// Default: potential, possible
	Sections []string `yaml:"sections,omitempty" json:"sections,omitempty"`
}

// Facet returns the facet id for a raw key.
func (s *Schema) Facet(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	facet, ok := s.Keys[key]
	return facet, ok
}

// KnownKeys returns the raw keys of the schema, sorted.
func (s *Schema) KnownKeys() []string {
	keys := make([]string, 0, len(s.Keys))
	for k := range s.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConditionSections returns the configured sections or the defaults.
func (s *Schema) ConditionSections() []string {
	if s == nil || len(s.Sections) == 0 {
		return DefaultSections
	}
	return s.Sections
}

// ClosureRole says how a collection takes part in incompatibility closure.
type ClosureRole string

const (
	ClosureBoth   ClosureRole = "both"   // contributes edges and is rewritten
	ClosureSource ClosureRole = "source" // contributes edges only
	ClosureTarget ClosureRole = "target" // is rewritten only
	ClosureNone   ClosureRole = "none"   // ignored by closure
)

// IsSource reports whether the collection's declarations seed the relation.
func (r ClosureRole) IsSource() bool {
	return r == ClosureBoth || r == ClosureSource || r == ""
}

// IsTarget reports whether the collection's forbidden lists are rewritten.
func (r ClosureRole) IsTarget() bool {
	return r == ClosureBoth || r == ClosureTarget || r == ""
}

// ParseClosureRole validates a role name. The empty string means both.
func ParseClosureRole(s string) (ClosureRole, error) {
	switch ClosureRole(s) {
	case "":
		return ClosureBoth, nil
	case ClosureBoth, ClosureSource, ClosureTarget, ClosureNone:
		return ClosureRole(s), nil
	default:
		return "", fmt.Errorf("unknown closure role %q (want both, source, target or none)", s)
	}
}

// Availability configures the pre-filter that drops entities only valid when
// an expansion is absent.
type Availability struct {
	// Block is the availability block key. Default: playable
	Block string `yaml:"block,omitempty" json:"block,omitempty"`

	// Predicate is the "requires expansion" trigger. Default: host_has_dlc
	Predicate string `yaml:"predicate,omitempty" json:"predicate,omitempty"`
}

// CollectionConfig is everything the walker and the closure engine need to
// know about one entity collection.
type CollectionConfig struct {
	Name   string `yaml:"name" json:"name"`
	Schema Schema `yaml:"schema" json:"schema"`

	// FlattenSingleAlternatives unwraps one-element alternative groups.
	FlattenSingleAlternatives bool `yaml:"flatten_single_alternatives" json:"flatten_single_alternatives"`

	Closure ClosureRole `yaml:"closure,omitempty" json:"closure,omitempty"`

	// IncludeFlags lists top-level keys an entity must set to yes to belong here.
	IncludeFlags []string `yaml:"include_flags,omitempty" json:"include_flags,omitempty"`

	// ExcludeFlags lists top-level keys that remove an entity when set to yes.
	ExcludeFlags []string `yaml:"exclude_flags,omitempty" json:"exclude_flags,omitempty"`

	Availability Availability `yaml:"availability,omitempty" json:"availability,omitempty"`
}

//go:embed builtin.yaml
var builtinYAML []byte

// BuiltinCollections returns fresh copies of the built-in Stellaris
// collection configs: civics, origins, ethics and traits.
func BuiltinCollections() ([]*CollectionConfig, error) {
	var doc struct {
		Collections []*CollectionConfig `yaml:"collections"`
	}
	if err := yaml.Unmarshal(builtinYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse built-in schemas: %w", err)
	}
	return doc.Collections, nil
}

// BuiltinCollection returns the built-in config with the given name.
func BuiltinCollection(name string) (*CollectionConfig, error) {
	all, err := BuiltinCollections()
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no built-in collection named %q", name)
}
