package pipeline

import (
	"fmt"

	"dario.cat/mergo"

	"pdx-hq/reqgraph/pkg/config"
	"pdx-hq/reqgraph/pkg/requirements"
)

// collectionSpec pairs a resolved collection config with its source patterns.
type collectionSpec struct {
	config *requirements.CollectionConfig
	paths  []string
}

// ResolveCollection turns a configured collection into the config the
// extractor uses. Settings given in the file are merged over the built-in
// collection named by Builtin (or Name); schema keys are added to the
// built-in ones, not substituted for them.
func ResolveCollection(cc config.CollectionConfig) (*requirements.CollectionConfig, error) {
	role, err := requirements.ParseClosureRole(cc.Closure)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", cc.Name, err)
	}

	base := &requirements.CollectionConfig{}
	builtinName := cc.Builtin
	if builtinName == "" {
		builtinName = cc.Name
	}
	if builtin, err := requirements.BuiltinCollection(builtinName); err == nil {
		base = builtin
	} else if cc.Builtin != "" {
		return nil, fmt.Errorf("collection %q: %w", cc.Name, err)
	}

	override := requirements.CollectionConfig{
		Name: cc.Name,
		Schema: requirements.Schema{
			Keys:     cc.Keys,
			Sections: cc.Sections,
		},
		IncludeFlags: cc.IncludeFlags,
		ExcludeFlags: cc.ExcludeFlags,
		Availability: requirements.Availability{
			Block:     cc.Availability.Block,
			Predicate: cc.Availability.Predicate,
		},
	}
	if cc.Closure != "" {
		override.Closure = role
	}

	if base.Schema.Keys == nil {
		base.Schema.Keys = make(map[string]string)
	}
	if err := mergo.Merge(base, override, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("collection %q: failed to merge settings: %w", cc.Name, err)
	}

	// An explicit false must survive the merge, which skips zero values.
	if cc.FlattenSingleAlternatives != nil {
		base.FlattenSingleAlternatives = *cc.FlattenSingleAlternatives
	}
	if base.Closure == "" {
		base.Closure = requirements.ClosureBoth
	}

	return base, nil
}

// resolveCollections resolves every configured collection in order.
func resolveCollections(cfg *config.Config) ([]collectionSpec, error) {
	specs := make([]collectionSpec, 0, len(cfg.Collections))
	for _, cc := range cfg.Collections {
		rc, err := ResolveCollection(cc)
		if err != nil {
			return nil, err
		}
		specs = append(specs, collectionSpec{config: rc, paths: cc.Paths})
	}
	return specs, nil
}

// ClosureOptions builds closure options from the configuration.
func ClosureOptions(cfg *config.Config) requirements.ClosureOptions {
	return requirements.ClosureOptions{
		Facet:      cfg.Closure.Facet,
		LinkFacets: cfg.Closure.LinkFacets,
	}
}
