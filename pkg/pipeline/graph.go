package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"pdx-hq/reqgraph/pkg/requirements"
)

// Output formats understood by Encode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Graph is the result of one build: every collection's entities with their
// closed requirement sets.
type Graph struct {
	RunID       string                     `json:"run_id" yaml:"run_id"`
	BuiltAt     time.Time                  `json:"built_at" yaml:"built_at"`
	Source      *Revision                  `json:"source,omitempty" yaml:"source,omitempty"`
	Stats       Stats                      `json:"stats" yaml:"stats"`
	Collections []*requirements.Collection `json:"collections" yaml:"collections"`
}

// Stats summarizes a build.
type Stats struct {
	Files        int   `json:"files" yaml:"files"`
	Tokens       int   `json:"tokens" yaml:"tokens"`
	Diagnostics  int   `json:"diagnostics" yaml:"diagnostics"`
	Entities     int   `json:"entities" yaml:"entities"`
	Pruned       int   `json:"pruned" yaml:"pruned"`
	ClosurePairs int   `json:"closure_pairs" yaml:"closure_pairs"`
	DurationMS   int64 `json:"duration_ms" yaml:"duration_ms"`
}

// Collection returns the collection with the given name, or nil.
func (g *Graph) Collection(name string) *requirements.Collection {
	for _, c := range g.Collections {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Entity looks an entity up across all collections. It returns the first
// match in collection order.
func (g *Graph) Entity(id string) (*requirements.Entity, string) {
	for _, c := range g.Collections {
		if e := c.Get(id); e != nil {
			return e, c.Name
		}
	}
	return nil, ""
}

// Pruned returns the ids dropped by the availability pre-filter, per
// collection. Collections that pruned nothing are omitted.
func (g *Graph) Pruned() map[string][]string {
	out := make(map[string][]string)
	for _, c := range g.Collections {
		if len(c.Pruned) > 0 {
			out[c.Name] = c.Pruned
		}
	}
	return out
}

// Encode writes the graph in the given format ("json" or "yaml").
func (g *Graph) Encode(w io.Writer, format string, pretty bool) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		if pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(g)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// DecodeGraph reads a graph previously written with Encode in JSON format.
func DecodeGraph(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	return &g, nil
}
