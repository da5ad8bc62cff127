package requirements

import (
	"sort"
	"strings"

	"pdx-hq/reqgraph/pkg/pdx/ast"
)

// Entity is an identifier together with its requirements.
type Entity struct {
	ID           string          `json:"id" yaml:"id"`
	Requirements *RequirementSet `json:"requirements" yaml:"requirements"`
}

// Collection is an ordered group of entities of one type.
type Collection struct {
	Name     string    `json:"name" yaml:"name"`
	Entities []*Entity `json:"entities" yaml:"entities"`

	// Pruned lists entities dropped by the availability pre-filter.
	Pruned []string `json:"pruned,omitempty" yaml:"pruned,omitempty"`

	// Role is how the collection takes part in closure.
	Role ClosureRole `json:"-" yaml:"-"`

	index map[string]int
}

// NewCollection creates an empty collection.
func NewCollection(name string, role ClosureRole) *Collection {
	return &Collection{
		Name:  name,
		Role:  role,
		index: make(map[string]int),
	}
}

// Put adds an entity, replacing any earlier entity with the same id in place.
func (c *Collection) Put(e *Entity) {
	if c.index == nil {
		c.reindex()
	}
	if i, ok := c.index[e.ID]; ok {
		c.Entities[i] = e
		return
	}
	c.index[e.ID] = len(c.Entities)
	c.Entities = append(c.Entities, e)
}

// Get returns the entity with the given id, or nil.
func (c *Collection) Get(id string) *Entity {
	if c.index == nil {
		c.reindex()
	}
	if i, ok := c.index[id]; ok {
		return c.Entities[i]
	}
	return nil
}

// Len returns the number of entities.
func (c *Collection) Len() int {
	return len(c.Entities)
}

// IDs returns entity ids in collection order.
func (c *Collection) IDs() []string {
	ids := make([]string, len(c.Entities))
	for i, e := range c.Entities {
		ids[i] = e.ID
	}
	return ids
}

func (c *Collection) reindex() {
	c.index = make(map[string]int, len(c.Entities))
	for i, e := range c.Entities {
		c.index[e.ID] = i
	}
}

// Builder accumulates a collection from one or more parsed documents.
type Builder struct {
	cfg        *CollectionConfig
	collection *Collection
	pruned     map[string]struct{}
}

// NewBuilder creates a builder for the given collection config.
func NewBuilder(cfg *CollectionConfig) *Builder {
	role := cfg.Closure
	if role == "" {
		role = ClosureBoth
	}
	return &Builder{
		cfg:        cfg,
		collection: NewCollection(cfg.Name, role),
		pruned:     make(map[string]struct{}),
	}
}

// AddDocument extracts every entity defined at the top level of doc.
// Scripted variables ("@name"), anonymous top-level blocks and non-block
// values are skipped. When an id is defined more than once, the last
// definition wins.
func (b *Builder) AddDocument(doc *ast.Document) {
	for _, entry := range doc.Entries() {
		if entry.Key == ast.ItemsKey {
			continue
		}
		b.AddEntity(entry.Key, entry.Value)
	}
}

// AddEntity extracts one entity definition. It reports whether the entity was
// kept in the collection.
func (b *Builder) AddEntity(id string, value *ast.Value) bool {
	if strings.HasPrefix(id, "@") {
		return false
	}

	body := lastMapping(value)
	if body == nil || !b.cfg.Selects(body) {
		return false
	}

	if RequiresAbsentExpansion(body, b.cfg.Availability) {
		b.pruned[id] = struct{}{}
		return false
	}
	delete(b.pruned, id)

	b.collection.Put(&Entity{
		ID:           id,
		Requirements: ExtractEntity(body, b.cfg),
	})
	return true
}

// Collection returns the built collection. Pruned ids that were later
// redefined as valid entities are not reported.
func (b *Builder) Collection() *Collection {
	c := b.collection
	c.Pruned = c.Pruned[:0]
	for id := range b.pruned {
		if c.Get(id) == nil {
			c.Pruned = append(c.Pruned, id)
		}
	}
	sort.Strings(c.Pruned)
	return c
}

// lastMapping returns value if it is a block, or the last block of a repeated
// definition.
func lastMapping(value *ast.Value) *ast.Value {
	blocks := ast.Each(value)
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i].IsMapping() {
			return blocks[i]
		}
	}
	return nil
}
