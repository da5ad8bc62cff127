package ast

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value *Value
}

// Mapping is an ordered sequence of key/value pairs with unique keys.
// Keys repeated in the source are coalesced by Assign.
type Mapping struct {
	Entries []Entry
	index   map[string]int
}

// NewMappingOf builds a mapping by assigning each entry in order, so repeated
// keys coalesce exactly as they do when parsed.
func NewMappingOf(entries ...Entry) *Mapping {
	m := &Mapping{}
	for _, e := range entries {
		m.Assign(e.Key, e.Value)
	}
	return m
}

// Len returns the number of distinct keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Get returns the value stored under key, or nil.
func (m *Mapping) Get(key string) *Value {
	if m == nil {
		return nil
	}
	if m.index == nil {
		for _, e := range m.Entries {
			if e.Key == key {
				return e.Value
			}
		}
		return nil
	}
	if i, ok := m.index[key]; ok {
		return m.Entries[i].Value
	}
	return nil
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	return m.Get(key) != nil
}

// Keys returns the keys in first-assignment order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Assign stores value under key using the duplicate-key coalescing rule:
// the first assignment stores the value as-is; a second assignment turns the
// stored value into a two-element list marked Multi and every later assignment
// appends to that list. A list-valued block assigned first stays one element,
// so "k = { a b } k = c" holds two declarations, not three items. The key
// keeps its original position.
func (m *Mapping) Assign(key string, value *Value) {
	if m.index == nil {
		m.index = make(map[string]int, len(m.Entries)+1)
		for i, e := range m.Entries {
			m.index[e.Key] = i
		}
	}

	i, exists := m.index[key]
	if !exists {
		m.index[key] = len(m.Entries)
		m.Entries = append(m.Entries, Entry{Key: key, Value: value})
		return
	}

	existing := m.Entries[i].Value
	if existing.Multi {
		existing.List = append(existing.List, value)
		return
	}
	list := NewList(existing, value)
	list.Multi = true
	list.Location = existing.Location
	m.Entries[i].Value = list
}
