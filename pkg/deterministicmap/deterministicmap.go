// Package deterministicmap provides a sorted, deterministically-iterable
// map used by the light-client consensus state cache (spec.md §4.E): a
// chain runtime keeps one per counterparty client, keyed by height, and
// needs ordered traversal to find the latest trusted height at or below
// a target.
package deterministicmap

import (
	"cmp"
	"sort"
)

// Map is a deterministic, sorted map with lazy sorting. Iteration order is
// canonical and stable across executions.
type Map[K cmp.Ordered, V any] struct {
	data   map[K]V
	keys   []K
	sorted bool
}

// New creates an initialized sorted Map. The zero value of Map is also
// safe to use.
func New[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{
		data:   make(map[K]V),
		sorted: true,
	}
}

func (m *Map[K, V]) ensure() {
	if m.data == nil {
		m.data = make(map[K]V)
		m.sorted = true
	}
}

// Set inserts or updates a key/value pair. Insertion of a new key
// invalidates sort order.
func (m *Map[K, V]) Set(key K, value V) {
	m.ensure()

	if _, exists := m.data[key]; !exists {
		m.keys = append(m.keys, key)
		m.sorted = false
	}

	m.data[key] = value
}

// Get retrieves a value by key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if m.data == nil {
		var zero V
		return zero, false
	}
	v, ok := m.data[key]
	return v, ok
}

// Delete removes a key/value pair. Deletion invalidates sort order.
func (m *Map[K, V]) Delete(key K) {
	if m.data == nil {
		return
	}

	if _, exists := m.data[key]; !exists {
		return
	}

	delete(m.data, key)

	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}

	m.sorted = false
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	if m.data == nil {
		return 0
	}
	return len(m.keys)
}

func (m *Map[K, V]) ensureSorted() {
	if m.sorted {
		return
	}
	sort.Slice(m.keys, func(i, j int) bool {
		return m.keys[i] < m.keys[j]
	})
	m.sorted = true
}

// Range iterates over the map in deterministic sorted order. Returning
// false from fn stops iteration.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	if m.data == nil {
		return
	}

	m.ensureSorted()

	for _, k := range m.keys {
		if !fn(k, m.data[k]) {
			return
		}
	}
}

// Keys returns a copy of the sorted keys.
func (m *Map[K, V]) Keys() []K {
	if m.data == nil {
		return nil
	}
	m.ensureSorted()
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// First returns the smallest key's entry.
func (m *Map[K, V]) First() (key K, value V, ok bool) {
	if m.Len() == 0 {
		return key, value, false
	}
	m.ensureSorted()
	k := m.keys[0]
	return k, m.data[k], true
}

// Last returns the largest key's entry.
func (m *Map[K, V]) Last() (key K, value V, ok bool) {
	if m.Len() == 0 {
		return key, value, false
	}
	m.ensureSorted()
	k := m.keys[len(m.keys)-1]
	return k, m.data[k], true
}

// FloorBefore returns the entry with the largest key that is <= target, or
// ok=false if every key exceeds target. Used to find the latest trusted
// consensus state at or below a queried height.
func (m *Map[K, V]) FloorBefore(target K) (key K, value V, ok bool) {
	if m.Len() == 0 {
		return key, value, false
	}
	m.ensureSorted()

	idx := sort.Search(len(m.keys), func(i int) bool {
		return m.keys[i] > target
	})
	if idx == 0 {
		return key, value, false
	}
	k := m.keys[idx-1]
	return k, m.data[k], true
}
