// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package orderedset provides append-only interning tables that hand out
// dense integer IDs in insertion order.
package orderedset // import "go.opentelemetry.io/stackprof/internal/orderedset"

// Table maps lookup keys of type K to dense IDs and keeps the stored values of
// type V in insertion order. The first inserted value receives the ID base,
// every following one base+1, base+2 and so on. Entries are never removed or
// renumbered.
//
// K and V are chosen independently: the key carries the full identity used for
// deduplication while the value is what ends up in the output.
type Table[K comparable, V any] struct {
	base   uint64
	index  map[K]uint64
	values []V
}

// New returns an empty table whose first ID will be base.
func New[K comparable, V any](base uint64, capacity int) *Table[K, V] {
	return &Table[K, V]{
		base:   base,
		index:  make(map[K]uint64, capacity),
		values: make([]V, 0, capacity),
	}
}

// GetOrCreate returns the ID for key. If key was not seen before, the next ID
// is allocated, newValue is called with it and its result is appended to the
// table. The returned bool reports whether key already existed, in which case
// newValue is not called.
func (t *Table[K, V]) GetOrCreate(key K, newValue func(id uint64) V) (uint64, bool) {
	if id, exists := t.index[key]; exists {
		return id, true
	}

	id := t.base + uint64(len(t.values))
	t.values = append(t.values, newValue(id))
	t.index[key] = id
	return id, false
}

// At returns a pointer to the value stored under id. The pointer is only
// valid until the next insertion.
func (t *Table[K, V]) At(id uint64) *V {
	return &t.values[id-t.base]
}

// Len returns the number of entries.
func (t *Table[K, V]) Len() int {
	return len(t.values)
}

// Values returns the stored values in ID order. The slice is owned by the
// table and must not be modified.
func (t *Table[K, V]) Values() []V {
	return t.values
}
