// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package interactions

import "fmt"

// IDMap is a bijection between external identifiers and dense indices
// [0, Len()). Indices are assigned in first-seen order.
//
// An IDMap is not safe for concurrent mutation. Once attached to a trained
// model it is treated as read-only.
type IDMap[K comparable] struct {
	ids   []K
	index map[K]int
}

// NewIDMap creates an empty mapping.
func NewIDMap[K comparable]() *IDMap[K] {
	return &IDMap[K]{index: make(map[K]int)}
}

// IDMapFromSlice rebuilds a mapping whose i-th index is ids[i].
// It fails if ids contains duplicates.
func IDMapFromSlice[K comparable](ids []K) (*IDMap[K], error) {
	m := &IDMap[K]{
		ids:   make([]K, len(ids)),
		index: make(map[K]int, len(ids)),
	}
	copy(m.ids, ids)
	for i, id := range m.ids {
		if prev, ok := m.index[id]; ok {
			return nil, fmt.Errorf("duplicate id %v at indices %d and %d", id, prev, i)
		}
		m.index[id] = i
	}
	return m, nil
}

// Add returns the index of id, assigning the next free index if id is new.
func (m *IDMap[K]) Add(id K) int {
	if idx, ok := m.index[id]; ok {
		return idx
	}
	idx := len(m.ids)
	m.ids = append(m.ids, id)
	m.index[id] = idx
	return idx
}

// Index returns the dense index of id.
func (m *IDMap[K]) Index(id K) (int, bool) {
	idx, ok := m.index[id]
	return idx, ok
}

// ID returns the external identifier at idx. It panics if idx is out of range.
func (m *IDMap[K]) ID(idx int) K {
	return m.ids[idx]
}

// Len returns the number of mapped identifiers.
func (m *IDMap[K]) Len() int {
	return len(m.ids)
}

// IDs returns a copy of the identifiers in index order.
func (m *IDMap[K]) IDs() []K {
	out := make([]K, len(m.ids))
	copy(out, m.ids)
	return out
}
