// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package export

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore keeps everything in process memory. It backs tests and
// single-node deployments that only need the export for debugging.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string]memoryEntry
	rankings map[string][]Ranked
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string]memoryEntry),
		rankings: make(map[string][]Ranked),
		now:      time.Now,
	}
}

// Name implements Store.
func (s *MemoryStore) Name() string { return BackendMemory }

// SetBatch implements Store.
func (s *MemoryStore) SetBatch(ctx context.Context, kvs map[string][]byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var expires time.Time
	if ttl > 0 {
		expires = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range kvs {
		s.values[k] = memoryEntry{value: append([]byte(nil), v...), expires: expires}
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.values[key]
	s.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && !s.now().Before(e.expires)) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// SetRanking implements Store.
func (s *MemoryStore) SetRanking(ctx context.Context, key string, entries []Ranked) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sorted := append([]Ranked(nil), entries...)
	sortRanking(sorted)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(sorted) == 0 {
		delete(s.rankings, key)
		return nil
	}
	s.rankings[key] = sorted
	return nil
}

// Ranking implements Store.
func (s *MemoryStore) Ranking(ctx context.Context, key string, limit int) ([]Ranked, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	r, ok := s.rankings[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return truncate(append([]Ranked(nil), r...), limit), nil
}

// Len returns the number of live keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// sortRanking orders by score descending, then member descending, matching
// Redis ZREVRANGE.
func sortRanking(r []Ranked) {
	sort.Slice(r, func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score > r[j].Score
		}
		return r[i].Member > r[j].Member
	})
}

func truncate(r []Ranked, limit int) []Ranked {
	if limit > 0 && len(r) > limit {
		return r[:limit]
	}
	return r
}
