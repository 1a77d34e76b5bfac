// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// rankingKeyPrefix separates rankings from plain values.
const rankingKeyPrefix = "ranking:"

// BadgerStore writes to an embedded BadgerDB. Rankings are stored as a JSON
// list already in rank order.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for export: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewInMemoryBadgerStore opens a BadgerDB without a backing directory.
func NewInMemoryBadgerStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Name implements Store.
func (s *BadgerStore) Name() string { return BackendBadger }

// SetBatch implements Store through a WriteBatch, which splits oversized
// transactions.
func (s *BadgerStore) SetBatch(ctx context.Context, kvs map[string][]byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for k, v := range kvs {
		e := badger.NewEntry([]byte(k), v)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		if err := wb.SetEntry(e); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush export batch: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetRanking implements Store.
func (s *BadgerStore) SetRanking(ctx context.Context, key string, entries []Ranked) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sorted := append([]Ranked(nil), entries...)
	sortRanking(sorted)

	k := []byte(rankingKeyPrefix + key)
	return s.db.Update(func(txn *badger.Txn) error {
		if len(sorted) == 0 {
			return txn.Delete(k)
		}
		data, err := json.Marshal(sorted)
		if err != nil {
			return fmt.Errorf("marshal ranking: %w", err)
		}
		return txn.Set(k, data)
	})
}

// Ranking implements Store.
func (s *BadgerStore) Ranking(ctx context.Context, key string, limit int) ([]Ranked, error) {
	data, err := s.Get(ctx, rankingKeyPrefix+key)
	if err != nil {
		return nil, err
	}
	var r []Ranked
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode ranking %s: %w", key, err)
	}
	return truncate(r, limit), nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
