// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package export publishes precomputed recommendations to a key-value store
// so that online services can read them without loading the model.
//
// Keys written by an export run:
//
//	{prefix}:user:{uid}  JSON list of {"item","score"}, best first
//	{prefix}:popular     ranking of live streamers by session count
//
// Three backends are provided: an in-process map, Redis, and an embedded
// BadgerDB. Remote backends are wrapped in a circuit breaker.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
)

// ErrNotFound is returned by Get and Ranking for missing keys.
var ErrNotFound = errors.New("export: key not found")

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// Ranked is one member of a ranking.
type Ranked struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// Store is the write side of an export backend. Implementations are safe for
// concurrent use.
type Store interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// SetBatch writes every key. ttl <= 0 means no expiry.
	SetBatch(ctx context.Context, kvs map[string][]byte, ttl time.Duration) error

	// Get reads one key.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetRanking atomically replaces the ranking stored at key.
	SetRanking(ctx context.Context, key string, entries []Ranked) error

	// Ranking returns up to limit members, highest score first. limit <= 0
	// returns all of them.
	Ranking(ctx context.Context, key string, limit int) ([]Ranked, error)

	Close() error
}

// Open creates the store selected by cfg.Backend. Redis is wrapped in a
// circuit breaker.
func Open(ctx context.Context, cfg *config.ExportConfig) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendRedis:
		rs, err := NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Password)
		if err != nil {
			return nil, err
		}
		return NewBreakerStore(rs, cfg.Breaker), nil
	case BackendBadger:
		return NewBadgerStore(cfg.Badger.Path)
	default:
		return nil, fmt.Errorf("export: unknown backend %q", cfg.Backend)
	}
}
