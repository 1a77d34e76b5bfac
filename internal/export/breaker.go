// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package export

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/metrics"
)

// BreakerStore guards a remote Store with a circuit breaker. While the
// circuit is open calls fail fast with gobreaker.ErrOpenState.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerStore wraps next.
func NewBreakerStore(next Store, cfg config.BreakerConfig) *BreakerStore {
	name := "export-" + next.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A missing key is an answer, not a failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateToFloat(to))
		},
	})
	return &BreakerStore{next: next, cb: cb}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// State returns the breaker state name.
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

// Name implements Store.
func (b *BreakerStore) Name() string { return b.next.Name() }

// SetBatch implements Store.
func (b *BreakerStore) SetBatch(ctx context.Context, kvs map[string][]byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.SetBatch(ctx, kvs, ttl)
	})
	return err
}

// Get implements Store.
func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	data, _ := v.([]byte)
	return data, nil
}

// SetRanking implements Store.
func (b *BreakerStore) SetRanking(ctx context.Context, key string, entries []Ranked) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.SetRanking(ctx, key, entries)
	})
	return err
}

// Ranking implements Store.
func (b *BreakerStore) Ranking(ctx context.Context, key string, limit int) ([]Ranked, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Ranking(ctx, key, limit)
	})
	if err != nil {
		return nil, err
	}
	r, _ := v.([]Ranked)
	return r, nil
}

// Close implements Store.
func (b *BreakerStore) Close() error {
	return b.next.Close()
}
