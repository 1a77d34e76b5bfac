// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package evaluate

import (
	"context"
	"fmt"
	"sort"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/als"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/training"
)

// Report is the aggregate result of an offline evaluation.
type Report struct {
	K            int     `json:"k"`
	Queries      int     `json:"queries"`
	NDCG         float64 `json:"ndcg"`
	MAP          float64 `json:"map"`
	SplitAt      int64   `json:"split_at,omitempty"`
	TrainRecords int     `json:"train_records,omitempty"`
	TestRecords  int     `json:"test_records,omitempty"`
}

// Split partitions records by session start: TimeStart < at goes to train,
// the rest to test. Input order is preserved.
func Split(records []interactions.RawInteraction, at int64) (train, test []interactions.RawInteraction) {
	for _, r := range records {
		if r.TimeStart < at {
			train = append(train, r)
		} else {
			test = append(test, r)
		}
	}
	return train, test
}

// SplitPoint returns the session start time below which roughly fraction of
// the records fall. fraction is clamped to [0, 1].
func SplitPoint(records []interactions.RawInteraction, fraction float64) int64 {
	if len(records) == 0 {
		return 0
	}
	starts := make([]int64, len(records))
	for i, r := range records {
		starts[i] = r.TimeStart
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	fraction = min(max(fraction, 0), 1)
	idx := min(int(fraction*float64(len(starts))), len(starts)-1)
	return starts[idx]
}

// Evaluate scores a Recommender against held-out sessions. For every test
// user the model knows, the top k recommendations are compared with the set
// of streamers the user watched in test. Relevance is binary.
func Evaluate(r *recommend.Recommender, test []interactions.RawInteraction, k int) Report {
	watched := make(map[int64]map[string]struct{})
	var order []int64
	for _, rec := range test {
		set, ok := watched[rec.UserID]
		if !ok {
			set = make(map[string]struct{})
			watched[rec.UserID] = set
			order = append(order, rec.UserID)
		}
		set[rec.Streamer] = struct{}{}
	}

	var ndcgs, maps []float64
	for _, uid := range order {
		if !r.Known(uid) {
			continue
		}
		set := watched[uid]
		truth := make([]string, 0, len(set))
		for s := range set {
			truth = append(truth, s)
		}
		sort.Strings(truth)

		recs := r.Recommend(uid, k)
		predicted := make([]string, len(recs))
		gains := make([]float64, len(recs))
		for j, rec := range recs {
			predicted[j] = rec.Item
			if _, ok := set[rec.Item]; ok {
				gains[j] = 1
			}
		}
		pool := make([]float64, len(truth))
		for j := range pool {
			pool[j] = 1
		}

		ndcgs = append(ndcgs, NDCGAtK(pool, gains, k))
		maps = append(maps, MAPAtK(predicted, truth, k))
	}

	return Report{
		K:       k,
		Queries: len(ndcgs),
		NDCG:    Mean(ndcgs),
		MAP:     Mean(maps),
	}
}

// HoldoutConfig controls Holdout.
type HoldoutConfig struct {
	// SplitAt is the train/test boundary on TimeStart.
	SplitAt int64

	// K is the ranking cutoff.
	K int

	// ALS holds the training hyperparameters.
	ALS als.Config
}

// Holdout trains on sessions that start before SplitAt and evaluates on the
// rest.
func Holdout(ctx context.Context, records []interactions.RawInteraction, cfg HoldoutConfig) (*Report, error) {
	if cfg.K <= 0 {
		return nil, fmt.Errorf("holdout: k must be > 0, got %d", cfg.K)
	}
	train, test := Split(records, cfg.SplitAt)

	ds, err := interactions.Encode(train, interactions.Options{})
	if err != nil {
		return nil, fmt.Errorf("encode train split: %w", err)
	}

	m, err := training.Fit(ctx, ds, cfg.ALS, logging.WithComponent("evaluate"))
	if err != nil {
		return nil, fmt.Errorf("train split: %w", err)
	}

	report := Evaluate(recommend.New(m), test, cfg.K)
	report.SplitAt = cfg.SplitAt
	report.TrainRecords = len(train)
	report.TestRecords = len(test)
	return &report, nil
}
