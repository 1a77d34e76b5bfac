// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package evaluate computes offline ranking-quality metrics.
//
// Both metrics score a single query. Aggregate results are the arithmetic
// mean over queries (see Mean and Holdout).
package evaluate

import (
	"math"
	"slices"
)

// ndcgEpsilon keeps NDCG finite when the ideal gain is zero.
const ndcgEpsilon = 1e-42

// NDCGAtK returns DCG/(IDCG + 1e-42) over the first k positions.
//
// truth holds the relevance of each returned item in ranked order and
// feeds DCG. predicted holds the relevance pool the ranking could have
// drawn from; sorted descending and truncated to k it gives the ideal DCG.
// When both describe the same pool the result is in [0, 1].
//
// It returns 0 when either input is empty or k <= 0.
func NDCGAtK(predicted, truth []float64, k int) float64 {
	if len(predicted) == 0 || len(truth) == 0 || k <= 0 {
		return 0
	}

	ideal := slices.Clone(predicted)
	slices.SortFunc(ideal, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		default:
			return 0
		}
	})

	idcg := dcg(ideal, k)
	return dcg(truth, k) / (idcg + ndcgEpsilon)
}

func dcg(rel []float64, k int) float64 {
	var sum float64
	for j := 0; j < k && j < len(rel); j++ {
		sum += rel[j] / math.Log2(float64(j+2))
	}
	return sum
}

// MAPAtK returns the average precision of predicted against the truth set
// over the first k predictions, normalized by min(len(truth), k).
// Repeated predictions count once. It returns 0 when either input is empty
// or k <= 0.
func MAPAtK[T comparable](predicted, truth []T, k int) float64 {
	if len(predicted) == 0 || len(truth) == 0 || k <= 0 {
		return 0
	}
	if len(predicted) > k {
		predicted = predicted[:k]
	}

	relevant := make(map[T]struct{}, len(truth))
	for _, t := range truth {
		relevant[t] = struct{}{}
	}

	seen := make(map[T]struct{}, len(predicted))
	var score, hits float64
	for i, p := range predicted {
		_, dup := seen[p]
		seen[p] = struct{}{}
		if _, ok := relevant[p]; !ok || dup {
			continue
		}
		hits++
		score += hits / float64(i+1)
	}

	return score / float64(min(len(truth), k))
}

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
