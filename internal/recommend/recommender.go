// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package recommend

import (
	"container/heap"
	"math"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/als"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/model"
)

// Recommendation is a single ranked streamer.
type Recommendation struct {
	Item  string  `json:"item"`
	Score float64 `json:"score"`
}

// Recommender answers top-N queries against one immutable model.
// It is safe for concurrent use.
type Recommender struct {
	model *model.FactorModel
}

// New creates a Recommender for m.
func New(m *model.FactorModel) *Recommender {
	return &Recommender{model: m}
}

// Model returns the underlying model.
func (r *Recommender) Model() *model.FactorModel {
	return r.model
}

// Known reports whether userID was present at training time.
func (r *Recommender) Known(userID int64) bool {
	_, ok := r.model.Users.Index(userID)
	return ok
}

// Recommend returns up to n streamers for userID, highest score first.
// n is clamped to [0, number of items]. An unknown user yields an empty,
// non-nil slice.
func (r *Recommender) Recommend(userID int64, n int) []Recommendation {
	u, ok := r.model.Users.Index(userID)
	numItems := r.model.Items.Len()
	n = min(max(n, 0), numItems)
	if !ok || n == 0 {
		return []Recommendation{}
	}

	ranked := topN(r.model.UserFactors.Row(u), r.model.ItemFactors, n)
	out := make([]Recommendation, len(ranked))
	for k, s := range ranked {
		out[k] = Recommendation{Item: r.model.Items.ID(s.index), Score: s.score}
	}
	return out
}

// Scores returns x_u . y_i for every item index, or false for an unknown user.
func (r *Recommender) Scores(userID int64) ([]float64, bool) {
	u, ok := r.model.Users.Index(userID)
	if !ok {
		return nil, false
	}
	x := r.model.UserFactors.Row(u)
	scores := make([]float64, r.model.ItemFactors.Rows)
	for i := range scores {
		scores[i] = als.Dot(x, r.model.ItemFactors.Row(i))
	}
	return scores, true
}

type scored struct {
	index int
	score float64
}

// worse orders by score ascending, then index descending. NaN ranks lowest.
func worse(a, b scored) bool {
	as, bs := a.score, b.score
	if math.IsNaN(as) {
		as = math.Inf(-1)
	}
	if math.IsNaN(bs) {
		bs = math.Inf(-1)
	}
	if as != bs {
		return as < bs
	}
	return a.index > b.index
}

// minHeap keeps the current worst candidate at the root.
type minHeap []scored

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(scored)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topN returns the n best items for user vector x, best first.
func topN(x []float64, items *als.Dense, n int) []scored {
	h := make(minHeap, 0, n)
	for i := 0; i < items.Rows; i++ {
		s := scored{index: i, score: als.Dot(x, items.Row(i))}
		if len(h) < n {
			heap.Push(&h, s)
			continue
		}
		if worse(h[0], s) {
			h[0] = s
			heap.Fix(&h, 0)
		}
	}

	out := make([]scored, len(h))
	for k := len(h) - 1; k >= 0; k-- {
		out[k] = heap.Pop(&h).(scored)
	}
	return out
}
