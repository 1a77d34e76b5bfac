// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package recommend

import (
	"errors"
	"sync/atomic"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/model"
)

// ErrNoModel is returned by Holder before the first model is published.
var ErrNoModel = errors.New("recommend: no model loaded")

// Holder publishes the serving model and popularity snapshot. The zero
// value is ready to use.
type Holder struct {
	current    atomic.Pointer[Recommender]
	popularity atomic.Pointer[Popularity]
}

// Swap publishes m and returns the previously served model, or nil.
func (h *Holder) Swap(m *model.FactorModel) *model.FactorModel {
	old := h.current.Swap(New(m))
	if old == nil {
		return nil
	}
	return old.model
}

// SwapPopularity publishes a new popularity snapshot.
func (h *Holder) SwapPopularity(p *Popularity) {
	h.popularity.Store(p)
}

// Current returns the serving Recommender, or nil before the first Swap.
func (h *Holder) Current() *Recommender {
	return h.current.Load()
}

// Popularity returns the current popularity snapshot, or nil.
func (h *Holder) Popularity() *Popularity {
	return h.popularity.Load()
}

// Ready reports whether a model has been published.
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}

// Recommend delegates to the current Recommender.
func (h *Holder) Recommend(userID int64, n int) ([]Recommendation, error) {
	r := h.current.Load()
	if r == nil {
		return nil, ErrNoModel
	}
	return r.Recommend(userID, n), nil
}
