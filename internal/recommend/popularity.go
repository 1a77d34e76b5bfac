// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package recommend

import (
	"sort"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
)

// DefaultPopularTime is the reference instant used when a popularity query
// does not name one.
const DefaultPopularTime int64 = 6147

// PopularItem is a live streamer and its audience size.
type PopularItem struct {
	Streamer string `json:"streamer"`
	Sessions int    `json:"sessions"`
}

// Popularity answers "what is popular right now" from raw sessions.
type Popularity struct {
	// sessions sorted by TimeStart.
	sessions []interactions.RawInteraction
}

// NewPopularity indexes records. The slice is copied.
func NewPopularity(records []interactions.RawInteraction) *Popularity {
	s := make([]interactions.RawInteraction, len(records))
	copy(s, records)
	sort.SliceStable(s, func(i, j int) bool { return s[i].TimeStart < s[j].TimeStart })
	return &Popularity{sessions: s}
}

// Len returns the number of indexed sessions.
func (p *Popularity) Len() int {
	return len(p.sessions)
}

// Top returns streamers live at instant at (TimeStart < at < TimeEnd),
// ordered by session count descending then name ascending. limit <= 0 returns
// all of them.
func (p *Popularity) Top(at int64, limit int) []PopularItem {
	// Sessions starting at or after at cannot be active.
	end := sort.Search(len(p.sessions), func(i int) bool { return p.sessions[i].TimeStart >= at })

	counts := make(map[string]int)
	for _, s := range p.sessions[:end] {
		if s.Active(at) {
			counts[s.Streamer]++
		}
	}

	out := make([]PopularItem, 0, len(counts))
	for name, c := range counts {
		out = append(out, PopularItem{Streamer: name, Sessions: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sessions != out[j].Sessions {
			return out[i].Sessions > out[j].Sessions
		}
		return out[i].Streamer < out[j].Streamer
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopNames is Top reduced to streamer names.
func (p *Popularity) TopNames(at int64, limit int) []string {
	top := p.Top(at, limit)
	names := make([]string, len(top))
	for i, it := range top {
		names[i] = it.Streamer
	}
	return names
}
