// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package interactions

import (
	"fmt"
)

// Options controls Encode.
type Options struct {
	// At, when non-nil, keeps only sessions active at that instant
	// (TimeStart < *At < TimeEnd). The filter runs before any id is assigned.
	At *int64
}

// Dataset is the result of encoding a batch of records.
type Dataset struct {
	// Users maps external user ids to matrix columns.
	Users *IDMap[int64]

	// Items maps streamer names to matrix rows.
	Items *IDMap[string]

	// Matrix has shape (Items.Len(), Users.Len()); cell value is the summed
	// watch duration.
	Matrix *Matrix

	// Records holds the accepted records in input order.
	Records []RawInteraction

	// Rejected holds one *ValidationError per rejected record.
	Rejected []error

	// Filtered counts valid records dropped by the At window.
	Filtered int
}

type cell struct {
	item int
	user int
}

// Encode validates records and builds the item-by-user interaction matrix.
//
// Invalid records are skipped and reported in Dataset.Rejected. If records is
// non-empty and all of them are invalid, Encode returns an error wrapping
// ErrAllRecordsInvalid. An empty input produces an empty dataset.
func Encode(records []RawInteraction, opts Options) (*Dataset, error) {
	ds := &Dataset{
		Users: NewIDMap[int64](),
		Items: NewIDMap[string](),
	}

	weights := make(map[cell]int64)
	valid := 0
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			if ve, ok := err.(*ValidationError); ok && ve.Line == 0 {
				ve.Line = i + 1
			}
			ds.Rejected = append(ds.Rejected, err)
			continue
		}
		valid++

		if opts.At != nil && !rec.Active(*opts.At) {
			ds.Filtered++
			continue
		}

		u := ds.Users.Add(rec.UserID)
		it := ds.Items.Add(rec.Streamer)
		weights[cell{item: it, user: u}] += rec.Duration()
		ds.Records = append(ds.Records, rec)
	}

	if len(records) > 0 && valid == 0 {
		return nil, fmt.Errorf("%w: %d rejected, first: %w", ErrAllRecordsInvalid, len(ds.Rejected), ds.Rejected[0])
	}

	entries := make([]Entry, 0, len(weights))
	for c, w := range weights {
		entries = append(entries, Entry{Row: c.item, Col: c.user, Value: float64(w)})
	}

	m, err := NewMatrix(ds.Items.Len(), ds.Users.Len(), entries)
	if err != nil {
		return nil, fmt.Errorf("build interaction matrix: %w", err)
	}
	ds.Matrix = m

	return ds, nil
}
