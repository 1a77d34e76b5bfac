// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package interactions

import (
	"errors"
	"fmt"
)

// ErrAllRecordsInvalid is returned by Encode when records were supplied but
// none of them passed validation.
var ErrAllRecordsInvalid = errors.New("interactions: all records invalid")

// RawInteraction is one viewing session as it appears in the input log.
type RawInteraction struct {
	UserID    int64
	SessionID int64
	Streamer  string
	TimeStart int64
	TimeEnd   int64
}

// Duration returns TimeEnd - TimeStart.
func (r RawInteraction) Duration() int64 {
	return r.TimeEnd - r.TimeStart
}

// Active reports whether the session was running at time t
// (TimeStart < t < TimeEnd).
func (r RawInteraction) Active(t int64) bool {
	return r.TimeStart < t && t < r.TimeEnd
}

// Validate checks the invariants of a single record.
func (r RawInteraction) Validate() error {
	if r.Streamer == "" {
		return &ValidationError{Field: "streamer_name", Reason: "empty"}
	}
	if d := r.Duration(); d <= 0 {
		return &ValidationError{
			Field:  "time_end",
			Reason: fmt.Sprintf("non-positive duration %d (start=%d end=%d)", d, r.TimeStart, r.TimeEnd),
		}
	}
	return nil
}

// ValidationError describes a rejected input record.
type ValidationError struct {
	// Line is the 1-based position of the record in its source, 0 if unknown.
	Line   int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("record %d: %s: %s", e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
