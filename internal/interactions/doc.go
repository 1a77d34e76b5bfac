// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package interactions turns raw streaming-session logs into the sparse
// item-by-user interaction matrix consumed by the ALS factorizer.
//
// # Pipeline
//
//	records, rejected, err := interactions.ReadCSV(f)
//	ds, err := interactions.Encode(records, interactions.Options{})
//	// ds.Matrix has shape (len(ds.Items), len(ds.Users))
//
// # Identifiers
//
// Users (int64) and streamers (string) are assigned dense indices in
// first-seen order. The mappings are part of the trained model and must
// never be rebuilt independently of it.
//
// # Weights
//
// The value of cell (item, user) is the total number of time units the user
// spent watching that streamer. Durations are summed as integers and
// converted to float64 once, so the result does not depend on record order.
//
// # Validation
//
// Records with a non-positive duration or malformed fields are rejected
// individually with a *ValidationError; ingest continues. Only when every
// supplied record is rejected does encoding fail with ErrAllRecordsInvalid.
package interactions
