// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package recommend serves top-N streamer recommendations from a trained
// factor model.
//
// # Personal Recommendations
//
// A Recommender scores every streamer for a user as x_u . Y' and returns the
// N best, highest score first. Equal scores are ordered by ascending
// internal item index, so results are deterministic for a given model.
//
// Streamers the user has already watched are NOT filtered out;
// re-engagement with a known streamer is part of the ranking.
//
// A user that is not in the model gets an empty list, never an error.
//
// # Cold Start
//
// Popularity ranks the streamers that are live at a given instant by the
// number of sessions watching them. It needs no model and serves users that
// the factor model does not know.
//
// # Hot Swap
//
// Holder publishes the current Recommender through an atomic pointer.
// Readers never block; a swap replaces the model wholesale and in-flight
// requests finish on the model they started with.
//
// # Usage
//
//	m, err := model.Load(path)
//	var h recommend.Holder
//	h.Swap(m)
//	recs, err := h.Recommend(userID, 100)
package recommend
