// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

//go:build !alsdebug

package als

// checkPivot clamps a non-positive pivot. With lambda > 0 the system is SPD
// and this only triggers on accumulated rounding error.
func checkPivot(d float64, _ int) float64 {
	if d <= 0 {
		return minPivot
	}
	return d
}
