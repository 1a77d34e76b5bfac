// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

//go:build alsdebug

package als

import "fmt"

func checkPivot(d float64, row int) float64 {
	if d <= 0 {
		panic(fmt.Sprintf("als: system not positive definite: pivot %d = %g", row, d))
	}
	return d
}
