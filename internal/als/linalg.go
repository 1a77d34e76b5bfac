// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package als

import "math"

// minPivot replaces a non-positive Cholesky pivot in release builds.
const minPivot = 1e-10

// choleskySolve solves a*x = b for a symmetric positive definite n x n
// matrix a (row-major). a is overwritten with its lower Cholesky factor and b
// with the solution.
//
//nolint:gocritic // a, b follow standard linear algebra notation
func choleskySolve(a []float64, n int, b []float64) {
	// Decompose: a = L * L'
	for i := 0; i < n; i++ {
		ri := a[i*n : i*n+n]
		for j := 0; j < i; j++ {
			rj := a[j*n : j*n+n]
			sum := ri[j]
			for k := 0; k < j; k++ {
				sum -= ri[k] * rj[k]
			}
			ri[j] = sum / rj[j]
		}

		d := ri[i]
		for k := 0; k < i; k++ {
			d -= ri[k] * ri[k]
		}
		ri[i] = math.Sqrt(checkPivot(d, i))
	}

	// Solve L * z = b (forward substitution)
	for i := 0; i < n; i++ {
		ri := a[i*n : i*n+n]
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= ri[k] * b[k]
		}
		b[i] = sum / ri[i]
	}

	// Solve L' * x = z (back substitution)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for k := i + 1; k < n; k++ {
			sum -= a[k*n+i] * b[k]
		}
		b[i] = sum / a[i*n+i]
	}
}
