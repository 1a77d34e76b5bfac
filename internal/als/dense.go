// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package als

import "fmt"

// Dense is a row-major matrix of float64.
type Dense struct {
	Rows int
	Cols int
	Data []float64
}

// NewDense allocates a zeroed rows x cols matrix.
func NewDense(rows, cols int) *Dense {
	return &Dense{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// DenseFromData wraps data as a rows x cols matrix.
func DenseFromData(rows, cols int, data []float64) (*Dense, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("dense shape (%d, %d) does not match %d values", rows, cols, len(data))
	}
	return &Dense{Rows: rows, Cols: cols, Data: data}, nil
}

// Row returns row i. The slice aliases the matrix storage.
func (d *Dense) Row(i int) []float64 {
	return d.Data[i*d.Cols : (i+1)*d.Cols]
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	var s float64
	for k := range a {
		s += a[k] * b[k]
	}
	return s
}
