// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package interactions

import (
	"fmt"
	"sort"
)

// Entry is a single nonzero cell used to build a Matrix.
type Entry struct {
	Row   int
	Col   int
	Value float64
}

// Matrix is an immutable sparse matrix in compressed sparse row layout.
// Column indices within a row are strictly increasing. Absent cells are zero.
type Matrix struct {
	rows    int
	cols    int
	indptr  []int
	indices []int
	values  []float64
}

// NewMatrix builds a rows x cols matrix from entries. Duplicate coordinates
// are summed. Entries outside the shape are an error.
func NewMatrix(rows, cols int, entries []Entry) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("invalid matrix shape (%d, %d)", rows, cols)
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	for _, e := range sorted {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			return nil, fmt.Errorf("entry (%d, %d) outside shape (%d, %d)", e.Row, e.Col, rows, cols)
		}
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Row != sorted[b].Row {
			return sorted[a].Row < sorted[b].Row
		}
		return sorted[a].Col < sorted[b].Col
	})

	m := &Matrix{
		rows:   rows,
		cols:   cols,
		indptr: make([]int, rows+1),
	}
	for i := 0; i < len(sorted); {
		e := sorted[i]
		v := e.Value
		j := i + 1
		for j < len(sorted) && sorted[j].Row == e.Row && sorted[j].Col == e.Col {
			v += sorted[j].Value
			j++
		}
		m.indices = append(m.indices, e.Col)
		m.values = append(m.values, v)
		m.indptr[e.Row+1]++
		i = j
	}
	for r := 0; r < rows; r++ {
		m.indptr[r+1] += m.indptr[r]
	}

	return m, nil
}

// Shape returns (rows, cols).
func (m *Matrix) Shape() (rows, cols int) {
	return m.rows, m.cols
}

// NNZ returns the number of stored cells.
func (m *Matrix) NNZ() int {
	return len(m.values)
}

// Row returns the column indices and values of row r. The returned slices
// alias the matrix storage and must not be modified.
func (m *Matrix) Row(r int) (cols []int, values []float64) {
	lo, hi := m.indptr[r], m.indptr[r+1]
	return m.indices[lo:hi], m.values[lo:hi]
}

// At returns the value at (r, c), zero if the cell is absent.
func (m *Matrix) At(r, c int) float64 {
	cols, values := m.Row(r)
	k := sort.SearchInts(cols, c)
	if k < len(cols) && cols[k] == c {
		return values[k]
	}
	return 0
}

// Entries returns all stored cells in row-major order.
func (m *Matrix) Entries() []Entry {
	out := make([]Entry, 0, m.NNZ())
	for r := 0; r < m.rows; r++ {
		cols, values := m.Row(r)
		for k, c := range cols {
			out = append(out, Entry{Row: r, Col: c, Value: values[k]})
		}
	}
	return out
}

// Transpose returns a new cols x rows matrix.
func (m *Matrix) Transpose() *Matrix {
	t := &Matrix{
		rows:    m.cols,
		cols:    m.rows,
		indptr:  make([]int, m.cols+1),
		indices: make([]int, len(m.indices)),
		values:  make([]float64, len(m.values)),
	}
	for _, c := range m.indices {
		t.indptr[c+1]++
	}
	for c := 0; c < m.cols; c++ {
		t.indptr[c+1] += t.indptr[c]
	}

	next := make([]int, m.cols)
	copy(next, t.indptr[:m.cols])
	// Rows are visited in increasing order, so each transposed row stays sorted.
	for r := 0; r < m.rows; r++ {
		cols, values := m.Row(r)
		for k, c := range cols {
			dst := next[c]
			t.indices[dst] = r
			t.values[dst] = values[k]
			next[c]++
		}
	}
	return t
}
