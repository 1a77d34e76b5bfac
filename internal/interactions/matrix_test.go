// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package interactions

import "testing"

func TestNewMatrix(t *testing.T) {
	m, err := NewMatrix(2, 3, []Entry{
		{Row: 1, Col: 2, Value: 4},
		{Row: 0, Col: 1, Value: 1},
		{Row: 1, Col: 0, Value: 2},
		{Row: 0, Col: 1, Value: 3},
	})
	if err != nil {
		t.Fatalf("NewMatrix() error = %v", err)
	}

	if r, c := m.Shape(); r != 2 || c != 3 {
		t.Errorf("Shape() = (%d, %d), want (2, 3)", r, c)
	}
	if m.NNZ() != 3 {
		t.Errorf("NNZ() = %d, want 3", m.NNZ())
	}
	if got := m.At(0, 1); got != 4 {
		t.Errorf("At(0, 1) = %v, want 4 (duplicates summed)", got)
	}

	cols, _ := m.Row(1)
	if len(cols) != 2 || cols[0] != 0 || cols[1] != 2 {
		t.Errorf("Row(1) cols = %v, want [0 2]", cols)
	}

	if _, err := NewMatrix(1, 1, []Entry{{Row: 1, Col: 0, Value: 1}}); err == nil {
		t.Error("NewMatrix() with out-of-range entry should fail")
	}
	if _, err := NewMatrix(-1, 1, nil); err == nil {
		t.Error("NewMatrix() with negative shape should fail")
	}
}

func TestMatrix_Transpose(t *testing.T) {
	m, err := NewMatrix(3, 2, []Entry{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 1, Value: 2},
		{Row: 2, Col: 1, Value: 5},
	})
	if err != nil {
		t.Fatalf("NewMatrix() error = %v", err)
	}

	tr := m.Transpose()
	if r, c := tr.Shape(); r != 2 || c != 3 {
		t.Fatalf("Transpose().Shape() = (%d, %d), want (2, 3)", r, c)
	}
	for _, e := range m.Entries() {
		if got := tr.At(e.Col, e.Row); got != e.Value {
			t.Errorf("T.At(%d, %d) = %v, want %v", e.Col, e.Row, got, e.Value)
		}
	}

	cols, _ := tr.Row(1)
	if len(cols) != 2 || cols[0] != 0 || cols[1] != 2 {
		t.Errorf("T.Row(1) cols = %v, want sorted [0 2]", cols)
	}

	back := tr.Transpose()
	if back.NNZ() != m.NNZ() {
		t.Errorf("double transpose NNZ = %d, want %d", back.NNZ(), m.NNZ())
	}
}

func TestIDMap(t *testing.T) {
	m := NewIDMap[string]()
	for _, id := range []string{"b", "a", "b", "c"} {
		m.Add(id)
	}

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	for i, want := range []string{"b", "a", "c"} {
		if got := m.ID(i); got != want {
			t.Errorf("ID(%d) = %q, want %q", i, got, want)
		}
		if idx, ok := m.Index(want); !ok || idx != i {
			t.Errorf("Index(%q) = %d, %v; want %d, true", want, idx, ok, i)
		}
	}
	if _, ok := m.Index("zzz"); ok {
		t.Error("Index() of unknown id should report false")
	}

	rebuilt, err := IDMapFromSlice(m.IDs())
	if err != nil {
		t.Fatalf("IDMapFromSlice() error = %v", err)
	}
	for i := 0; i < m.Len(); i++ {
		if rebuilt.ID(i) != m.ID(i) {
			t.Errorf("rebuilt.ID(%d) = %q, want %q", i, rebuilt.ID(i), m.ID(i))
		}
	}

	if _, err := IDMapFromSlice([]int64{1, 2, 1}); err == nil {
		t.Error("IDMapFromSlice() with duplicates should fail")
	}
}
