// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package als

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
)

func mustMatrix(t *testing.T, rows, cols int, entries []interactions.Entry) *interactions.Matrix {
	t.Helper()
	m, err := interactions.NewMatrix(rows, cols, entries)
	if err != nil {
		t.Fatalf("NewMatrix() error = %v", err)
	}
	return m
}

// clusteredMatrix builds 6 items x 6 users where users 0-2 watch items 0-2
// and users 3-5 watch items 3-5.
func clusteredMatrix(t *testing.T) *interactions.Matrix {
	t.Helper()
	var entries []interactions.Entry
	for u := 0; u < 6; u++ {
		base := 0
		if u >= 3 {
			base = 3
		}
		for i := base; i < base+3; i++ {
			if (u+i)%4 == 0 {
				continue // leave a few holes to predict
			}
			entries = append(entries, interactions.Entry{Row: i, Col: u, Value: float64(1 + (u+i)%3)})
		}
	}
	return mustMatrix(t, 6, 6, entries)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "zero factors", mutate: func(c *Config) { c.Factors = 0 }, wantErr: true},
		{name: "zero regularization", mutate: func(c *Config) { c.Regularization = 0 }, wantErr: true},
		{name: "NaN regularization", mutate: func(c *Config) { c.Regularization = math.NaN() }, wantErr: true},
		{name: "negative alpha", mutate: func(c *Config) { c.Alpha = -1 }, wantErr: true},
		{name: "zero alpha allowed", mutate: func(c *Config) { c.Alpha = 0 }},
		{name: "zero iterations", mutate: func(c *Config) { c.Iterations = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Factors != 500 || cfg.Regularization != 0.2 || cfg.Alpha != 100 || cfg.Iterations != 12 || cfg.Seed != 42 {
		t.Errorf("DefaultConfig() = %+v, want f=500 lambda=0.2 alpha=100 iterations=12 seed=42", cfg)
	}
	if cfg.Workers <= 0 {
		t.Errorf("Workers = %d, want > 0", cfg.Workers)
	}
}

func TestFactorizer_Fit_SingleCell(t *testing.T) {
	f, err := New(Config{Factors: 2, Regularization: 0.2, Alpha: 100, Iterations: 1, Seed: 42})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m := mustMatrix(t, 1, 1, []interactions.Entry{{Row: 0, Col: 0, Value: 100}})
	factors, err := f.Fit(context.Background(), m)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if factors.Users.Rows != 1 || factors.Users.Cols != 2 {
		t.Errorf("Users shape = (%d, %d), want (1, 2)", factors.Users.Rows, factors.Users.Cols)
	}
	if factors.Items.Rows != 1 || factors.Items.Cols != 2 {
		t.Errorf("Items shape = (%d, %d), want (1, 2)", factors.Items.Rows, factors.Items.Cols)
	}
	score := Dot(factors.Users.Row(0), factors.Items.Row(0))
	if !(score > 0) || math.IsInf(score, 0) {
		t.Errorf("score = %v, want finite > 0", score)
	}
}

func TestFactorizer_Fit_InvalidInput(t *testing.T) {
	f, err := New(Config{Factors: 4, Regularization: 0.1, Alpha: 1, Iterations: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name string
		rows int
		cols int
	}{
		{name: "no users", rows: 3, cols: 0},
		{name: "no items", rows: 0, cols: 3},
		{name: "empty", rows: 0, cols: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fit(context.Background(), mustMatrix(t, tt.rows, tt.cols, nil))
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Fit() error = %v, want ErrInvalidInput", err)
			}
			var iie *InvalidInputError
			if !errors.As(err, &iie) {
				t.Errorf("Fit() error = %v, want *InvalidInputError", err)
			}
		})
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Factors: 0, Regularization: 0.1, Iterations: 1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("New() error = %v, want ErrInvalidInput", err)
	}
}

func TestFactorizer_Fit_Deterministic(t *testing.T) {
	m := clusteredMatrix(t)

	fit := func(workers int) *Factors {
		f, err := New(Config{Factors: 4, Regularization: 0.1, Alpha: 10, Iterations: 5, Seed: 7, Workers: workers})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		out, err := f.Fit(context.Background(), m)
		if err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		return out
	}

	a, b := fit(1), fit(4)
	for k := range a.Users.Data {
		if a.Users.Data[k] != b.Users.Data[k] {
			t.Fatalf("Users.Data[%d] differs across worker counts: %v vs %v", k, a.Users.Data[k], b.Users.Data[k])
		}
	}
	for k := range a.Items.Data {
		if a.Items.Data[k] != b.Items.Data[k] {
			t.Fatalf("Items.Data[%d] differs across worker counts: %v vs %v", k, a.Items.Data[k], b.Items.Data[k])
		}
	}
}

func TestFactorizer_Fit_LearnsClusters(t *testing.T) {
	f, err := New(Config{Factors: 4, Regularization: 0.1, Alpha: 10, Iterations: 10, Seed: 42, Workers: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	factors, err := f.Fit(context.Background(), clusteredMatrix(t))
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	for u := 0; u < 6; u++ {
		own, other := 0, 3
		if u >= 3 {
			own, other = 3, 0
		}
		var ownScore, otherScore float64
		for k := 0; k < 3; k++ {
			ownScore += Dot(factors.Users.Row(u), factors.Items.Row(own+k))
			otherScore += Dot(factors.Users.Row(u), factors.Items.Row(other+k))
		}
		if ownScore <= otherScore {
			t.Errorf("user %d: own cluster score %v <= other cluster score %v", u, ownScore, otherScore)
		}
	}
}

func TestFactorizer_Fit_Progress(t *testing.T) {
	f, err := New(Config{Factors: 2, Regularization: 0.1, Alpha: 1, Iterations: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var seen []int
	f.OnProgress(func(p Progress) {
		if p.Total != 3 {
			t.Errorf("Progress.Total = %d, want 3", p.Total)
		}
		seen = append(seen, p.Iteration)
	})

	if _, err := f.Fit(context.Background(), clusteredMatrix(t)); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Errorf("progress iterations = %v, want [1 2 3]", seen)
	}
}

func TestFactorizer_Fit_Cancelled(t *testing.T) {
	f, err := New(Config{Factors: 2, Regularization: 0.1, Alpha: 1, Iterations: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.Fit(ctx, clusteredMatrix(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Fit() error = %v, want context.Canceled", err)
	}
}

func TestCholeskySolve(t *testing.T) {
	// A = [[4, 2], [2, 3]], b = [2, 1] -> x = [0.5, 0]
	A := []float64{4, 2, 2, 3}
	b := []float64{2, 1}
	choleskySolve(A, 2, b)

	want := []float64{0.5, 0}
	for i := range want {
		if math.Abs(b[i]-want[i]) > 1e-12 {
			t.Errorf("x[%d] = %v, want %v", i, b[i], want[i])
		}
	}
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
		want    int
	}{
		{name: "even split", n: 8, workers: 4, want: 4},
		{name: "more workers than rows", n: 2, workers: 8, want: 2},
		{name: "zero rows", n: 0, workers: 4, want: 0},
		{name: "non-positive workers", n: 5, workers: 0, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := partition(tt.n, tt.workers)
			if len(spans) != tt.want {
				t.Fatalf("partition(%d, %d) = %v, want %d spans", tt.n, tt.workers, spans, tt.want)
			}
			covered := 0
			for _, s := range spans {
				covered += s[1] - s[0]
			}
			if covered != tt.n {
				t.Errorf("spans cover %d rows, want %d", covered, tt.n)
			}
		})
	}
}
