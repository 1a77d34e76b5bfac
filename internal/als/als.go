// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package als

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
)

// Defaults used by the production training job.
const (
	DefaultFactors        = 500
	DefaultRegularization = 0.2
	DefaultAlpha          = 100.0
	DefaultIterations     = 12
	DefaultSeed           = 42
)

// initScale bounds the uniform initial factor values.
const initScale = 0.01

// Config contains the ALS hyperparameters.
type Config struct {
	// Factors is the dimension of the latent vectors.
	Factors int

	// Regularization is the L2 penalty lambda. Must be > 0 so every
	// per-row system is positive definite.
	Regularization float64

	// Alpha scales durations into confidence: c = 1 + alpha * r.
	Alpha float64

	// Iterations is the fixed number of full user+item sweeps.
	Iterations int

	// Seed drives factor initialization.
	Seed uint64

	// Workers bounds the solver goroutines. <= 0 means runtime.NumCPU().
	Workers int
}

// DefaultConfig returns the production hyperparameters.
func DefaultConfig() Config {
	return Config{
		Factors:        DefaultFactors,
		Regularization: DefaultRegularization,
		Alpha:          DefaultAlpha,
		Iterations:     DefaultIterations,
		Seed:           DefaultSeed,
		Workers:        runtime.NumCPU(),
	}
}

// Validate checks the hyperparameters.
func (c Config) Validate() error {
	switch {
	case c.Factors <= 0:
		return &InvalidInputError{Field: "factors", Reason: fmt.Sprintf("must be > 0, got %d", c.Factors)}
	case !(c.Regularization > 0):
		return &InvalidInputError{Field: "regularization", Reason: fmt.Sprintf("must be > 0, got %g", c.Regularization)}
	case !(c.Alpha >= 0):
		return &InvalidInputError{Field: "alpha", Reason: fmt.Sprintf("must be >= 0, got %g", c.Alpha)}
	case c.Iterations < 1:
		return &InvalidInputError{Field: "iterations", Reason: fmt.Sprintf("must be >= 1, got %d", c.Iterations)}
	}
	return nil
}

// Progress is reported after every completed iteration.
type Progress struct {
	Iteration int
	Total     int
	Elapsed   time.Duration
}

// Factors holds the trained latent matrices.
type Factors struct {
	// Users is n_users x f; row u is x_u.
	Users *Dense

	// Items is n_items x f; row i is y_i.
	Items *Dense
}

// Factorizer trains ALS models. A Factorizer holds no per-fit state and may
// be reused.
type Factorizer struct {
	config     Config
	onProgress func(Progress)
}

// New creates a Factorizer. The config is validated here so that a bad value
// fails before any data is loaded.
func New(cfg Config) (*Factorizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Factorizer{config: cfg}, nil
}

// OnProgress registers fn to be called synchronously after each iteration.
func (f *Factorizer) OnProgress(fn func(Progress)) {
	f.onProgress = fn
}

// Config returns the effective configuration.
func (f *Factorizer) Config() Config {
	return f.config
}

// Fit factorizes itemUsers (rows = items, columns = users, values = raw
// durations). It returns ErrInvalidInput when the matrix has no users or no
// items, and ctx.Err() if ctx is cancelled between half-iterations.
func (f *Factorizer) Fit(ctx context.Context, itemUsers *interactions.Matrix) (*Factors, error) {
	numItems, numUsers := itemUsers.Shape()
	if numUsers == 0 {
		return nil, &InvalidInputError{Field: "matrix", Reason: "no users"}
	}
	if numItems == 0 {
		return nil, &InvalidInputError{Field: "matrix", Reason: "no items"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userItems := itemUsers.Transpose()
	nf := f.config.Factors

	X := NewDense(numUsers, nf)
	Y := NewDense(numItems, nf)
	rng := rand.New(rand.NewPCG(f.config.Seed, f.config.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible init, not security
	for k := range X.Data {
		X.Data[k] = rng.Float64() * initScale
	}
	for k := range Y.Data {
		Y.Data[k] = rng.Float64() * initScale
	}

	start := time.Now()
	for iter := 0; iter < f.config.Iterations; iter++ {
		// Fix Y, solve for X.
		if err := f.sweep(ctx, userItems, Y, X); err != nil {
			return nil, err
		}
		// Fix X, solve for Y.
		if err := f.sweep(ctx, itemUsers, X, Y); err != nil {
			return nil, err
		}

		if f.onProgress != nil {
			f.onProgress(Progress{Iteration: iter + 1, Total: f.config.Iterations, Elapsed: time.Since(start)})
		}
	}

	return &Factors{Users: X, Items: Y}, nil
}

// sweep recomputes every row of out from the fixed factors. Row r of
// weights lists the columns of fixed that row r of out interacted with.
// It returns once every row of out has been written.
func (f *Factorizer) sweep(ctx context.Context, weights *interactions.Matrix, fixed, out *Dense) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gram := f.gram(fixed)
	nf := f.config.Factors
	lambda := f.config.Regularization
	alpha := f.config.Alpha

	g, gctx := errgroup.WithContext(ctx)
	for _, span := range partition(out.Rows, f.config.Workers) {
		lo, hi := span[0], span[1]
		g.Go(func() error {
			A := make([]float64, nf*nf)
			b := make([]float64, nf)
			for r := lo; r < hi; r++ {
				if (r-lo)&63 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				solveRow(weights, r, fixed, gram, lambda, alpha, A, b)
				copy(out.Row(r), b)
			}
			return nil
		})
	}
	return g.Wait()
}

// solveRow builds and solves
//
//	(G + lambda*I + sum (c-1) * y y') x = sum c * y
//
// over the nonzeros of row r, leaving x in b.
//
//nolint:gocritic // A, G follow standard linear algebra notation
func solveRow(weights *interactions.Matrix, r int, fixed *Dense, G []float64, lambda, alpha float64, A, b []float64) {
	nf := fixed.Cols
	copy(A, G)
	for k := 0; k < nf; k++ {
		A[k*nf+k] += lambda
		b[k] = 0
	}

	cols, values := weights.Row(r)
	for n, c := range cols {
		conf := 1 + alpha*values[n]
		cMinus1 := conf - 1
		y := fixed.Row(c)
		for f1 := 0; f1 < nf; f1++ {
			s := cMinus1 * y[f1]
			row := A[f1*nf : f1*nf+nf]
			for f2 := 0; f2 <= f1; f2++ {
				row[f2] += s * y[f2]
			}
			b[f1] += conf * y[f1]
		}
	}

	// Only the lower triangle was accumulated; mirror it.
	for f1 := 0; f1 < nf; f1++ {
		for f2 := 0; f2 < f1; f2++ {
			A[f2*nf+f1] = A[f1*nf+f2]
		}
	}

	choleskySolve(A, nf, b)
}

// gram returns M'M as a row-major f x f matrix. Each output row is reduced by
// a single goroutine in row order of M, so the result does not depend on the
// worker count.
func (f *Factorizer) gram(M *Dense) []float64 { //nolint:gocritic // M follows linear algebra notation
	nf := M.Cols
	G := make([]float64, nf*nf)

	var g errgroup.Group
	for _, span := range partition(nf, f.config.Workers) {
		lo, hi := span[0], span[1]
		g.Go(func() error {
			for f1 := lo; f1 < hi; f1++ {
				row := G[f1*nf : f1*nf+nf]
				for i := 0; i < M.Rows; i++ {
					m := M.Row(i)
					v := m[f1]
					if v == 0 {
						continue
					}
					for f2 := f1; f2 < nf; f2++ {
						row[f2] += v * m[f2]
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for f1 := 0; f1 < nf; f1++ {
		for f2 := 0; f2 < f1; f2++ {
			G[f1*nf+f2] = G[f2*nf+f1]
		}
	}
	return G
}

// partition splits [0, n) into at most workers contiguous spans.
func partition(n, workers int) [][2]int {
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if n == 0 {
		return nil
	}
	chunk := (n + workers - 1) / workers
	spans := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		spans = append(spans, [2]int{lo, hi})
	}
	return spans
}
