// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package training runs the offline pipeline: read the session log, encode
// it, factorize it, and persist the model artifact.
package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/als"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/metrics"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/model"
)

// Options configures one pipeline run.
type Options struct {
	DataPath  string
	ModelPath string
	ALS       als.Config

	// ArchiveDir, when set, also stores a numbered copy of the model there
	// and prunes all but ArchiveKeep versions (0 keeps everything).
	ArchiveDir  string
	ArchiveKeep int
}

// OptionsFromConfig builds Options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DataPath:    cfg.Data.Path,
		ModelPath:   cfg.Model.Path,
		ALS:         cfg.ALS.Factorizer(),
		ArchiveDir:  cfg.Model.ArchiveDir,
		ArchiveKeep: cfg.Model.ArchiveKeep,
	}
}

// Timings records the wall time of each stage.
type Timings struct {
	Read   time.Duration
	Encode time.Duration
	Fit    time.Duration
	Save   time.Duration
}

// Total is the sum of all stages.
func (t Timings) Total() time.Duration {
	return t.Read + t.Encode + t.Fit + t.Save
}

// Result is the output of a successful run.
type Result struct {
	Model   *model.FactorModel
	Dataset *interactions.Dataset

	// Version is the archive version, or 0 when archiving is off.
	Version int
	Timings Timings
}

// Run executes the full pipeline. The artifact at opts.ModelPath is only
// replaced once training has succeeded.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.Ctx(ctx).With().Str("component", "training").Logger()
	res := &Result{}

	start := time.Now()
	records, rejected, err := interactions.ReadFile(opts.DataPath)
	if err != nil {
		return nil, err
	}
	res.Timings.Read = time.Since(start)
	logger.Info().
		Str("path", opts.DataPath).
		Int("records", len(records)).
		Int("unparseable", len(rejected)).
		Dur("duration", res.Timings.Read).
		Msg("Interaction log read")
	for _, rej := range firstN(rejected, 5) {
		logger.Warn().Err(rej).Msg("Rejected record")
	}

	start = time.Now()
	ds, err := interactions.Encode(records, interactions.Options{})
	if err != nil {
		metrics.RecordTraining(0, err)
		return nil, err
	}
	ds.Rejected = append(rejected, ds.Rejected...)
	res.Timings.Encode = time.Since(start)
	res.Dataset = ds

	metrics.RecordIngest(len(ds.Records), len(ds.Rejected), ds.Filtered)
	rows, cols := ds.Matrix.Shape()
	logger.Info().
		Int("accepted", len(ds.Records)).
		Int("rejected", len(ds.Rejected)).
		Int("items", rows).
		Int("users", cols).
		Int("nnz", ds.Matrix.NNZ()).
		Dur("duration", res.Timings.Encode).
		Msg("Interaction matrix built")

	start = time.Now()
	m, err := Fit(ctx, ds, opts.ALS, logger)
	res.Timings.Fit = time.Since(start)
	metrics.RecordTraining(res.Timings.Fit, err)
	if err != nil {
		return nil, err
	}
	res.Model = m

	start = time.Now()
	if err := model.Save(m, opts.ModelPath); err != nil {
		return nil, err
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("model not saved: %w", err)
	}
	if opts.ArchiveDir != "" {
		if res.Version, err = archive(m, opts); err != nil {
			return nil, err
		}
	}
	res.Timings.Save = time.Since(start)

	logger.Info().
		Str("path", opts.ModelPath).
		Int("version", res.Version).
		Dur("save", res.Timings.Save).
		Dur("total", res.Timings.Total()).
		Msg("Model saved")
	return res, nil
}

// Fit factorizes ds and assembles the model. Progress is logged per
// iteration.
func Fit(ctx context.Context, ds *interactions.Dataset, cfg als.Config, logger zerolog.Logger) (*model.FactorModel, error) { //nolint:gocritic // zerolog.Logger is designed to be passed by value
	f, err := als.New(cfg)
	if err != nil {
		return nil, err
	}
	f.OnProgress(func(p als.Progress) {
		metrics.ALSIterations.Inc()
		logger.Debug().
			Int("iteration", p.Iteration).
			Int("total", p.Total).
			Dur("elapsed", p.Elapsed).
			Msg("ALS iteration complete")
	})

	logger.Info().
		Int("factors", cfg.Factors).
		Float64("regularization", cfg.Regularization).
		Float64("alpha", cfg.Alpha).
		Int("iterations", cfg.Iterations).
		Int("workers", cfg.Workers).
		Msg("Fitting ALS model")

	start := time.Now()
	factors, err := f.Fit(ctx, ds.Matrix)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	elapsed := time.Since(start)

	m, err := model.New(model.ParamsFromConfig(f.Config()), model.Metadata{
		TrainedAt:        time.Now().UTC(),
		TrainingDuration: elapsed,
		Records:          int64(len(ds.Records)),
		NNZ:              int64(ds.Matrix.NNZ()),
	}, ds.Users, ds.Items, factors)
	if err != nil {
		return nil, fmt.Errorf("assemble model: %w", err)
	}

	logger.Info().Dur("duration", elapsed).Msg("ALS model fitted")
	return m, nil
}

func archive(m *model.FactorModel, opts Options) (int, error) {
	name := strings.TrimSuffix(filepath.Base(opts.ModelPath), filepath.Ext(opts.ModelPath))
	a, err := model.NewArchive(opts.ArchiveDir, name)
	if err != nil {
		return 0, err
	}
	version, err := a.Put(m)
	if err != nil {
		return 0, err
	}
	if opts.ArchiveKeep > 0 {
		if _, err := a.Prune(opts.ArchiveKeep); err != nil {
			return version, err
		}
	}
	return version, nil
}

func firstN(errs []error, n int) []error {
	if len(errs) > n {
		return errs[:n]
	}
	return errs
}
