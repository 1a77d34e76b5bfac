// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package main trains the ALS model from a session log and writes the
// model artifact.
//
//	./train -data data/sessions.csv -model data/model.srals -factors 500 -iterations 12
//
// Flags override the configuration file and environment. With -export the
// trained lists are also written to the configured export store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/export"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/training"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		logging.Error().Err(err).Msg("Training failed")
		stop()
		os.Exit(1)
	}
}

// options are the command-line overrides. Only flags that were set on the
// command line replace config values.
type options struct {
	configPath string
	export     bool

	data           string
	model          string
	factors        int
	regularization float64
	alpha          float64
	iterations     int
	seed           uint64
	workers        int
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to config.yaml")
	fs.BoolVar(&opts.export, "export", false, "export recommendations after training")
	fs.StringVar(&opts.data, "data", "", "session log CSV (overrides data.path)")
	fs.StringVar(&opts.model, "model", "", "output artifact (overrides model.path)")
	fs.IntVar(&opts.factors, "factors", 0, "latent factors")
	fs.Float64Var(&opts.regularization, "regularization", 0, "L2 regularization")
	fs.Float64Var(&opts.alpha, "alpha", 0, "confidence scale")
	fs.IntVar(&opts.iterations, "iterations", 0, "ALS iterations")
	fs.Uint64Var(&opts.seed, "seed", 0, "initialization seed")
	fs.IntVar(&opts.workers, "workers", 0, "solver goroutines (0 = one per CPU)")
	return fs
}

// applyFlags copies the explicitly set flags onto cfg.
func applyFlags(cfg *config.Config, fs *flag.FlagSet, opts *options) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data.Path = opts.data
		case "model":
			cfg.Model.Path = opts.model
		case "factors":
			cfg.ALS.Factors = opts.factors
		case "regularization":
			cfg.ALS.Regularization = opts.regularization
		case "alpha":
			cfg.ALS.Alpha = opts.alpha
		case "iterations":
			cfg.ALS.Iterations = opts.iterations
		case "seed":
			cfg.ALS.Seed = opts.seed
		case "workers":
			cfg.ALS.Workers = opts.workers
		}
	})
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	fs := newFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	applyFlags(cfg, fs, &opts)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Init(cfg.Logging.Logger())

	ctx = logging.ContextWithNewCorrelationID(ctx)
	res, err := training.Run(ctx, training.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	rows, cols := res.Dataset.Matrix.Shape()
	fmt.Fprintf(stdout, "records:   %d accepted, %d rejected\n", len(res.Dataset.Records), len(res.Dataset.Rejected))
	fmt.Fprintf(stdout, "matrix:    %d items x %d users, %d non-zeros\n", rows, cols, res.Dataset.Matrix.NNZ())
	fmt.Fprintf(stdout, "timings:   read %s, encode %s, fit %s, save %s\n",
		res.Timings.Read, res.Timings.Encode, res.Timings.Fit, res.Timings.Save)
	fmt.Fprintf(stdout, "model:     %s\n", cfg.Model.Path)
	if res.Version > 0 {
		fmt.Fprintf(stdout, "archived:  version %d in %s\n", res.Version, cfg.Model.ArchiveDir)
	}

	if !opts.export {
		return nil
	}
	store, err := export.Open(ctx, &cfg.Export)
	if err != nil {
		return fmt.Errorf("open export store: %w", err)
	}
	defer store.Close()

	exp := export.NewExporter(store, &cfg.Export)
	er, err := exp.Export(ctx, recommend.New(res.Model), recommend.NewPopularity(res.Dataset.Records), cfg.Data.PopularTime)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(stdout, "exported:  %d users to %s (%d popular)\n", er.Written, store.Name(), er.Popular)
	return nil
}
