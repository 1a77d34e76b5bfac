// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package main runs an offline evaluation and prints NDCG@k and MAP@k as
// JSON.
//
// Without -model it trains on sessions that start before the split point and
// scores the rest (a temporal holdout). With -model it scores an existing
// artifact against the sessions after the split.
//
//	./evaluate -data data/sessions.csv -k 100 -fraction 0.8
//	./evaluate -data data/sessions.csv -model data/model.srals -split 5000
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/evaluate"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/model"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		logging.Error().Err(err).Msg("Evaluation failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config.yaml")
	dataPath := fs.String("data", "", "session log CSV (overrides data.path)")
	modelPath := fs.String("model", "", "score this artifact instead of training")
	k := fs.Int("k", 100, "ranking cutoff")
	split := fs.Int64("split", 0, "train/test boundary on time_start (0 = use -fraction)")
	fraction := fs.Float64("fraction", 0.8, "share of sessions used for training when -split is 0")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *k <= 0 {
		return fmt.Errorf("-k must be > 0, got %d", *k)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.Logging.Logger())
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}

	records, rejected, err := interactions.ReadFile(cfg.Data.Path)
	if err != nil {
		return err
	}
	if len(rejected) > 0 {
		logging.Warn().Int("rejected", len(rejected)).Msg("Skipped malformed records")
	}

	splitAt := *split
	if splitAt == 0 {
		splitAt = evaluate.SplitPoint(records, *fraction)
	}
	logging.Info().Int("records", len(records)).Int64("split_at", splitAt).Int("k", *k).Msg("Evaluating")

	var report *evaluate.Report
	if *modelPath != "" {
		m, err := model.Load(*modelPath)
		if err != nil {
			return err
		}
		train, test := evaluate.Split(records, splitAt)
		r := evaluate.Evaluate(recommend.New(m), test, *k)
		r.SplitAt = splitAt
		r.TrainRecords = len(train)
		r.TestRecords = len(test)
		report = &r
	} else {
		report, err = evaluate.Holdout(ctx, records, evaluate.HoldoutConfig{
			SplitAt: splitAt,
			K:       *k,
			ALS:     cfg.ALS.Factorizer(),
		})
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
