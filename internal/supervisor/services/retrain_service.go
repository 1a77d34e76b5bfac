// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/training"
)

// Retrainer trains and publishes a new model.
type Retrainer interface {
	Retrain(ctx context.Context) (*training.Result, error)
}

// RetrainServiceConfig controls the retrain schedule.
type RetrainServiceConfig struct {
	// OnStartup retrains once as soon as the service starts.
	OnStartup bool

	// Interval between scheduled runs. Default: 24h
	Interval time.Duration

	// Timeout bounds a single run. Default: 2h
	Timeout time.Duration
}

// RetrainService retrains the model on a fixed schedule. A failed run is
// logged and retried at the next tick; the serving model stays in place.
type RetrainService struct {
	retrainer Retrainer
	config    RetrainServiceConfig
	logger    zerolog.Logger
	name      string
}

// NewRetrainService creates a RetrainService.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRetrainService(retrainer Retrainer, cfg RetrainServiceConfig, logger zerolog.Logger) *RetrainService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Hour
	}
	return &RetrainService{
		retrainer: retrainer,
		config:    cfg,
		logger:    logger.With().Str("service", "retrain").Logger(),
		name:      "retrain-service",
	}
}

// Serve implements suture.Service.
func (s *RetrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("Retrain service starting")

	if s.config.OnStartup {
		s.run(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Retrain service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx, "schedule")
		}
	}
}

func (s *RetrainService) run(ctx context.Context, trigger string) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	res, err := s.retrainer.Retrain(runCtx)
	if err != nil {
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("Retrain failed, will retry on schedule")
		return
	}
	s.logger.Info().
		Str("trigger", trigger).
		Int("version", res.Version).
		Dur("duration", time.Since(start)).
		Msg("Retrain complete")
}

// String names the service in supervisor events.
func (s *RetrainService) String() string {
	return s.name
}
