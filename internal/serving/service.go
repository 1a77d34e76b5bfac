// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package serving owns the live model: it loads artifacts into the
// recommend.Holder, rebuilds the popularity snapshot, retrains on demand and
// pushes precomputed lists to the export store.
//
// Every publishing path keeps the previous model on failure, so a corrupt
// artifact or a failed training run never interrupts serving.
package serving

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/export"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/metrics"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/model"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/training"
)

// Model load sources, used as the metrics label.
const (
	SourceFile    = "file"
	SourceRetrain = "retrain"
)

// ErrExportDisabled is returned by Export when no exporter is configured.
var ErrExportDisabled = errors.New("serving: export is not enabled")

// Service publishes models into a Holder.
type Service struct {
	holder   *recommend.Holder
	cfg      *config.Config
	exporter *export.Exporter

	// mu serializes reloads and retrains.
	mu sync.Mutex
}

// New creates a Service. exporter may be nil.
func New(holder *recommend.Holder, cfg *config.Config, exporter *export.Exporter) *Service {
	return &Service{holder: holder, cfg: cfg, exporter: exporter}
}

// Holder returns the published state.
func (s *Service) Holder() *recommend.Holder {
	return s.holder
}

// ModelPath returns the artifact path being served.
func (s *Service) ModelPath() string {
	return s.cfg.Model.Path
}

// LoadModel reads the artifact at the configured path and publishes it.
func (s *Service) LoadModel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.Ctx(ctx).With().Str("component", "serving").Logger()
	start := time.Now()

	m, err := model.Load(s.cfg.Model.Path)
	metrics.RecordModelLoad(SourceFile, err)
	if err != nil {
		if s.holder.Ready() {
			logger.Warn().Err(err).Str("path", s.cfg.Model.Path).Msg("Model reload failed, keeping current model")
		}
		return err
	}

	s.publish(m)
	logger.Info().
		Str("path", s.cfg.Model.Path).
		Int("users", m.Users.Len()).
		Int("items", m.Items.Len()).
		Time("trained_at", m.Metadata.TrainedAt).
		Dur("duration", time.Since(start)).
		Msg("Model loaded")
	return nil
}

// Reload loads the artifact and, when export is enabled, pushes the new
// lists to the export store. Export failures are logged only.
func (s *Service) Reload(ctx context.Context) error {
	if err := s.LoadModel(ctx); err != nil {
		return err
	}
	if s.exporter == nil {
		return nil
	}
	if _, err := s.Export(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("component", "serving").Msg("Export after reload failed")
	}
	return nil
}

// LoadPopularity rebuilds the popularity snapshot from the session log.
func (s *Service) LoadPopularity(ctx context.Context) error {
	records, rejected, err := interactions.ReadFile(s.cfg.Data.Path)
	if err != nil {
		return err
	}
	s.setPopularity(records)
	logging.Ctx(ctx).Info().
		Str("component", "serving").
		Int("records", len(records)).
		Int("rejected", len(rejected)).
		Msg("Popularity snapshot built")
	return nil
}

// Retrain runs the training pipeline, publishes the new model and popularity
// snapshot, then exports when an exporter is configured. Export failures
// are logged and do not undo the publish.
func (s *Service) Retrain(ctx context.Context) (*training.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	logger := logging.Ctx(ctx).With().Str("component", "serving").Logger()

	res, err := training.Run(ctx, training.OptionsFromConfig(s.cfg))
	metrics.RecordModelLoad(SourceRetrain, err)
	if err != nil {
		logger.Error().Err(err).Msg("Retrain failed, keeping current model")
		return nil, fmt.Errorf("retrain: %w", err)
	}

	s.publish(res.Model)
	s.setPopularity(res.Dataset.Records)
	logger.Info().
		Int("users", res.Model.Users.Len()).
		Int("items", res.Model.Items.Len()).
		Dur("total", res.Timings.Total()).
		Msg("Retrained model published")

	if s.exporter != nil {
		if _, err := s.export(ctx); err != nil {
			logger.Warn().Err(err).Msg("Export after retrain failed")
		}
	}
	return res, nil
}

// Export writes the current model's lists to the export store.
func (s *Service) Export(ctx context.Context) (export.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.export(ctx)
}

func (s *Service) export(ctx context.Context) (export.Result, error) {
	if s.exporter == nil {
		return export.Result{}, ErrExportDisabled
	}
	rec := s.holder.Current()
	if rec == nil {
		return export.Result{}, recommend.ErrNoModel
	}
	return s.exporter.Export(ctx, rec, s.holder.Popularity(), s.cfg.Data.PopularTime)
}

func (s *Service) publish(m *model.FactorModel) {
	s.holder.Swap(m)
	metrics.SetModel(m.Users.Len(), m.Items.Len(), m.Metadata.TrainedAt)
}

func (s *Service) setPopularity(records []interactions.RawInteraction) {
	s.holder.SwapPopularity(recommend.NewPopularity(records))
}
