// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package serving

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/export"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
)

const sessionLog = `1,1,alpha,0,10
1,2,beta,10,15
2,3,alpha,0,4
2,4,gamma,5,25
3,5,beta,0,30
3,6,gamma,40,45
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "sessions.csv")
	if err := os.WriteFile(data, []byte(sessionLog), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return &config.Config{
		Data:  config.DataConfig{Path: data, PopularTime: 3},
		Model: config.ModelConfig{Path: filepath.Join(dir, "model.srals")},
		ALS:   config.ALSConfig{Factors: 3, Regularization: 0.1, Alpha: 10, Iterations: 3, Seed: 1, Workers: 1},
		Export: config.ExportConfig{
			Enabled:     true,
			Backend:     export.BackendMemory,
			KeyPrefix:   "test",
			TopN:        2,
			Concurrency: 2,
		},
	}
}

func TestService_LoadModelMissing(t *testing.T) {
	svc := New(&recommend.Holder{}, testConfig(t), nil)
	if err := svc.LoadModel(context.Background()); err == nil {
		t.Error("LoadModel() error = nil, want error for missing artifact")
	}
	if svc.Holder().Ready() {
		t.Error("holder should not be ready")
	}
}

func TestService_RetrainThenReload(t *testing.T) {
	cfg := testConfig(t)
	svc := New(&recommend.Holder{}, cfg, nil)
	ctx := context.Background()

	res, err := svc.Retrain(ctx)
	if err != nil {
		t.Fatalf("Retrain() error = %v", err)
	}
	if !svc.Holder().Ready() {
		t.Fatal("holder not ready after Retrain()")
	}
	if svc.Holder().Current().Model() != res.Model {
		t.Error("Retrain() did not publish the trained model")
	}
	if svc.Holder().Popularity() == nil {
		t.Error("Retrain() did not publish popularity")
	}

	if err := svc.LoadModel(ctx); err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if svc.Holder().Current().Model() == res.Model {
		t.Error("LoadModel() should publish a freshly decoded model")
	}
	recs, err := svc.Holder().Recommend(1, 2)
	if err != nil || len(recs) != 2 {
		t.Errorf("Recommend() = %v, %v; want 2 items", recs, err)
	}
}

func TestService_KeepsModelOnFailure(t *testing.T) {
	cfg := testConfig(t)
	svc := New(&recommend.Holder{}, cfg, nil)
	ctx := context.Background()

	res, err := svc.Retrain(ctx)
	if err != nil {
		t.Fatalf("Retrain() error = %v", err)
	}

	if err := os.WriteFile(cfg.Model.Path, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := svc.LoadModel(ctx); err == nil {
		t.Error("LoadModel() error = nil, want corrupt model error")
	}
	if svc.Holder().Current().Model() != res.Model {
		t.Error("failed reload replaced the serving model")
	}

	cfg.Data.Path = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := svc.Retrain(ctx); err == nil {
		t.Error("Retrain() error = nil, want error for missing data")
	}
	if svc.Holder().Current().Model() != res.Model {
		t.Error("failed retrain replaced the serving model")
	}
}

func TestService_LoadPopularity(t *testing.T) {
	svc := New(&recommend.Holder{}, testConfig(t), nil)
	if err := svc.LoadPopularity(context.Background()); err != nil {
		t.Fatalf("LoadPopularity() error = %v", err)
	}
	pop := svc.Holder().Popularity()
	if pop == nil || pop.Len() != 6 {
		t.Fatalf("Popularity() = %v, want 6 sessions", pop)
	}
}

func TestService_Export(t *testing.T) {
	cfg := testConfig(t)
	store := export.NewMemoryStore()
	svc := New(&recommend.Holder{}, cfg, export.NewExporter(store, &cfg.Export))
	ctx := context.Background()

	if _, err := svc.Export(ctx); !errors.Is(err, recommend.ErrNoModel) {
		t.Errorf("Export() before a model error = %v, want ErrNoModel", err)
	}

	if _, err := svc.Retrain(ctx); err != nil {
		t.Fatalf("Retrain() error = %v", err)
	}
	// Retrain exports on its own.
	if got := store.Len(); got != 3 {
		t.Errorf("store holds %d user keys after Retrain(), want 3", got)
	}

	res, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Users != 3 || res.Written != 3 {
		t.Errorf("Export() = %+v, want 3 users written", res)
	}
	if _, err := store.Ranking(ctx, "test:popular", 0); err != nil {
		t.Errorf("Ranking(popular) error = %v", err)
	}
}

func TestService_ReloadExports(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	trainer := New(&recommend.Holder{}, cfg, nil)
	if _, err := trainer.Retrain(ctx); err != nil {
		t.Fatalf("Retrain() error = %v", err)
	}

	store := export.NewMemoryStore()
	svc := New(&recommend.Holder{}, cfg, export.NewExporter(store, &cfg.Export))
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if !svc.Holder().Ready() {
		t.Error("holder not ready after Reload()")
	}
	if got := store.Len(); got != 3 {
		t.Errorf("store holds %d user keys after Reload(), want 3", got)
	}
}

func TestService_ExportDisabled(t *testing.T) {
	svc := New(&recommend.Holder{}, testConfig(t), nil)
	if _, err := svc.Export(context.Background()); !errors.Is(err, ErrExportDisabled) {
		t.Errorf("Export() error = %v, want ErrExportDisabled", err)
	}
}
