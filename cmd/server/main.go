// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package main is the StreamRec recommendation server.
//
// The server loads the trained ALS artifact, serves personal and popular
// recommendations over HTTP, reloads the artifact when it changes on disk,
// and optionally retrains on a schedule and exports precomputed lists to
// Redis or Badger.
//
//	RootSupervisor ("streamrec")
//	├── ModelSupervisor ("model-layer")
//	│   ├── FileWatcherService (watch.enabled)
//	│   └── RetrainService     (retrain.enabled)
//	└── APISupervisor ("api-layer")
//	    └── HTTPServerService
//
// Configuration comes from config.yaml (or CONFIG_PATH / -config) and
// environment variables:
//
//	MODEL_PATH=data/model.srals DATA_PATH=data/sessions.csv HTTP_PORT=8000 ./server
//
// SIGINT and SIGTERM stop the tree; in-flight requests get
// server.shutdown_timeout to finish.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/api"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/export"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/serving"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/supervisor"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/supervisor/services"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: CONFIG_PATH or ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.Logger())

	logging.Info().
		Str("model_path", cfg.Model.Path).
		Str("data_path", cfg.Data.Path).
		Str("addr", cfg.Server.Addr()).
		Bool("watch", cfg.Watch.Enabled).
		Bool("retrain", cfg.Retrain.Enabled).
		Bool("export", cfg.Export.Enabled).
		Msg("Starting StreamRec server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var exporter *export.Exporter
	if cfg.Export.Enabled {
		store, err := export.Open(ctx, &cfg.Export)
		if err != nil {
			logging.Fatal().Err(err).Str("backend", cfg.Export.Backend).Msg("Failed to open export store")
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing export store")
			}
		}()
		exporter = export.NewExporter(store, &cfg.Export)
	}

	holder := &recommend.Holder{}
	svc := serving.New(holder, cfg, exporter)

	// Popularity first so the startup export includes the popular ranking.
	if err := svc.LoadPopularity(ctx); err != nil {
		logging.Warn().Err(err).Msg("Popularity snapshot unavailable, /popular will be empty")
	}
	if err := svc.Reload(ctx); err != nil {
		logging.Error().Err(err).Str("path", cfg.Model.Path).
			Msg("No model loaded; readiness stays false until a valid artifact appears")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Watch.Enabled {
		tree.AddModelService(services.NewFileWatcherService(cfg.Watch.Debounce,
			services.Watch{Path: cfg.Model.Path, OnChange: svc.Reload},
			services.Watch{Path: cfg.Data.Path, OnChange: svc.LoadPopularity},
		))
	}
	if cfg.Retrain.Enabled {
		tree.AddModelService(services.NewRetrainService(svc, services.RetrainServiceConfig{
			OnStartup: cfg.Retrain.OnStartup,
			Interval:  cfg.Retrain.Interval,
		}, logging.WithComponent("retrain")))
	}

	router := api.NewRouter(
		api.NewHandler(holder, cfg),
		api.NewMiddleware(api.MiddlewareConfigFromServer(&cfg.Server)),
	)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, s := range unstopped {
		logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
	}
	logging.Info().Msg("Server stopped")
}
