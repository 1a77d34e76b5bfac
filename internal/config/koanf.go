// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/als"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
)

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/streamrec/config.yaml",
	"/etc/streamrec/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:        "data/sessions.csv",
			PopularTime: recommend.DefaultPopularTime,
		},
		Model: ModelConfig{
			Path:        "data/model.srals",
			ArchiveKeep: 5,
		},
		ALS: ALSConfig{
			Factors:        als.DefaultFactors,
			Regularization: als.DefaultRegularization,
			Alpha:          als.DefaultAlpha,
			Iterations:     als.DefaultIterations,
			Seed:           als.DefaultSeed,
			Workers:        0,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			Timeout:           30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			DefaultN:          100,
			MaxN:              1000,
			CacheTTL:          5 * time.Minute,
			CacheSize:         10000,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Retrain: RetrainConfig{
			Enabled:  false,
			Interval: 24 * time.Hour,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 500 * time.Millisecond,
		},
		Export: ExportConfig{
			Enabled:     false,
			Backend:     "memory",
			KeyPrefix:   "streamrec",
			TopN:        100,
			TTL:         0,
			Concurrency: 8,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
			Badger: BadgerConfig{
				Path: "data/export",
			},
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
	}
}

// Load builds the configuration from defaults, the YAML file at configPath
// (or the first of DefaultConfigPaths when empty), and the environment, in
// increasing priority.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// DATA_PATH -> data.path, ALS_FACTORS -> als.factors
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

var envMappings = map[string]string{
	"data_path":    "data.path",
	"popular_time": "data.popular_time",

	"model_path":         "model.path",
	"model_archive_dir":  "model.archive_dir",
	"model_archive_keep": "model.archive_keep",

	"als_factors":        "als.factors",
	"als_regularization": "als.regularization",
	"als_alpha":          "als.alpha",
	"als_iterations":     "als.iterations",
	"als_seed":           "als.seed",
	"als_workers":        "als.workers",

	"http_host":               "server.host",
	"http_port":               "server.port",
	"server_timeout":          "server.timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"recommend_default_n":     "server.default_n",
	"recommend_max_n":         "server.max_n",
	"recommend_cache_ttl":     "server.cache_ttl",
	"recommend_cache_size":    "server.cache_size",
	"rate_limit_requests":     "server.rate_limit_requests",
	"rate_limit_window":       "server.rate_limit_window",
	"cors_origins":            "server.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"retrain_enabled":    "retrain.enabled",
	"retrain_interval":   "retrain.interval",
	"retrain_on_startup": "retrain.on_startup",

	"watch_enabled":  "watch.enabled",
	"watch_debounce": "watch.debounce",

	"export_enabled":     "export.enabled",
	"export_backend":     "export.backend",
	"export_key_prefix":  "export.key_prefix",
	"export_top_n":       "export.top_n",
	"export_ttl":         "export.ttl",
	"export_concurrency": "export.concurrency",
	"redis_addr":         "export.redis.addr",
	"redis_db":           "export.redis.db",
	"redis_password":     "export.redis.password",
	"badger_path":        "export.badger.path",

	"breaker_max_requests":      "export.breaker.max_requests",
	"breaker_interval":          "export.breaker.interval",
	"breaker_timeout":           "export.breaker.timeout",
	"breaker_failure_threshold": "export.breaker.failure_threshold",
}

// envTransformFunc maps an environment variable to its config path. Unmapped
// variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
