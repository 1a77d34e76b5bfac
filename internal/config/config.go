// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package config loads StreamRec configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. The loaded *Config is passed explicitly to every
// entry point.
//
//	data:
//	  path: /data/sessions.csv
//	  popular_time: 6147
//	model:
//	  path: /data/model.srals
//	als:
//	  factors: 500
//	  iterations: 12
//	server:
//	  port: 8000
//	export:
//	  enabled: true
//	  backend: redis
//	  redis:
//	    addr: localhost:6379
package config

import (
	"fmt"
	"time"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/als"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/validation"
)

// Config holds all application configuration.
type Config struct {
	Data    DataConfig    `koanf:"data"`
	Model   ModelConfig   `koanf:"model"`
	ALS     ALSConfig     `koanf:"als"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Retrain RetrainConfig `koanf:"retrain"`
	Watch   WatchConfig   `koanf:"watch"`
	Export  ExportConfig  `koanf:"export"`
}

// DataConfig locates the interaction log.
type DataConfig struct {
	Path string `koanf:"path" validate:"required"`

	// PopularTime is the default instant for the popularity endpoint.
	PopularTime int64 `koanf:"popular_time"`
}

// ModelConfig locates the model artifact.
type ModelConfig struct {
	Path string `koanf:"path" validate:"required"`

	// ArchiveDir keeps versioned copies of every retrained model when set.
	ArchiveDir  string `koanf:"archive_dir"`
	ArchiveKeep int    `koanf:"archive_keep" validate:"gte=0"`
}

// ALSConfig holds factorization hyperparameters.
type ALSConfig struct {
	Factors        int     `koanf:"factors" validate:"min=1"`
	Regularization float64 `koanf:"regularization" validate:"gte=0"`
	Alpha          float64 `koanf:"alpha" validate:"gte=0"`
	Iterations     int     `koanf:"iterations" validate:"min=1"`
	Seed           uint64  `koanf:"seed"`

	// Workers of 0 means one per CPU.
	Workers int `koanf:"workers" validate:"gte=0"`
}

// Factorizer converts to the als package configuration.
func (c ALSConfig) Factorizer() als.Config {
	cfg := als.DefaultConfig()
	cfg.Factors = c.Factors
	cfg.Regularization = c.Regularization
	cfg.Alpha = c.Alpha
	cfg.Iterations = c.Iterations
	cfg.Seed = c.Seed
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	return cfg
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	DefaultN int `koanf:"default_n" validate:"min=1"`
	MaxN     int `koanf:"max_n" validate:"min=1,gtefield=DefaultN"`

	// CacheTTL of 0 disables the personal recommendation cache.
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`

	// RateLimitRequests of 0 disables rate limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"loglevel"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Logger converts to logging.Config writing to stderr.
func (c LoggingConfig) Logger() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// RetrainConfig schedules periodic retraining inside the server.
type RetrainConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Interval  time.Duration `koanf:"interval" validate:"gt=0"`
	OnStartup bool          `koanf:"on_startup"`
}

// WatchConfig controls hot reload of the model artifact.
type WatchConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Debounce time.Duration `koanf:"debounce" validate:"gte=0"`
}

// ExportConfig controls publishing precomputed recommendations.
type ExportConfig struct {
	Enabled bool `koanf:"enabled"`

	// Backend is memory, redis, or badger.
	Backend   string        `koanf:"backend" validate:"oneof=memory redis badger"`
	KeyPrefix string        `koanf:"key_prefix" validate:"required"`
	TopN      int           `koanf:"top_n" validate:"min=1"`
	TTL       time.Duration `koanf:"ttl" validate:"gte=0"`

	// Concurrency bounds parallel writes.
	Concurrency int `koanf:"concurrency" validate:"min=1"`

	Redis   RedisConfig   `koanf:"redis"`
	Badger  BadgerConfig  `koanf:"badger"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// RedisConfig holds the Redis connection.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	DB       int    `koanf:"db" validate:"gte=0"`
	Password string `koanf:"password"`
}

// BadgerConfig holds the embedded store location.
type BadgerConfig struct {
	Path string `koanf:"path"`
}

// BreakerConfig configures the circuit breaker around export writes.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests" validate:"min=1"`
	Interval         time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if c.Export.Enabled {
		switch c.Export.Backend {
		case "redis":
			if c.Export.Redis.Addr == "" {
				return fmt.Errorf("export.redis.addr is required for the redis backend")
			}
		case "badger":
			if c.Export.Badger.Path == "" {
				return fmt.Errorf("export.badger.path is required for the badger backend")
			}
		}
	}
	return nil
}
