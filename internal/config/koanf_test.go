// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.ALS.Factors != 500 || cfg.ALS.Iterations != 12 || cfg.ALS.Seed != 42 {
		t.Errorf("ALS defaults = %+v", cfg.ALS)
	}
	if cfg.ALS.Regularization != 0.2 || cfg.ALS.Alpha != 100 {
		t.Errorf("ALS defaults = %+v", cfg.ALS)
	}
	if cfg.Data.PopularTime != 6147 {
		t.Errorf("Data.PopularTime = %d, want 6147", cfg.Data.PopularTime)
	}
	if cfg.Server.Port != 8000 || cfg.Server.DefaultN != 100 {
		t.Errorf("Server defaults = %+v", cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

// isolate clears the mapped environment and moves into an empty directory
// so no stray config file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for env := range envMappings {
		t.Setenv(strings.ToUpper(env), "")
		os.Unsetenv(strings.ToUpper(env))
	}
	t.Setenv(ConfigPathEnvVar, "")
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Path != "data/model.srals" {
		t.Errorf("Model.Path = %q", cfg.Model.Path)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Watch.Debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
data:
  path: /srv/sessions.csv
als:
  factors: 64
  iterations: 5
server:
  port: 9000
  timeout: 5s
  cors_origins:
    - https://a.example
    - https://b.example
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ALS_FACTORS", "32")
	t.Setenv("MODEL_PATH", "/srv/model.srals")
	t.Setenv("RETRAIN_INTERVAL", "6h")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Data.Path != "/srv/sessions.csv" {
		t.Errorf("Data.Path = %q, want file value", cfg.Data.Path)
	}
	if cfg.ALS.Factors != 32 {
		t.Errorf("ALS.Factors = %d, want env override 32", cfg.ALS.Factors)
	}
	if cfg.ALS.Iterations != 5 {
		t.Errorf("ALS.Iterations = %d, want 5", cfg.ALS.Iterations)
	}
	if cfg.ALS.Alpha != 100 {
		t.Errorf("ALS.Alpha = %v, want default 100", cfg.ALS.Alpha)
	}
	if cfg.Model.Path != "/srv/model.srals" {
		t.Errorf("Model.Path = %q", cfg.Model.Path)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Timeout != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", cfg.Server.CORSOrigins)
	}
	if cfg.Retrain.Interval != 6*time.Hour {
		t.Errorf("Retrain.Interval = %v, want 6h", cfg.Retrain.Interval)
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_CORSFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,,")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "zero factors", env: map[string]string{"ALS_FACTORS": "0"}, wantErr: "als.factors"},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: "logging.level"},
		{name: "bad backend", env: map[string]string{"EXPORT_BACKEND": "s3"}, wantErr: "export.backend"},
		{name: "max below default", env: map[string]string{"RECOMMEND_MAX_N": "10"}, wantErr: "server.max_n"},
		{
			name:    "redis without addr",
			env:     map[string]string{"EXPORT_ENABLED": "true", "EXPORT_BACKEND": "redis", "REDIS_ADDR": ""},
			wantErr: "export.redis.addr",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"DATA_PATH":      "data.path",
		"MODEL_PATH":     "model.path",
		"ALS_ALPHA":      "als.alpha",
		"HTTP_PORT":      "server.port",
		"REDIS_ADDR":     "export.redis.addr",
		"HOME":           "",
		"als_iterations": "als.iterations",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestALSConfig_Factorizer(t *testing.T) {
	c := ALSConfig{Factors: 8, Regularization: 0.1, Alpha: 5, Iterations: 3, Seed: 7}
	fc := c.Factorizer()
	if fc.Factors != 8 || fc.Iterations != 3 || fc.Seed != 7 {
		t.Errorf("Factorizer() = %+v", fc)
	}
	if fc.Workers < 1 {
		t.Errorf("Workers = %d, want NumCPU default", fc.Workers)
	}
	c.Workers = 3
	if got := c.Factorizer().Workers; got != 3 {
		t.Errorf("Workers = %d, want 3", got)
	}
}
