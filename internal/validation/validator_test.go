// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package validation

import (
	"strings"
	"testing"
)

type testALS struct {
	Factors int     `koanf:"factors" validate:"min=1"`
	Alpha   float64 `koanf:"alpha" validate:"gte=0"`
}

type testConfig struct {
	ALS    testALS `koanf:"als"`
	Level  string  `koanf:"level" validate:"loglevel"`
	Format string  `json:"format" validate:"oneof=json console"`
	Path   string  `validate:"required"`
}

func validTestConfig() testConfig {
	return testConfig{
		ALS:    testALS{Factors: 8, Alpha: 100},
		Level:  "info",
		Format: "json",
		Path:   "data.csv",
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	cfg := validTestConfig()
	if err := ValidateStruct(&cfg); err != nil {
		t.Errorf("ValidateStruct() error = %v", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*testConfig)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "nested koanf name",
			mutate:    func(c *testConfig) { c.ALS.Factors = 0 },
			wantField: "als.factors",
			wantTag:   "min",
			wantMsg:   "als.factors must be at least 1",
		},
		{
			name:      "gte",
			mutate:    func(c *testConfig) { c.ALS.Alpha = -1 },
			wantField: "als.alpha",
			wantTag:   "gte",
			wantMsg:   "als.alpha must be greater than or equal to 0",
		},
		{
			name:      "custom loglevel",
			mutate:    func(c *testConfig) { c.Level = "loud" },
			wantField: "level",
			wantTag:   "loglevel",
			wantMsg:   "level must be a log level",
		},
		{
			name:      "json name",
			mutate:    func(c *testConfig) { c.Format = "xml" },
			wantField: "format",
			wantTag:   "oneof",
			wantMsg:   "format must be one of: json console",
		},
		{
			name:      "go name fallback",
			mutate:    func(c *testConfig) { c.Path = "" },
			wantField: "Path",
			wantTag:   "required",
			wantMsg:   "Path is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg)
			err := ValidateStruct(&cfg)
			if err == nil {
				t.Fatal("ValidateStruct() expected error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if !strings.HasPrefix(errs[0].Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want prefix %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestLogLevelCaseInsensitive(t *testing.T) {
	cfg := validTestConfig()
	cfg.Level = "WARN"
	if err := ValidateStruct(&cfg); err != nil {
		t.Errorf("ValidateStruct() error = %v", err)
	}
}

func TestToAPIError(t *testing.T) {
	cfg := validTestConfig()
	cfg.ALS.Factors = 0
	apiErr := ValidateStruct(&cfg).ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "als.factors" {
		t.Errorf("Details[field] = %v", apiErr.Details["field"])
	}

	cfg.Path = ""
	apiErr = ValidateStruct(&cfg).ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %v, want 2 entries", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("Message = %q, want joined messages", apiErr.Message)
	}
}
