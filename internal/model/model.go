// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

// Package model defines the trained factor model and its on-disk artifact.
//
// # Artifact Format
//
// A model file is a single self-describing binary artifact:
//
//	magic "SRALS\x00" | format version uint16 | flags uint8
//	gzip-compressed body:
//	    repeated { tag uint16 | length uint64 | payload }
//	sha256(uncompressed body) [32]byte
//
// All integers are big-endian and floats are stored as IEEE-754 bit
// patterns, so a save/load round-trip is bit-exact. Files are written to a
// temporary sibling and renamed into place, so readers never observe a
// partially written model.
//
// # Integrity
//
// Load returns a *CorruptModelError for a wrong magic, an unsupported
// version, truncation, a checksum mismatch, or sections that disagree
// with each other.
package model

import (
	"fmt"
	"time"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/als"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
)

// Params are the hyperparameters a model was trained with.
type Params struct {
	Factors        int     `json:"factors"`
	Regularization float64 `json:"regularization"`
	Alpha          float64 `json:"alpha"`
	Iterations     int     `json:"iterations"`
	Seed           uint64  `json:"seed"`
}

// ParamsFromConfig copies the persisted subset of an ALS config.
func ParamsFromConfig(cfg als.Config) Params {
	return Params{
		Factors:        cfg.Factors,
		Regularization: cfg.Regularization,
		Alpha:          cfg.Alpha,
		Iterations:     cfg.Iterations,
		Seed:           cfg.Seed,
	}
}

// Metadata describes the training run that produced a model.
type Metadata struct {
	// TrainedAt is when training finished.
	TrainedAt time.Time `json:"trained_at"`

	// TrainingDuration is the wall time spent in the factorizer.
	TrainingDuration time.Duration `json:"training_duration"`

	// Records is the number of accepted input records.
	Records int64 `json:"records"`

	// NNZ is the number of nonzero cells in the interaction matrix.
	NNZ int64 `json:"nnz"`

	// NumUsers and NumItems mirror the mapping sizes.
	NumUsers int64 `json:"num_users"`
	NumItems int64 `json:"num_items"`
}

// FactorModel is a trained ALS model together with the id mappings it was
// trained with. It is immutable once constructed; retraining produces a new
// value.
type FactorModel struct {
	Params   Params
	Metadata Metadata

	Users *interactions.IDMap[int64]
	Items *interactions.IDMap[string]

	// UserFactors is n_users x f.
	UserFactors *als.Dense

	// ItemFactors is n_items x f.
	ItemFactors *als.Dense
}

// New assembles a model from a fit result and checks that every part agrees
// on shape.
func New(params Params, meta Metadata, users *interactions.IDMap[int64], items *interactions.IDMap[string], factors *als.Factors) (*FactorModel, error) {
	meta.NumUsers = int64(users.Len())
	meta.NumItems = int64(items.Len())

	m := &FactorModel{
		Params:      params,
		Metadata:    meta,
		Users:       users,
		Items:       items,
		UserFactors: factors.Users,
		ItemFactors: factors.Items,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the shape invariants.
func (m *FactorModel) Validate() error {
	if m.Users == nil || m.Items == nil || m.UserFactors == nil || m.ItemFactors == nil {
		return fmt.Errorf("model is incomplete")
	}
	f := m.Params.Factors
	if m.UserFactors.Rows != m.Users.Len() || m.UserFactors.Cols != f {
		return fmt.Errorf("user factors shape (%d, %d), want (%d, %d)",
			m.UserFactors.Rows, m.UserFactors.Cols, m.Users.Len(), f)
	}
	if m.ItemFactors.Rows != m.Items.Len() || m.ItemFactors.Cols != f {
		return fmt.Errorf("item factors shape (%d, %d), want (%d, %d)",
			m.ItemFactors.Rows, m.ItemFactors.Cols, m.Items.Len(), f)
	}
	return nil
}
