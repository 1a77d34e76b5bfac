// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package model

import (
	"errors"
	"fmt"
)

// ErrCorruptModel is matched by every *CorruptModelError.
var ErrCorruptModel = errors.New("model: corrupt artifact")

// CorruptModelError reports an artifact that is unreadable or inconsistent.
type CorruptModelError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptModelError) Error() string {
	msg := "model: corrupt artifact"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CorruptModelError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCorruptModel) hold.
func (e *CorruptModelError) Is(target error) bool {
	return target == ErrCorruptModel
}

func corrupt(reason string, err error) *CorruptModelError {
	return &CorruptModelError{Reason: reason, Err: err}
}
