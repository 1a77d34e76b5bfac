// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package model

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes m to path atomically. The artifact is written to a temporary
// file in the same directory, synced, and renamed over path. On failure the
// temporary file is removed and path is left untouched.
func Save(m *FactorModel, path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()        //nolint:errcheck // already failing
			_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		}
	}()

	bw := bufio.NewWriterSize(tmp, 1<<20)
	if err = Encode(bw, m); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush model file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync model file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o640); err != nil {
		return fmt.Errorf("chmod model file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename model file: %w", err)
	}

	syncDir(dir)
	return nil
}

// syncDir makes the rename durable where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir) //nolint:gosec // dir derived from the model path
	if err != nil {
		return
	}
	_ = d.Sync()  //nolint:errcheck // not supported on every platform
	_ = d.Close() //nolint:errcheck // read-only handle
}

// Load reads and verifies the artifact at path. A missing file is returned
// as an error wrapping fs.ErrNotExist; any format problem as a
// *CorruptModelError.
func Load(path string) (*FactorModel, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	m, err := Decode(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		var cme *CorruptModelError
		if errors.As(err, &cme) {
			cme.Path = path
		}
		return nil, err
	}
	return m, nil
}

// Inspect returns the params and metadata stored at path without loading
// the factor matrices.
func Inspect(path string) (*Info, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	info, err := DecodeInfo(f)
	if err != nil {
		var cme *CorruptModelError
		if errors.As(err, &cme) {
			cme.Path = path
		}
		return nil, err
	}
	return info, nil
}
