// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ArtifactExt is the file extension of archived models.
const ArtifactExt = ".srals"

// ArchiveEntry describes one archived model version.
type ArchiveEntry struct {
	Version int    `json:"version"`
	Path    string `json:"path"`
	Info    *Info  `json:"info,omitempty"`
}

// Archive keeps numbered snapshots of trained models in a directory so a
// previous model can be restored. Files are named {name}_v{version}.srals.
type Archive struct {
	baseDir string
	name    string
	mu      sync.RWMutex

	// latest is the highest version on disk, 0 if none.
	latest int
}

// NewArchive opens (creating if needed) an archive directory.
func NewArchive(baseDir, name string) (*Archive, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid archive name %q", name)
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	a := &Archive{baseDir: baseDir, name: name}
	versions, err := a.scan()
	if err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	if len(versions) > 0 {
		a.latest = versions[0]
	}
	return a, nil
}

// Put stores m as the next version and returns that version.
func (a *Archive) Put(m *FactorModel) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	version := a.latest + 1
	if err := Save(m, a.path(version)); err != nil {
		return 0, fmt.Errorf("archive version %d: %w", version, err)
	}
	a.latest = version
	return version, nil
}

// Latest returns the newest archived version, if any.
func (a *Archive) Latest() (int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest, a.latest > 0
}

// Load reads an archived version. Version 0 means the latest.
func (a *Archive) Load(version int) (*FactorModel, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if version == 0 {
		if a.latest == 0 {
			return nil, fmt.Errorf("no archived model for %s", a.name)
		}
		version = a.latest
	}
	return Load(a.path(version))
}

// List returns archived versions, newest first. Entries whose header cannot
// be read are listed without Info.
func (a *Archive) List() ([]ArchiveEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	versions, err := a.scan()
	if err != nil {
		return nil, err
	}
	entries := make([]ArchiveEntry, 0, len(versions))
	for _, v := range versions {
		e := ArchiveEntry{Version: v, Path: a.path(v)}
		if info, err := Inspect(e.Path); err == nil {
			e.Info = info
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Prune removes all but the newest keep versions. keep < 1 is treated as 1.
func (a *Archive) Prune(keep int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if keep < 1 {
		keep = 1
	}
	versions, err := a.scan()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, v := range versions[min(keep, len(versions)):] {
		if err := os.Remove(a.path(v)); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("delete model version %d: %w", v, err)
		}
		removed++
	}
	return removed, nil
}

// scan returns the versions present on disk, newest first.
func (a *Archive) scan() ([]int, error) {
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version := parseArtifactFilename(entry.Name())
		if name != a.name {
			continue
		}
		versions = append(versions, version)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

func (a *Archive) path(version int) string {
	return filepath.Join(a.baseDir, fmt.Sprintf("%s_v%d%s", a.name, version, ArtifactExt))
}

// parseArtifactFilename extracts name and version from "name_v12.srals".
func parseArtifactFilename(file string) (name string, version int) {
	base, ok := strings.CutSuffix(file, ArtifactExt)
	if !ok {
		return "", 0
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	v, err := strconv.Atoi(base[idx+2:])
	if err != nil || v <= 0 {
		return "", 0
	}
	return base[:idx], v
}
