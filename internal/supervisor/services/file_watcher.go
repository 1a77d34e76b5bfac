// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
)

// Watch binds a file to the action run when it changes.
type Watch struct {
	Path     string
	OnChange func(ctx context.Context) error
}

// FileWatcherService runs a Watch's OnChange after its file is written,
// created or renamed into place, once the file has been quiet for the
// debounce period. Parent directories are watched so atomic
// replace-by-rename is seen. A failing OnChange is logged; the watcher
// keeps running.
type FileWatcherService struct {
	watches  map[string]Watch
	debounce time.Duration
	logger   zerolog.Logger
	name     string

	// fired is called after each OnChange, for tests.
	fired func(path string, err error)
}

// NewFileWatcherService creates a watcher. debounce <= 0 means 500ms.
func NewFileWatcherService(debounce time.Duration, watches ...Watch) *FileWatcherService {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	m := make(map[string]Watch, len(watches))
	for _, w := range watches {
		m[filepath.Clean(w.Path)] = w
	}
	return &FileWatcherService{
		watches:  m,
		debounce: debounce,
		logger:   logging.WithComponent("watcher"),
		name:     "file-watcher",
	}
}

// Serve implements suture.Service.
func (s *FileWatcherService) Serve(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dirs := make(map[string]struct{})
	for path := range s.watches {
		dir := filepath.Dir(path)
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = struct{}{}
	}
	s.logger.Info().Int("files", len(s.watches)).Dur("debounce", s.debounce).Msg("Watching files")

	timers := make(map[string]*time.Timer)
	due := make(chan string)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			path := filepath.Clean(ev.Name)
			if _, watched := s.watches[path]; !watched {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if t, ok := timers[path]; ok {
				t.Reset(s.debounce)
				continue
			}
			timers[path] = time.AfterFunc(s.debounce, func() {
				select {
				case due <- path:
				case <-ctx.Done():
				}
			})

		case path := <-due:
			delete(timers, path)
			s.trigger(ctx, path)

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			s.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (s *FileWatcherService) trigger(ctx context.Context, path string) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	err := s.watches[path].OnChange(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Reload after file change failed")
	} else {
		s.logger.Info().Str("path", path).Msg("Reloaded after file change")
	}
	if s.fired != nil {
		s.fired(path, err)
	}
}

// String names the service in supervisor events.
func (s *FileWatcherService) String() string {
	return s.name
}
