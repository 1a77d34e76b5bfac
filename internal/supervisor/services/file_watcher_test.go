// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type firing struct {
	path string
	err  error
}

func startWatcher(t *testing.T, svc *FileWatcherService) chan firing {
	t.Helper()
	fired := make(chan firing, 16)
	svc.fired = func(path string, err error) { fired <- firing{path, err} }

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	})

	// fsnotify needs the watch registered before the first write.
	time.Sleep(100 * time.Millisecond)
	return fired
}

func expectFiring(t *testing.T, fired chan firing) firing {
	t.Helper()
	select {
	case f := <-fired:
		return f
	case <-time.After(3 * time.Second):
		t.Fatal("OnChange was not called")
		return firing{}
	}
}

func expectQuiet(t *testing.T, fired chan firing, d time.Duration) {
	t.Helper()
	select {
	case f := <-fired:
		t.Errorf("unexpected OnChange for %s", f.path)
	case <-time.After(d):
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestFileWatcherService_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "model.srals")
	writeFile(t, target, "v0")

	var calls atomic.Int32
	svc := NewFileWatcherService(100*time.Millisecond, Watch{
		Path:     target,
		OnChange: func(context.Context) error { calls.Add(1); return nil },
	})
	fired := startWatcher(t, svc)

	for i := 0; i < 5; i++ {
		writeFile(t, target, "v1")
		time.Sleep(10 * time.Millisecond)
	}

	f := expectFiring(t, fired)
	if f.path != target || f.err != nil {
		t.Errorf("firing = %+v, want %s without error", f, target)
	}
	expectQuiet(t, fired, 300*time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("OnChange called %d times, want 1", n)
	}
}

func TestFileWatcherService_AtomicRename(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "model.srals")

	svc := NewFileWatcherService(50*time.Millisecond, Watch{
		Path:     target,
		OnChange: func(context.Context) error { return nil },
	})
	fired := startWatcher(t, svc)

	tmp := filepath.Join(dir, ".model.srals.tmp")
	writeFile(t, tmp, "new")
	if err := os.Rename(tmp, target); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if f := expectFiring(t, fired); f.path != target {
		t.Errorf("fired for %s, want %s", f.path, target)
	}
}

func TestFileWatcherService_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	svc := NewFileWatcherService(20*time.Millisecond, Watch{
		Path:     filepath.Join(dir, "model.srals"),
		OnChange: func(context.Context) error { return nil },
	})
	fired := startWatcher(t, svc)

	writeFile(t, filepath.Join(dir, "unrelated.txt"), "x")
	expectQuiet(t, fired, 200*time.Millisecond)
}

func TestFileWatcherService_MultipleWatches(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.srals")
	data := filepath.Join(dir, "sessions.csv")

	onChangeErr := errors.New("corrupt artifact")
	svc := NewFileWatcherService(20*time.Millisecond,
		Watch{Path: model, OnChange: func(context.Context) error { return onChangeErr }},
		Watch{Path: data, OnChange: func(context.Context) error { return nil }},
	)
	fired := startWatcher(t, svc)

	writeFile(t, model, "bad")
	f := expectFiring(t, fired)
	if f.path != model || !errors.Is(f.err, onChangeErr) {
		t.Errorf("firing = %+v, want %s with %v", f, model, onChangeErr)
	}

	// The watcher survives a failing action.
	writeFile(t, data, "1,1,a,0,1\n")
	if f := expectFiring(t, fired); f.path != data || f.err != nil {
		t.Errorf("firing = %+v, want %s without error", f, data)
	}
}

func TestFileWatcherService_MissingDirectory(t *testing.T) {
	svc := NewFileWatcherService(0, Watch{
		Path:     filepath.Join(t.TempDir(), "missing", "model.srals"),
		OnChange: func(context.Context) error { return nil },
	})
	if svc.debounce != 500*time.Millisecond {
		t.Errorf("debounce = %v, want 500ms", svc.debounce)
	}
	if err := svc.Serve(context.Background()); err == nil {
		t.Error("Serve() error = nil, want error for a missing directory")
	}
}
