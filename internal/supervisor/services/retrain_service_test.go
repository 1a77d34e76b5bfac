// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package services

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/training"
)

type fakeRetrainer struct {
	calls atomic.Int32
	err   error
	ran   chan struct{}
}

func newFakeRetrainer(err error) *fakeRetrainer {
	return &fakeRetrainer{err: err, ran: make(chan struct{}, 16)}
}

func (f *fakeRetrainer) Retrain(ctx context.Context) (*training.Result, error) {
	f.calls.Add(1)
	defer func() { f.ran <- struct{}{} }()
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("retrain context has no deadline")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &training.Result{Version: int(f.calls.Load())}, nil
}

func waitRuns(t *testing.T, f *fakeRetrainer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("retrainer ran %d times, want %d", f.calls.Load(), n)
		}
	}
}

func TestNewRetrainService_Defaults(t *testing.T) {
	svc := NewRetrainService(newFakeRetrainer(nil), RetrainServiceConfig{}, logging.NewTestLogger(io.Discard))
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", svc.config.Interval)
	}
	if svc.config.Timeout != 2*time.Hour {
		t.Errorf("Timeout = %v, want 2h", svc.config.Timeout)
	}
	if svc.String() != "retrain-service" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestRetrainService_Serve(t *testing.T) {
	tests := []struct {
		name      string
		onStartup bool
		err       error
	}{
		{name: "startup then schedule", onStartup: true},
		{name: "failures keep the loop alive", onStartup: true, err: errors.New("no data")},
		{name: "schedule only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRetrainer(tt.err)
			svc := NewRetrainService(r, RetrainServiceConfig{
				OnStartup: tt.onStartup,
				Interval:  20 * time.Millisecond,
			}, logging.NewTestLogger(io.Discard))

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			waitRuns(t, r, 3)
			cancel()

			if err := <-errCh; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() error = %v, want context.Canceled", err)
			}
		})
	}
}

func TestRetrainService_NoStartupRun(t *testing.T) {
	r := newFakeRetrainer(nil)
	svc := NewRetrainService(r, RetrainServiceConfig{Interval: time.Hour}, logging.NewTestLogger(io.Discard))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if n := r.calls.Load(); n != 0 {
		t.Errorf("Retrain called %d times before the first tick, want 0", n)
	}
}
