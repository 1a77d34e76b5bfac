// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package export

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/als"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/interactions"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/model"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
)

// testRecommender has users 1..n with x_u = [u, 1] and items a, b where
// score(a) = u and score(b) = 2.
func testRecommender(t *testing.T, n int) *recommend.Recommender {
	t.Helper()
	ids := make([]int64, n)
	data := make([]float64, 0, 2*n)
	for i := range ids {
		ids[i] = int64(i + 1)
		data = append(data, float64(i+1), 1)
	}
	users, _ := interactions.IDMapFromSlice(ids)
	items, _ := interactions.IDMapFromSlice([]string{"a", "b"})
	factors := &als.Factors{
		Users: &als.Dense{Rows: n, Cols: 2, Data: data},
		Items: &als.Dense{Rows: 2, Cols: 2, Data: []float64{1, 0, 0, 2}},
	}
	m, err := model.New(model.Params{Factors: 2}, model.Metadata{}, users, items, factors)
	if err != nil {
		t.Fatalf("model.New() error = %v", err)
	}
	return recommend.New(m)
}

func testExportConfig() *config.ExportConfig {
	return &config.ExportConfig{
		Enabled:     true,
		Backend:     BackendMemory,
		KeyPrefix:   "test",
		TopN:        1,
		Concurrency: 3,
		Breaker: config.BreakerConfig{
			MaxRequests:      1,
			Timeout:          time.Minute,
			FailureThreshold: 2,
		},
	}
}

func TestExporter_Export(t *testing.T) {
	store := NewMemoryStore()
	e := NewExporter(store, testExportConfig())
	e.batchSize = 2

	pop := recommend.NewPopularity([]interactions.RawInteraction{
		{UserID: 1, SessionID: 1, Streamer: "a", TimeStart: 0, TimeEnd: 10},
		{UserID: 2, SessionID: 2, Streamer: "b", TimeStart: 0, TimeEnd: 10},
		{UserID: 3, SessionID: 3, Streamer: "b", TimeStart: 0, TimeEnd: 10},
	})

	res, err := e.Export(context.Background(), testRecommender(t, 5), pop, 5)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Users != 5 || res.Written != 5 || res.Failed != 0 || res.Popular != 1 {
		t.Errorf("Export() = %+v", res)
	}
	if store.Len() != 5 {
		t.Errorf("store has %d keys, want 5", store.Len())
	}

	ctx := context.Background()
	tests := []struct {
		userID   int64
		wantItem string
	}{
		{userID: 1, wantItem: "b"},
		{userID: 3, wantItem: "a"},
		{userID: 5, wantItem: "a"},
	}
	for _, tt := range tests {
		data, err := store.Get(ctx, e.UserKey(tt.userID))
		if err != nil {
			t.Fatalf("Get(%s) error = %v", e.UserKey(tt.userID), err)
		}
		var recs []recommend.Recommendation
		if err := json.Unmarshal(data, &recs); err != nil {
			t.Fatal(err)
		}
		if len(recs) != 1 || recs[0].Item != tt.wantItem {
			t.Errorf("user %d = %+v, want [%s]", tt.userID, recs, tt.wantItem)
		}
	}

	popular, err := store.Ranking(ctx, e.PopularKey(), 0)
	if err != nil {
		t.Fatalf("Ranking() error = %v", err)
	}
	if len(popular) != 1 || popular[0] != (Ranked{Member: "b", Score: 2}) {
		t.Errorf("popular = %v, want [{b 2}]", popular)
	}
}

func TestExporter_Keys(t *testing.T) {
	e := NewExporter(NewMemoryStore(), testExportConfig())
	if got := e.UserKey(42); got != "test:user:42" {
		t.Errorf("UserKey() = %q", got)
	}
	if got := e.PopularKey(); got != "test:popular" {
		t.Errorf("PopularKey() = %q", got)
	}
}

// flakyStore fails every SetBatch call after the first ok calls.
type flakyStore struct {
	*MemoryStore
	ok    int64
	calls atomic.Int64
}

var errBackendDown = errors.New("backend down")

func (f *flakyStore) SetBatch(ctx context.Context, kvs map[string][]byte, ttl time.Duration) error {
	if f.calls.Add(1) > f.ok {
		return errBackendDown
	}
	return f.MemoryStore.SetBatch(ctx, kvs, ttl)
}

func TestExporter_PartialFailure(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(), ok: 1}
	cfg := testExportConfig()
	cfg.Concurrency = 1
	e := NewExporter(store, cfg)
	e.batchSize = 2

	res, err := e.Export(context.Background(), testRecommender(t, 6), nil, 0)
	if err == nil {
		t.Fatal("Export() expected error")
	}
	if res.Written != 2 || res.Failed != 4 {
		t.Errorf("Export() = %+v, want 2 written, 4 failed", res)
	}
}

func TestBreakerStore_Opens(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(), ok: 0}
	b := NewBreakerStore(store, testExportConfig().Breaker)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := b.SetBatch(ctx, map[string][]byte{"k": nil}, 0); !errors.Is(err, errBackendDown) {
			t.Fatalf("call %d error = %v, want backend error", i, err)
		}
	}
	if b.State() != gobreaker.StateOpen.String() {
		t.Errorf("State() = %s, want open", b.State())
	}
	if err := b.SetBatch(ctx, map[string][]byte{"k": nil}, 0); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker error = %v, want ErrOpenState", err)
	}
	if got := store.calls.Load(); got != 2 {
		t.Errorf("backend saw %d calls, want 2", got)
	}
}

func TestBreakerStore_NotFoundIsSuccess(t *testing.T) {
	b := NewBreakerStore(NewMemoryStore(), testExportConfig().Breaker)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := b.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
	}
	if b.State() != gobreaker.StateClosed.String() {
		t.Errorf("State() = %s, want closed", b.State())
	}
}

func TestOpen(t *testing.T) {
	cfg := testExportConfig()
	s, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if s.Name() != BackendMemory {
		t.Errorf("Name() = %q", s.Name())
	}

	cfg.Backend = BackendBadger
	cfg.Badger.Path = t.TempDir()
	s, err = Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open(badger) error = %v", err)
	}
	_ = s.Close()

	cfg.Backend = "s3"
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Error("Open(s3) expected error")
	}
}
