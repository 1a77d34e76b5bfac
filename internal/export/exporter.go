// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package export

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/CzSadykov/RecSys-streaming-platform/internal/config"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/logging"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/metrics"
	"github.com/CzSadykov/RecSys-streaming-platform/internal/recommend"
)

const defaultBatchSize = 500

// Result summarizes one export run.
type Result struct {
	Users    int
	Written  int
	Failed   int
	Popular  int
	Duration time.Duration
}

// Exporter writes the top-N list of every known user to a Store.
type Exporter struct {
	store       Store
	prefix      string
	topN        int
	ttl         time.Duration
	concurrency int
	batchSize   int
}

// NewExporter creates an Exporter from cfg.
func NewExporter(store Store, cfg *config.ExportConfig) *Exporter {
	return &Exporter{
		store:       store,
		prefix:      cfg.KeyPrefix,
		topN:        cfg.TopN,
		ttl:         cfg.TTL,
		concurrency: max(cfg.Concurrency, 1),
		batchSize:   defaultBatchSize,
	}
}

// UserKey returns the key holding userID's recommendations.
func (e *Exporter) UserKey(userID int64) string {
	return e.prefix + ":user:" + strconv.FormatInt(userID, 10)
}

// PopularKey returns the key holding the popularity ranking.
func (e *Exporter) PopularKey() string {
	return e.prefix + ":popular"
}

// Export writes recommendations for every user of rec, then the streamers
// live at instant at according to pop (skipped when pop is nil). Batches are
// written concurrently; a failed batch does not stop the others, and the
// returned error reports how many keys were lost.
func (e *Exporter) Export(ctx context.Context, rec *recommend.Recommender, pop *recommend.Popularity, at int64) (Result, error) {
	start := time.Now()
	logger := logging.Ctx(ctx).With().Str("component", "export").Str("backend", e.store.Name()).Logger()

	users := rec.Model().Users.IDs()
	res := Result{Users: len(users)}

	var written, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for lo := 0; lo < len(users); lo += e.batchSize {
		batch := users[lo:min(lo+e.batchSize, len(users))]
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			kvs := make(map[string][]byte, len(batch))
			for _, uid := range batch {
				data, err := json.Marshal(rec.Recommend(uid, e.topN))
				if err != nil {
					return fmt.Errorf("marshal recommendations for user %d: %w", uid, err)
				}
				kvs[e.UserKey(uid)] = data
			}
			if err := e.store.SetBatch(gctx, kvs, e.ttl); err != nil {
				failed.Add(int64(len(kvs)))
				logger.Warn().Err(err).Int("keys", len(kvs)).Msg("Export batch failed")
				return nil
			}
			written.Add(int64(len(kvs)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Written = int(written.Load())
	res.Failed = int(failed.Load())

	if pop != nil {
		top := pop.Top(at, e.topN)
		ranking := make([]Ranked, len(top))
		for i, it := range top {
			ranking[i] = Ranked{Member: it.Streamer, Score: float64(it.Sessions)}
		}
		if err := e.store.SetRanking(ctx, e.PopularKey(), ranking); err != nil {
			res.Failed++
			logger.Warn().Err(err).Msg("Export of popular streamers failed")
		} else {
			res.Popular = len(ranking)
		}
	}

	res.Duration = time.Since(start)
	metrics.RecordExportWrites(e.store.Name(), res.Written, res.Failed)
	metrics.ExportDuration.WithLabelValues(e.store.Name()).Observe(res.Duration.Seconds())

	logger.Info().
		Int("users", res.Users).
		Int("written", res.Written).
		Int("failed", res.Failed).
		Int("popular", res.Popular).
		Dur("duration", res.Duration).
		Msg("Export complete")

	if res.Failed > 0 {
		total := res.Users
		if pop != nil {
			total++
		}
		return res, fmt.Errorf("export: %d of %d keys failed", res.Failed, total)
	}
	return res, nil
}
