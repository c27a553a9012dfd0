package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/liquidation_heatmap/internal/domain"
)

// SnapshotPublisher fans refreshed snapshots out to live viewers.
type SnapshotPublisher interface {
	// Sessions lists the distinct sessions that currently have viewers.
	Sessions() []domain.Session
	Publish(sess domain.Session, snap *HeatmapSnapshot)
}

// RefreshWorker re-prices and regenerates every watched heatmap on a fixed
// interval. A tick that arrives while the previous one is still running is
// skipped rather than queued.
type RefreshWorker struct {
	prices    *PriceService
	heatmaps  *HeatmapService
	publisher SnapshotPublisher
	interval  time.Duration
	logger    *zap.Logger

	running atomic.Bool
	skipped atomic.Int64
	wg      sync.WaitGroup
}

func NewRefreshWorker(prices *PriceService, heatmaps *HeatmapService, publisher SnapshotPublisher, interval time.Duration, logger *zap.Logger) *RefreshWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &RefreshWorker{
		prices:    prices,
		heatmaps:  heatmaps,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
}

// Start runs the refresh loop until ctx is cancelled.
func (w *RefreshWorker) Start(ctx context.Context) {
	w.logger.Info("Starting refresh worker", zap.Duration("interval", w.interval))

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()
}

// Wait blocks until the loop started by Start has exited.
func (w *RefreshWorker) Wait() {
	w.wg.Wait()
}

// Skipped reports how many ticks were dropped because a refresh was in flight.
func (w *RefreshWorker) Skipped() int64 {
	return w.skipped.Load()
}

// RunOnce performs one refresh cycle. It returns false if another cycle was
// already running.
func (w *RefreshWorker) RunOnce(ctx context.Context) bool {
	if !w.running.CompareAndSwap(false, true) {
		w.skipped.Add(1)
		w.logger.Debug("Refresh still in flight, skipping tick")
		return false
	}
	defer w.running.Store(false)

	sessions := w.publisher.Sessions()
	if len(sessions) == 0 {
		return true
	}

	refreshed := make(map[string]bool)
	for _, sess := range sessions {
		if refreshed[sess.Symbol] {
			continue
		}
		refreshed[sess.Symbol] = true
		if _, err := w.prices.Refresh(ctx, sess.Symbol); err != nil {
			w.logger.Error("Failed to refresh price", zap.String("symbol", sess.Symbol), zap.Error(err))
		}
	}

	// One fresh grid per symbol and timeframe; other view modes recolor it.
	regenerated := make(map[string]bool)
	for _, sess := range sessions {
		if ctx.Err() != nil {
			return true
		}

		var snap *HeatmapSnapshot
		var err error
		if key := gridKey(sess); !regenerated[key] {
			regenerated[key] = true
			snap, err = w.heatmaps.Heatmap(ctx, sess)
		} else {
			snap, err = w.heatmaps.View(ctx, sess)
		}
		if err != nil {
			w.logger.Error("Failed to build heatmap", zap.String("session", sess.Key()), zap.Error(err))
			continue
		}
		w.publisher.Publish(sess, snap)
	}
	return true
}
