/*
recompute.go - Background premium cache refresh

PURPOSE:
  Every punch write and every approved correction marks the punch row's
  premium cache stale. This worker periodically sweeps stale rows,
  re-runs the pure daily pipeline and writes the fresh premium
  breakdown back.

DESIGN:
  - Runs a background goroutine with configurable sweep interval
  - Pulls stale rows in batches to bound memory
  - Configuration gaps (no assignment, broken schedule) are logged and
    skipped; the row stays stale until an administrator fixes the data
  - The pipeline is deterministic, so a sweep racing a concurrent punch
    write at worst recomputes once more on the next pass

USAGE:
  worker := NewRecomputeWorker(store, defaults, logger)
  worker.Start()
  // ... later
  worker.Stop()

SEE ALSO:
  - store/store.go: ListStale / SavePremiums contract
  - engine/premium.go: The breakdown being cached
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/store"
)

// RecomputeWorker refreshes stale premium caches in the background.
type RecomputeWorker struct {
	Store    store.Store
	Factory  *factory.ScheduleFactory
	Defaults engine.Defaults
	Logger   *zap.Logger

	Interval  time.Duration
	BatchSize int

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRecomputeWorker creates a worker with one minute sweeps and a
// batch size of 100.
func NewRecomputeWorker(s store.Store, defaults engine.Defaults, logger *zap.Logger) *RecomputeWorker {
	return &RecomputeWorker{
		Store:     s,
		Factory:   factory.NewScheduleFactory(),
		Defaults:  defaults,
		Logger:    logger,
		Interval:  time.Minute,
		BatchSize: 100,
		stop:      make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (rw *RecomputeWorker) Start() {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	rw.ticker = time.NewTicker(rw.Interval)
	rw.wg.Add(1)
	go rw.run()

	rw.Logger.Info("recompute worker started",
		zap.Duration("interval", rw.Interval),
		zap.Int("batch_size", rw.BatchSize))
}

// Stop stops the worker and waits for an in-flight sweep to finish.
func (rw *RecomputeWorker) Stop() {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.ticker != nil {
		rw.ticker.Stop()
		close(rw.stop)
		rw.wg.Wait()
		rw.Logger.Info("recompute worker stopped")
	}
}

func (rw *RecomputeWorker) run() {
	defer rw.wg.Done()

	// Sweep immediately on start
	rw.Sweep(context.Background())

	for {
		select {
		case <-rw.ticker.C:
			rw.Sweep(context.Background())
		case <-rw.stop:
			return
		}
	}
}

// Sweep processes one batch of stale punch rows. Exported so admin
// tooling and tests can trigger a pass directly.
func (rw *RecomputeWorker) Sweep(ctx context.Context) {
	stale, err := rw.Store.ListStale(ctx, rw.BatchSize)
	if err != nil {
		rw.Logger.Error("failed to list stale punches", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	refreshed := 0
	skipped := 0
	for _, punch := range stale {
		if err := rw.refresh(ctx, punch); err != nil {
			if engine.IsConfigurationGap(err) {
				rw.Logger.Warn("punch left stale: configuration gap",
					zap.String("employee", string(punch.EmployeeID)),
					zap.String("date", punch.Date.String()),
					zap.Error(err))
				skipped++
				continue
			}
			rw.Logger.Error("failed to refresh premium cache",
				zap.String("punch", punch.ID),
				zap.Error(err))
			skipped++
			continue
		}
		refreshed++
	}

	rw.Logger.Info("recompute sweep completed",
		zap.Int("refreshed", refreshed),
		zap.Int("skipped", skipped))
}

func (rw *RecomputeWorker) refresh(ctx context.Context, punch store.PunchRecord) error {
	in, err := buildDailyInput(ctx, rw.Store, rw.Factory, rw.Defaults, punch.EmployeeID, punch.Date)
	if err != nil {
		return err
	}
	result, err := engine.ComputeDailyAttendance(in)
	if err != nil {
		return err
	}
	return rw.Store.SavePremiums(ctx, punch.ID, result.Premiums)
}
