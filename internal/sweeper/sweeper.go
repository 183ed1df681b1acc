// Package sweeper retires stale community content. On a fixed interval it
// scans every monitored collection for documents whose last touch is older
// than the staleness window and marks them pending_deletion, moving them into
// the administrator review queue instead of deleting them outright.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oancholarevelo/floodtrack/internal/domain"
	"github.com/oancholarevelo/floodtrack/internal/observability"
)

// Store is the slice of the content store the sweeper needs.
type Store interface {
	StaleCandidates(ctx context.Context, col domain.Collection, statuses []domain.Status, cutoff time.Time) ([]string, error)
	MarkPendingDeletion(ctx context.Context, col domain.Collection, ids []string) error
}

// Result summarizes one sweep across all collections.
type Result struct {
	Marked map[domain.Collection]int
	Failed []domain.Collection
}

// Sweeper runs the periodic stale-content scan.
type Sweeper struct {
	store    Store
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	interval time.Duration
	ready    atomic.Bool
}

// New creates a Sweeper scanning at the given interval. Pass nil for clock to
// use real time.
func New(store Store, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, interval time.Duration) *Sweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sweeper{
		store:    store,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		interval: interval,
	}
}

// CheckReadiness returns nil once at least one sweep has completed, or an
// error describing why the sweeper is not yet ready.
func (s *Sweeper) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("sweeper has not completed a scan yet")
	}
	return nil
}

// Run sweeps immediately, then on every interval tick until the context is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("sweeper started", "interval", s.interval, "window", domain.StalenessWindow)
	s.metrics.SweeperRunning.Set(1)
	defer s.metrics.SweeperRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			s.Sweep(ctx)
		}
	}
}

// Sweep scans every collection once. Each collection is marked in a single
// atomic batch; a failure in one collection is logged and counted but never
// blocks the others.
func (s *Sweeper) Sweep(ctx context.Context) Result {
	start := s.clock.Now()
	res := Result{Marked: make(map[domain.Collection]int)}
	cutoff := domain.StalenessCutoff()

	for _, col := range domain.Collections() {
		if ctx.Err() != nil {
			return res
		}

		marked, err := s.sweepCollection(ctx, col, cutoff)
		if err != nil {
			s.logger.Error("sweep failed", "collection", string(col), "error", err)
			s.metrics.SweepErrors.WithLabelValues(string(col)).Inc()
			res.Failed = append(res.Failed, col)
			continue
		}
		res.Marked[col] = marked
	}

	s.metrics.SweepRuns.Inc()
	s.metrics.SweepDuration.Observe(s.clock.Since(start).Seconds())
	s.ready.Store(true)
	return res
}

func (s *Sweeper) sweepCollection(ctx context.Context, col domain.Collection, cutoff time.Time) (int, error) {
	ids, err := s.store.StaleCandidates(ctx, col, domain.ActiveEquivalentStatuses(col), cutoff)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.store.MarkPendingDeletion(ctx, col, ids); err != nil {
		return 0, err
	}

	s.metrics.SweepMarked.WithLabelValues(string(col)).Add(float64(len(ids)))
	s.logger.Info("marked stale content for review", "collection", string(col), "count", len(ids))
	return len(ids), nil
}
