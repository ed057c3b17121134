// Package mirror keeps local read caches of Linear and Slite. Sync is
// upsert-only: rows that disappear upstream stay in the local history
// buffer.
package mirror

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	kotel "github.com/GuiArSt/kronus/internal/otel"
	"github.com/GuiArSt/kronus/internal/persistence"
)

// cronParser parses standard 5-field cron expressions.
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
)

// Source is one upstream system the mirror pulls from.
type Source interface {
	Name() string
	Sync(ctx context.Context, store *persistence.Store) error
}

// Config holds the scheduler dependencies.
type Config struct {
	Store    *persistence.Store
	Logger   *slog.Logger
	Metrics  *kotel.Metrics
	CronExpr string // defaults to every 30 minutes
	Sources  []Source
}

// Scheduler runs the mirror sync on a cron cadence.
type Scheduler struct {
	store    *persistence.Store
	logger   *slog.Logger
	metrics  *kotel.Metrics
	schedule cronlib.Schedule
	sources  []Source

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(cfg Config) (*Scheduler, error) {
	expr := cfg.CronExpr
	if expr == "" {
		expr = "*/30 * * * *"
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:    cfg.Store,
		logger:   logger,
		metrics:  cfg.Metrics,
		schedule: schedule,
		sources:  cfg.Sources,
	}, nil
}

// Start begins the sync loop: one run immediately, then per schedule.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Info("mirror scheduler started", "sources", len(s.sources))
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("mirror scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.SyncAll(ctx)
	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.SyncAll(ctx)
		}
	}
}

// SyncAll runs every source once. A source failure is logged and counted;
// the other sources still run.
func (s *Scheduler) SyncAll(ctx context.Context) {
	for _, src := range s.sources {
		start := time.Now()
		err := src.Sync(ctx, s.store)
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.MirrorSyncDuration.Record(ctx, elapsed.Seconds(),
				metric.WithAttributes(attribute.String("source", src.Name())))
		}
		if err != nil {
			if s.metrics != nil {
				s.metrics.MirrorSyncFailures.Add(ctx, 1,
					metric.WithAttributes(attribute.String("source", src.Name())))
			}
			s.logger.Error("mirror sync failed", "source", src.Name(), "error", err.Error())
			continue
		}
		s.logger.Info("mirror sync complete", "source", src.Name(), "duration_ms", elapsed.Milliseconds())
	}
}
