// Package scheduler runs the periodic maintenance jobs of the service.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/config"
)

// Reconciler recomputes derived customer statistics.
type Reconciler interface {
	ReconcileCustomerStats(ctx context.Context) (int, error)
}

// Scheduler owns the gocron scheduler and its jobs.
type Scheduler struct {
	s   gocron.Scheduler
	cfg config.SchedulerConfig
	rec Reconciler
	log *zap.Logger
}

// New registers the daily statistics reconciliation at cfg.Hour:cfg.Minute
// in cfg.Timezone.  The job never overlaps itself.
func New(cfg config.SchedulerConfig, rec Reconciler, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler timezone %q: %w", cfg.Timezone, err)
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	sc := &Scheduler{s: s, cfg: cfg, rec: rec, log: log.Named("scheduler")}

	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(cfg.Hour, cfg.Minute, 0))),
		gocron.NewTask(sc.reconcile),
		gocron.WithName("reconcile-customer-stats"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("register reconcile job: %w", err)
	}
	return sc, nil
}

// Start begins running jobs in the background.
func (sc *Scheduler) Start() {
	sc.s.Start()
	sc.log.Info("scheduler started",
		zap.String("timezone", sc.cfg.Timezone),
		zap.String("reconcile_at", fmt.Sprintf("%02d:%02d", sc.cfg.Hour, sc.cfg.Minute)),
	)
}

// Shutdown stops the scheduler and waits for running jobs.
func (sc *Scheduler) Shutdown() error { return sc.s.Shutdown() }

func (sc *Scheduler) reconcile() {
	ctx := context.Background()
	if sc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sc.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()
	n, err := sc.rec.ReconcileCustomerStats(ctx)
	if err != nil {
		sc.log.Error("customer stats reconciliation failed",
			zap.Int("refreshed", n),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	sc.log.Info("customer stats reconciled", zap.Int("refreshed", n), zap.Duration("took", time.Since(start)))
}
