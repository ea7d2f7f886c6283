// Package scheduler runs the hourly and daily rollup cadences, each guarded
// by a distributed lock so at most one instance rolls up per tick.
package scheduler

import (
	"context"
	"time"

	"github.com/plantops/kpihub/internal/config"
	"github.com/plantops/kpihub/internal/observability/metrics"
	productiondomain "github.com/plantops/kpihub/internal/production/domain"
	"github.com/plantops/kpihub/internal/rollup"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config  config.Config
	Locker  Locker
	Rollup  rollup.Service
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

type Scheduler struct {
	cfg     config.SchedulerConfig
	cron    *cron.Cron
	locker  Locker
	rollup  rollup.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(p Params) *Scheduler {
	return &Scheduler{
		cfg:     p.Config.Scheduler,
		cron:    cron.New(cron.WithSeconds()),
		locker:  p.Locker,
		rollup:  p.Rollup,
		metrics: p.Metrics,
		logger:  p.Logger.Named("scheduler"),
	}
}

// Start registers both cadences and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.HourlySpec, func() {
		s.RunOnce(context.Background(), productiondomain.CadenceHour)
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.DailySpec, func() {
		s.RunOnce(context.Background(), productiondomain.CadenceDay)
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("rollup scheduler started",
		zap.String("hourly", s.cfg.HourlySpec),
		zap.String("daily", s.cfg.DailySpec))
	return nil
}

// Stop halts the cron loop and waits for any in-flight run, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce executes one tick for the cadence. A held lock skips the run; a
// failed run is logged and swallowed so the next tick retries from scratch.
func (s *Scheduler) RunOnce(ctx context.Context, cadence productiondomain.Cadence) {
	ttl := time.Duration(s.cfg.LockTTLSeconds) * time.Second
	release, ok, err := s.locker.Acquire(ctx, lockKey(cadence), ttl)
	if err != nil {
		s.logger.Error("acquire rollup lock",
			zap.String("cadence", string(cadence)),
			zap.Error(err))
		s.metrics.RollupErrors.WithLabelValues(string(cadence)).Inc()
		return
	}
	if !ok {
		s.logger.Debug("rollup lock held elsewhere, skipping",
			zap.String("cadence", string(cadence)))
		s.metrics.RollupSkips.WithLabelValues(string(cadence)).Inc()
		return
	}

	start := time.Now()
	if err := s.rollup.Run(ctx, cadence); err != nil {
		s.logger.Error("rollup run failed",
			zap.String("cadence", string(cadence)),
			zap.Error(err))
		s.metrics.RollupErrors.WithLabelValues(string(cadence)).Inc()
	} else {
		s.metrics.RollupRuns.WithLabelValues(string(cadence)).Inc()
	}
	elapsed := time.Since(start)
	s.metrics.RollupDuration.WithLabelValues(string(cadence)).Observe(elapsed.Seconds())

	// Fast runs leave the key to expire at the TTL so the cadence cannot
	// re-fire immediately on a skewed clock.
	if elapsed >= time.Duration(s.cfg.MinHoldSeconds)*time.Second {
		if err := release(ctx); err != nil {
			s.logger.Warn("release rollup lock",
				zap.String("cadence", string(cadence)),
				zap.Error(err))
		}
	}
}

func lockKey(cadence productiondomain.Cadence) string {
	return "kpihub:rollup:lock:" + string(cadence)
}
