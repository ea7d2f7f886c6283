package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plantops/kpihub/internal/config"
	"github.com/plantops/kpihub/internal/observability/metrics"
	productiondomain "github.com/plantops/kpihub/internal/production/domain"
	"github.com/plantops/kpihub/internal/rollup"
	"github.com/plantops/kpihub/pkg/tenantctx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type fakeLocker struct {
	held       bool
	acquireErr error
	releases   int
}

func (f *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	if f.acquireErr != nil {
		return nil, false, f.acquireErr
	}
	if f.held {
		return nil, false, nil
	}
	f.held = true
	release := func(context.Context) error {
		f.held = false
		f.releases++
		return nil
	}
	return release, true, nil
}

type fakeRollup struct {
	runs int
	err  error
}

func (f *fakeRollup) Run(ctx context.Context, cadence productiondomain.Cadence) error {
	f.runs++
	return f.err
}

func (f *fakeRollup) ListSnapshots(ctx context.Context, cadence productiondomain.Cadence, tenant tenantctx.Tenant, from, to time.Time) ([]productiondomain.RateSnapshot, error) {
	return nil, nil
}

func newTestScheduler(locker Locker, svc rollup.Service, minHoldSeconds int) (*Scheduler, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	s := New(Params{
		Config: config.Config{Scheduler: config.SchedulerConfig{
			HourlySpec:     "0 0 * * * *",
			DailySpec:      "0 0 0 * * *",
			LockTTLSeconds: 120,
			MinHoldSeconds: minHoldSeconds,
		}},
		Locker:  locker,
		Rollup:  svc,
		Metrics: m,
		Logger:  zap.NewNop(),
	})
	return s, m
}

func TestRunOnceMutualExclusion(t *testing.T) {
	locker := &fakeLocker{}
	svc := &fakeRollup{}
	s, m := newTestScheduler(locker, svc, 30)

	// First run takes the lock and, being fast, leaves it to expire at the
	// TTL; the second run must skip without writing.
	s.RunOnce(context.Background(), productiondomain.CadenceHour)
	s.RunOnce(context.Background(), productiondomain.CadenceHour)

	if svc.runs != 1 {
		t.Fatalf("rollup ran %d times, want 1", svc.runs)
	}
	if got := testutil.ToFloat64(m.RollupRuns.WithLabelValues("hour")); got != 1 {
		t.Fatalf("runs counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RollupSkips.WithLabelValues("hour")); got != 1 {
		t.Fatalf("skips counter = %v, want 1", got)
	}
}

func TestRunOnceHoldsLockAtLeastMinimum(t *testing.T) {
	locker := &fakeLocker{}
	s, _ := newTestScheduler(locker, &fakeRollup{}, 30)

	s.RunOnce(context.Background(), productiondomain.CadenceHour)

	if locker.releases != 0 {
		t.Fatalf("lock released early after a fast run")
	}
	if !locker.held {
		t.Fatalf("lock should be left to expire at the TTL")
	}
}

func TestRunOnceReleasesAfterMinimumHold(t *testing.T) {
	locker := &fakeLocker{}
	s, _ := newTestScheduler(locker, &fakeRollup{}, 0)

	s.RunOnce(context.Background(), productiondomain.CadenceHour)

	if locker.releases != 1 {
		t.Fatalf("releases = %d, want 1", locker.releases)
	}
}

func TestRunOnceSwallowsRollupErrors(t *testing.T) {
	locker := &fakeLocker{}
	svc := &fakeRollup{err: errors.New("store down")}
	s, m := newTestScheduler(locker, svc, 30)

	s.RunOnce(context.Background(), productiondomain.CadenceDay)

	if svc.runs != 1 {
		t.Fatalf("rollup ran %d times, want 1", svc.runs)
	}
	if got := testutil.ToFloat64(m.RollupErrors.WithLabelValues("day")); got != 1 {
		t.Fatalf("errors counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RollupRuns.WithLabelValues("day")); got != 0 {
		t.Fatalf("runs counter = %v, want 0", got)
	}
}

func TestRunOnceAcquireErrorSkipsRun(t *testing.T) {
	locker := &fakeLocker{acquireErr: errors.New("redis down")}
	svc := &fakeRollup{}
	s, m := newTestScheduler(locker, svc, 30)

	s.RunOnce(context.Background(), productiondomain.CadenceHour)

	if svc.runs != 0 {
		t.Fatalf("rollup ran %d times, want 0", svc.runs)
	}
	if got := testutil.ToFloat64(m.RollupErrors.WithLabelValues("hour")); got != 1 {
		t.Fatalf("errors counter = %v, want 1", got)
	}
}

func TestLockKeyPerCadence(t *testing.T) {
	if lockKey(productiondomain.CadenceHour) == lockKey(productiondomain.CadenceDay) {
		t.Fatalf("cadences must not share a lock key")
	}
}
