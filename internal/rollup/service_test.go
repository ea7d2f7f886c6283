package rollup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantops/kpihub/internal/clock"
	productiondomain "github.com/plantops/kpihub/internal/production/domain"
	"github.com/plantops/kpihub/pkg/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeResults struct {
	aggregates   []productiondomain.RateAggregate
	aggregateErr error
	insertErr    error

	insertedCadence productiondomain.Cadence
	inserted        []productiondomain.RateSnapshot
	insertCalls     int
}

func (f *fakeResults) OperationRateRows(ctx context.Context, db *gorm.DB, tenant tenantctx.Tenant, start, end time.Time) ([]productiondomain.OperationRateRow, error) {
	return nil, nil
}

func (f *fakeResults) QuantityRows(ctx context.Context, db *gorm.DB, tenant tenantctx.Tenant, start, end time.Time) ([]productiondomain.QuantityRow, error) {
	return nil, nil
}

func (f *fakeResults) AggregateRates(ctx context.Context, db *gorm.DB) ([]productiondomain.RateAggregate, error) {
	if f.aggregateErr != nil {
		return nil, f.aggregateErr
	}
	return f.aggregates, nil
}

func (f *fakeResults) InsertSnapshots(ctx context.Context, db *gorm.DB, cadence productiondomain.Cadence, snapshots []productiondomain.RateSnapshot) error {
	f.insertCalls++
	f.insertedCadence = cadence
	f.inserted = snapshots
	return f.insertErr
}

func (f *fakeResults) ListSnapshots(ctx context.Context, db *gorm.DB, cadence productiondomain.Cadence, tenant tenantctx.Tenant, from, to time.Time) ([]productiondomain.RateSnapshot, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo productiondomain.Repository, now time.Time) Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewService(Params{
		Repo:   repo,
		Clock:  clock.NewFakeClock(now),
		Node:   node,
		Logger: zap.NewNop(),
	})
}

func TestRunAppendsOneSnapshotPerAggregate(t *testing.T) {
	now := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)
	repo := &fakeResults{aggregates: []productiondomain.RateAggregate{
		{Site: "plant-a", CompanyCode: "acme", PlanSum: 100, WorkOrderSum: 80, NotWorkOrderSum: 5, ProductionRate: 0.8},
		{Site: "plant-b", CompanyCode: "acme", PlanSum: 50, WorkOrderSum: 25, NotWorkOrderSum: 0, ProductionRate: 0.5},
	}}
	svc := newTestService(t, repo, now)

	if err := svc.Run(context.Background(), productiondomain.CadenceHour); err != nil {
		t.Fatalf("run: %v", err)
	}

	if repo.insertedCadence != productiondomain.CadenceHour {
		t.Fatalf("cadence = %q, want hour", repo.insertedCadence)
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("inserted %d snapshots, want 2", len(repo.inserted))
	}

	first := repo.inserted[0]
	if first.Site != "plant-a" || first.CompanyCode != "acme" {
		t.Fatalf("unexpected snapshot tenant: %+v", first)
	}
	if first.PlanSum != 100 || first.WorkOrderSum != 80 || first.NotWorkOrderSum != 5 || first.ProductionRate != 0.8 {
		t.Fatalf("aggregate values not carried over: %+v", first)
	}
	if !first.AggregationTime.Equal(now) {
		t.Fatalf("aggregation time = %v, want run time %v", first.AggregationTime, now)
	}
	if first.CreatedBy != SystemActor || first.UpdatedBy != SystemActor {
		t.Fatalf("actor = %q/%q, want %q", first.CreatedBy, first.UpdatedBy, SystemActor)
	}
}

func TestRunWithoutAggregatesWritesNothing(t *testing.T) {
	repo := &fakeResults{}
	svc := newTestService(t, repo, time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC))

	if err := svc.Run(context.Background(), productiondomain.CadenceDay); err != nil {
		t.Fatalf("run: %v", err)
	}
	if repo.insertCalls != 0 {
		t.Fatalf("insert called %d times, want 0", repo.insertCalls)
	}
}

func TestRunPropagatesStoreErrors(t *testing.T) {
	aggregateErr := errors.New("store down")
	repo := &fakeResults{aggregateErr: aggregateErr}
	svc := newTestService(t, repo, time.Now())

	err := svc.Run(context.Background(), productiondomain.CadenceHour)
	if !errors.Is(err, aggregateErr) {
		t.Fatalf("err = %v, want wrapped %v", err, aggregateErr)
	}

	insertErr := errors.New("insert failed")
	repo = &fakeResults{
		aggregates: []productiondomain.RateAggregate{{Site: "plant-a", CompanyCode: "acme"}},
		insertErr:  insertErr,
	}
	svc = newTestService(t, repo, time.Now())

	err = svc.Run(context.Background(), productiondomain.CadenceDay)
	if !errors.Is(err, insertErr) {
		t.Fatalf("err = %v, want wrapped %v", err, insertErr)
	}
	if repo.insertedCadence != productiondomain.CadenceDay {
		t.Fatalf("cadence = %q, want day", repo.insertedCadence)
	}
}
