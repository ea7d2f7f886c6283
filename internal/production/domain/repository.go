package domain

import (
	"context"
	"time"

	"github.com/plantops/kpihub/pkg/tenantctx"
	"gorm.io/gorm"
)

type Repository interface {
	OperationRateRows(ctx context.Context, db *gorm.DB, tenant tenantctx.Tenant, start, end time.Time) ([]OperationRateRow, error)
	QuantityRows(ctx context.Context, db *gorm.DB, tenant tenantctx.Tenant, start, end time.Time) ([]QuantityRow, error)
	AggregateRates(ctx context.Context, db *gorm.DB) ([]RateAggregate, error)
	InsertSnapshots(ctx context.Context, db *gorm.DB, cadence Cadence, snapshots []RateSnapshot) error
	ListSnapshots(ctx context.Context, db *gorm.DB, cadence Cadence, tenant tenantctx.Tenant, from, to time.Time) ([]RateSnapshot, error)
}
