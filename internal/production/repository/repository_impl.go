package repository

import (
	"context"
	"time"

	productiondomain "github.com/plantops/kpihub/internal/production/domain"
	"github.com/plantops/kpihub/pkg/tenantctx"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() productiondomain.Repository {
	return &repo{}
}

func (r *repo) OperationRateRows(ctx context.Context, db *gorm.DB, tenant tenantctx.Tenant, start, end time.Time) ([]productiondomain.OperationRateRow, error) {
	var rows []productiondomain.OperationRateRow
	err := db.WithContext(ctx).Raw(
		`SELECT to_char(work_end_time, 'YYYY-MM-DD HH24:MI:SS') AS work_time,
		 equipment_cd, plan_minutes, run_minutes
		 FROM production_results
		 WHERE site = ? AND company_code = ?
		   AND work_end_time >= ? AND work_end_time < ?`,
		tenant.Site,
		tenant.CompanyCode,
		start,
		end,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) QuantityRows(ctx context.Context, db *gorm.DB, tenant tenantctx.Tenant, start, end time.Time) ([]productiondomain.QuantityRow, error) {
	var rows []productiondomain.QuantityRow
	err := db.WithContext(ctx).Raw(
		`SELECT to_char(work_end_time, 'YYYY-MM-DD HH24:MI:SS') AS work_time,
		 item_cd, good_qty, defect_qty, good_qty + defect_qty AS total_qty
		 FROM production_results
		 WHERE site = ? AND company_code = ?
		   AND work_end_time >= ? AND work_end_time < ?`,
		tenant.Site,
		tenant.CompanyCode,
		start,
		end,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) AggregateRates(ctx context.Context, db *gorm.DB) ([]productiondomain.RateAggregate, error) {
	var aggregates []productiondomain.RateAggregate
	err := db.WithContext(ctx).Raw(
		`SELECT site, company_code,
		 COALESCE(SUM(plan_qty), 0) AS plan_sum,
		 COALESCE(SUM(CASE WHEN work_order_no IS NOT NULL THEN good_qty ELSE 0 END), 0) AS work_order_sum,
		 COALESCE(SUM(CASE WHEN work_order_no IS NULL THEN good_qty ELSE 0 END), 0) AS not_work_order_sum,
		 CASE WHEN COALESCE(SUM(plan_qty), 0) = 0 THEN 0
		      ELSE SUM(CASE WHEN work_order_no IS NOT NULL THEN good_qty ELSE 0 END) / SUM(plan_qty)
		 END AS production_rate
		 FROM production_results
		 GROUP BY site, company_code`,
	).Scan(&aggregates).Error
	if err != nil {
		return nil, err
	}
	return aggregates, nil
}

func (r *repo) InsertSnapshots(ctx context.Context, db *gorm.DB, cadence productiondomain.Cadence, snapshots []productiondomain.RateSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return db.WithContext(ctx).Table(cadence.SnapshotTable()).Create(&snapshots).Error
}

func (r *repo) ListSnapshots(ctx context.Context, db *gorm.DB, cadence productiondomain.Cadence, tenant tenantctx.Tenant, from, to time.Time) ([]productiondomain.RateSnapshot, error) {
	var snapshots []productiondomain.RateSnapshot
	err := db.WithContext(ctx).Raw(
		`SELECT id, site, company_code, plan_sum, work_order_sum, not_work_order_sum,
		 production_rate, aggregation_time, created_by, created_at, updated_by, updated_at
		 FROM `+cadence.SnapshotTable()+`
		 WHERE site = ? AND company_code = ?
		   AND aggregation_time >= ? AND aggregation_time < ?
		 ORDER BY aggregation_time ASC`,
		tenant.Site,
		tenant.CompanyCode,
		from,
		to,
	).Scan(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
