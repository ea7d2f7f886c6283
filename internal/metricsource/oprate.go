package metricsource

import (
	"context"

	productiondomain "github.com/plantops/kpihub/internal/production/domain"
	"github.com/plantops/kpihub/pkg/tenantctx"
	"gorm.io/gorm"
)

// OperationRateAdapter computes run-minutes over plan-minutes per
// (time bucket, equipment).
type OperationRateAdapter struct {
	db      *gorm.DB
	results productiondomain.Repository
}

func NewOperationRateAdapter(db *gorm.DB, results productiondomain.Repository) *OperationRateAdapter {
	return &OperationRateAdapter{db: db, results: results}
}

func (a *OperationRateAdapter) Fetch(ctx context.Context, tenant tenantctx.Tenant, filter Filter) ([]Point, error) {
	params := ResolveParams(filter.Range)
	start, end := ResolveWindow(filter.Date, params.LookbackDays)

	rows, err := a.results.OperationRateRows(ctx, a.db, tenant, start, end)
	if err != nil {
		return nil, err
	}

	type group struct {
		plan float64
		run  float64
	}
	groups := make(map[[2]string]*group)
	for _, row := range rows {
		key := [2]string{params.BucketLabel(row.WorkTime), row.EquipmentCd}
		g := groups[key]
		if g == nil {
			g = &group{}
			groups[key] = g
		}
		g.plan += row.PlanMinutes
		g.run += row.RunMinutes
	}

	points := make([]Point, 0, len(groups))
	for key, g := range groups {
		value := 0.0
		if g.plan > 0 {
			value = g.run / g.plan
		}
		points = append(points, Point{TimeLabel: key[0], SeriesLabel: key[1], Value: value})
	}
	sortPoints(points)
	return points, nil
}
