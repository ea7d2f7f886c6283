package metricsource

import (
	"context"

	productiondomain "github.com/plantops/kpihub/internal/production/domain"
	"github.com/plantops/kpihub/pkg/tenantctx"
	"gorm.io/gorm"
)

// YieldRateAdapter computes good quantity over total quantity per
// (time bucket, item).
type YieldRateAdapter struct {
	db      *gorm.DB
	results productiondomain.Repository
}

func NewYieldRateAdapter(db *gorm.DB, results productiondomain.Repository) *YieldRateAdapter {
	return &YieldRateAdapter{db: db, results: results}
}

func (a *YieldRateAdapter) Fetch(ctx context.Context, tenant tenantctx.Tenant, filter Filter) ([]Point, error) {
	return fetchQuantityRatio(ctx, a.db, a.results, tenant, filter, func(good, defect, total float64) float64 {
		if total == 0 {
			return 0
		}
		return good / total
	})
}

// DefectRateAdapter computes defect quantity over total quantity per
// (time bucket, item).
type DefectRateAdapter struct {
	db      *gorm.DB
	results productiondomain.Repository
}

func NewDefectRateAdapter(db *gorm.DB, results productiondomain.Repository) *DefectRateAdapter {
	return &DefectRateAdapter{db: db, results: results}
}

func (a *DefectRateAdapter) Fetch(ctx context.Context, tenant tenantctx.Tenant, filter Filter) ([]Point, error) {
	return fetchQuantityRatio(ctx, a.db, a.results, tenant, filter, func(good, defect, total float64) float64 {
		if total == 0 {
			return 0
		}
		return defect / total
	})
}

func fetchQuantityRatio(
	ctx context.Context,
	db *gorm.DB,
	results productiondomain.Repository,
	tenant tenantctx.Tenant,
	filter Filter,
	reduce func(good, defect, total float64) float64,
) ([]Point, error) {
	params := ResolveParams(filter.Range)
	start, end := ResolveWindow(filter.Date, params.LookbackDays)

	rows, err := results.QuantityRows(ctx, db, tenant, start, end)
	if err != nil {
		return nil, err
	}

	type group struct {
		good   float64
		defect float64
		total  float64
	}
	groups := make(map[[2]string]*group)
	for _, row := range rows {
		key := [2]string{params.BucketLabel(row.WorkTime), row.ItemCd}
		g := groups[key]
		if g == nil {
			g = &group{}
			groups[key] = g
		}
		g.good += row.GoodQty
		g.defect += row.DefectQty
		g.total += row.TotalQty
	}

	points := make([]Point, 0, len(groups))
	for key, g := range groups {
		points = append(points, Point{
			TimeLabel:   key[0],
			SeriesLabel: key[1],
			Value:       reduce(g.good, g.defect, g.total),
		})
	}
	sortPoints(points)
	return points, nil
}
