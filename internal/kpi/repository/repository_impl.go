package repository

import (
	"context"

	kpidomain "github.com/plantops/kpihub/internal/kpi/domain"
	"github.com/plantops/kpihub/pkg/tenantctx"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() kpidomain.Repository {
	return &repo{}
}

func (r *repo) ActiveSubscriptions(ctx context.Context, db *gorm.DB, tenant tenantctx.Tenant) ([]kpidomain.Subscription, error) {
	var subscriptions []kpidomain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, site, company_code, indicator_cd, target_value, description,
		 sort_order, flag_active, metadata, created_at, updated_at
		 FROM kpi_subscriptions
		 WHERE site = ? AND company_code = ? AND flag_active = TRUE
		 ORDER BY sort_order ASC, indicator_cd ASC`,
		tenant.Site,
		tenant.CompanyCode,
	).Scan(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *repo) IndicatorsWithCategory(ctx context.Context, db *gorm.DB) (map[string]kpidomain.IndicatorMeta, error) {
	var rows []kpidomain.IndicatorMeta
	err := db.WithContext(ctx).Raw(
		`SELECT i.indicator_cd, i.indicator_nm, i.category_cd, c.category_nm,
		 i.unit, i.chart_type
		 FROM kpi_indicators i
		 LEFT JOIN kpi_categories c ON c.category_cd = i.category_cd`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	metas := make(map[string]kpidomain.IndicatorMeta, len(rows))
	for _, row := range rows {
		metas[row.IndicatorCd] = row
	}
	return metas, nil
}
