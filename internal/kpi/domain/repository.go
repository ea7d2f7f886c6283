package domain

import (
	"context"

	"github.com/plantops/kpihub/pkg/tenantctx"
	"gorm.io/gorm"
)

type Repository interface {
	ActiveSubscriptions(ctx context.Context, db *gorm.DB, tenant tenantctx.Tenant) ([]Subscription, error)
	IndicatorsWithCategory(ctx context.Context, db *gorm.DB) (map[string]IndicatorMeta, error)
}
