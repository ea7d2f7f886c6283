package domain

import (
	"context"

	"github.com/plantops/kpihub/pkg/tenantctx"
)

type Service interface {
	// GetChartData assembles chart payloads for the tenant's active
	// subscriptions, preserving subscription order and omitting skipped
	// entries. Empty input yields an empty result, not an error.
	GetChartData(ctx context.Context, tenant tenantctx.Tenant, filters []ChartFilter) ([]ChartPayload, error)

	// AssembleChartData is GetChartData with skipped entries made visible.
	AssembleChartData(ctx context.Context, tenant tenantctx.Tenant, filters []ChartFilter) ([]ChartOutcome, error)

	ListSubscriptions(ctx context.Context, tenant tenantctx.Tenant) ([]Subscription, error)
	ListIndicators(ctx context.Context) ([]IndicatorMeta, error)
}
