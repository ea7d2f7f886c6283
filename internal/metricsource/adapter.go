// Package metricsource provides the per-metric-family adapters that turn
// backing-store rows into uniform chart data points.
package metricsource

import (
	"context"
	"time"

	"github.com/plantops/kpihub/pkg/tenantctx"
)

// Indicator codes with a registered metric source.
const (
	IndicatorPower         = "kpi_001"
	IndicatorOperationRate = "kpi_002"
	IndicatorYieldRate     = "kpi_003"
	IndicatorDefectRate    = "kpi_004"
)

// Point is the atomic unit produced by every adapter: one value for one
// (time bucket, series) pair.
type Point struct {
	TimeLabel   string
	SeriesLabel string
	Value       float64
}

// Filter selects the window and optional device scope for one fetch.
type Filter struct {
	Date     time.Time
	Range    string
	DeviceID string
}

// Adapter fetches chart points for one metric family. Implementations must
// never return points belonging to a tenant other than the caller's.
type Adapter interface {
	Fetch(ctx context.Context, tenant tenantctx.Tenant, filter Filter) ([]Point, error)
}

// Registry maps indicator codes to adapters. Adding a metric source is a
// registration at startup, not a dispatch-function edit.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

func (r *Registry) Register(indicatorCd string, adapter Adapter) {
	r.adapters[indicatorCd] = adapter
}

func (r *Registry) Lookup(indicatorCd string) (Adapter, bool) {
	adapter, ok := r.adapters[indicatorCd]
	return adapter, ok
}
