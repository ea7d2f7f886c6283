// Package metrics exposes Prometheus instrumentation for chart assembly and
// the rollup scheduler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

type Metrics struct {
	ChartAssembled *prometheus.CounterVec
	ChartSkipped   *prometheus.CounterVec
	RollupRuns     *prometheus.CounterVec
	RollupSkips    *prometheus.CounterVec
	RollupErrors   *prometheus.CounterVec
	RollupDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChartAssembled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kpihub_chart_payloads_assembled_total",
			Help: "Chart payloads assembled, by indicator code.",
		}, []string{"indicator_cd"}),
		ChartSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kpihub_chart_payloads_skipped_total",
			Help: "Subscriptions skipped during chart assembly, by reason.",
		}, []string{"reason"}),
		RollupRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kpihub_rollup_runs_total",
			Help: "Completed rollup runs, by cadence.",
		}, []string{"cadence"}),
		RollupSkips: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kpihub_rollup_skips_total",
			Help: "Rollup runs skipped because the cadence lock was held elsewhere.",
		}, []string{"cadence"}),
		RollupErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kpihub_rollup_errors_total",
			Help: "Rollup runs that failed, by cadence.",
		}, []string{"cadence"}),
		RollupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kpihub_rollup_duration_seconds",
			Help:    "Rollup run duration, by cadence.",
			Buckets: prometheus.DefBuckets,
		}, []string{"cadence"}),
	}
}

// NewRegistry builds the process registry with the standard runtime
// collectors attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

var Module = fx.Module("metrics",
	fx.Provide(
		NewRegistry,
		func(reg *prometheus.Registry) prometheus.Registerer { return reg },
		New,
	),
)
