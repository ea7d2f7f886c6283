package service

import (
	"context"
	"sort"
	"strings"
	"time"

	kpidomain "github.com/plantops/kpihub/internal/kpi/domain"
	"github.com/plantops/kpihub/internal/metricsource"
	"github.com/plantops/kpihub/internal/observability/metrics"
	"github.com/plantops/kpihub/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	filterDateLayout = "2006-01-02"
	defaultChartType = "line"
	defaultTitle     = "KPI"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Repo     kpidomain.Repository
	Registry *metricsource.Registry
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type service struct {
	db       *gorm.DB
	repo     kpidomain.Repository
	registry *metricsource.Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewService(p Params) kpidomain.Service {
	return &service{
		db:       p.DB,
		repo:     p.Repo,
		registry: p.Registry,
		metrics:  p.Metrics,
		logger:   p.Logger.Named("kpi.service"),
	}
}

func (s *service) GetChartData(ctx context.Context, tenant tenantctx.Tenant, filters []kpidomain.ChartFilter) ([]kpidomain.ChartPayload, error) {
	outcomes, err := s.AssembleChartData(ctx, tenant, filters)
	if err != nil {
		return nil, err
	}

	payloads := make([]kpidomain.ChartPayload, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Payload != nil {
			payloads = append(payloads, *outcome.Payload)
		}
	}
	return payloads, nil
}

// AssembleChartData walks the tenant's active subscriptions in subscription
// order. A subscription with missing metadata, no registered adapter, a
// failing adapter, or no data contributes a skip outcome instead of aborting
// the batch.
func (s *service) AssembleChartData(ctx context.Context, tenant tenantctx.Tenant, filters []kpidomain.ChartFilter) ([]kpidomain.ChartOutcome, error) {
	if len(filters) == 0 {
		return []kpidomain.ChartOutcome{}, nil
	}

	defaultFilter := filters[0]
	specific := make(map[string]kpidomain.ChartFilter)
	requested := make(map[string]struct{})
	for _, filter := range filters {
		if filter.IndicatorCd == "" {
			continue
		}
		if _, ok := specific[filter.IndicatorCd]; !ok {
			specific[filter.IndicatorCd] = filter
		}
		requested[filter.IndicatorCd] = struct{}{}
	}

	subscriptions, err := s.repo.ActiveSubscriptions(ctx, s.db, tenant)
	if err != nil {
		return nil, err
	}
	if len(requested) > 0 {
		scoped := subscriptions[:0]
		for _, sub := range subscriptions {
			if _, ok := requested[sub.IndicatorCd]; ok {
				scoped = append(scoped, sub)
			}
		}
		subscriptions = scoped
	}
	if len(subscriptions) == 0 {
		return []kpidomain.ChartOutcome{}, nil
	}

	metas, err := s.repo.IndicatorsWithCategory(ctx, s.db)
	if err != nil {
		return nil, err
	}

	outcomes := make([]kpidomain.ChartOutcome, 0, len(subscriptions))
	for _, sub := range subscriptions {
		outcomes = append(outcomes, s.assembleOne(ctx, tenant, sub, metas, specific, defaultFilter))
	}
	return outcomes, nil
}

func (s *service) assembleOne(
	ctx context.Context,
	tenant tenantctx.Tenant,
	sub kpidomain.Subscription,
	metas map[string]kpidomain.IndicatorMeta,
	specific map[string]kpidomain.ChartFilter,
	defaultFilter kpidomain.ChartFilter,
) kpidomain.ChartOutcome {
	meta, ok := metas[sub.IndicatorCd]
	if !ok {
		return s.skip(sub.IndicatorCd, kpidomain.SkipMissingMetadata)
	}

	adapter, ok := s.registry.Lookup(sub.IndicatorCd)
	if !ok {
		return s.skip(sub.IndicatorCd, kpidomain.SkipNoAdapter)
	}

	filter, ok := specific[sub.IndicatorCd]
	if !ok {
		filter = defaultFilter
	}
	date, err := time.Parse(filterDateLayout, filter.Date)
	if err != nil {
		s.logger.Warn("invalid chart filter date",
			zap.String("indicator_cd", sub.IndicatorCd),
			zap.String("date", filter.Date))
		return s.skip(sub.IndicatorCd, kpidomain.SkipInvalidFilter)
	}

	points, err := adapter.Fetch(ctx, tenant, metricsource.Filter{Date: date, Range: filter.Range})
	if err != nil {
		s.logger.Warn("metric source fetch failed",
			zap.String("indicator_cd", sub.IndicatorCd),
			zap.Error(err))
		return s.skip(sub.IndicatorCd, kpidomain.SkipAdapterError)
	}
	if len(points) == 0 {
		return s.skip(sub.IndicatorCd, kpidomain.SkipNoData)
	}

	payload := &kpidomain.ChartPayload{
		IndicatorCd: sub.IndicatorCd,
		Title:       resolveTitle(sub, meta),
		CategoryCd:  meta.CategoryCd,
		CategoryNm:  meta.CategoryNm,
		ChartType:   meta.ChartType,
		Unit:        meta.Unit,
		TargetValue: sub.TargetValue,
		ChartData:   groupRows(points),
	}
	if payload.ChartType == "" {
		payload.ChartType = defaultChartType
	}

	s.metrics.ChartAssembled.WithLabelValues(sub.IndicatorCd).Inc()
	return kpidomain.ChartOutcome{IndicatorCd: sub.IndicatorCd, Payload: payload}
}

func (s *service) skip(indicatorCd string, reason kpidomain.SkipReason) kpidomain.ChartOutcome {
	s.metrics.ChartSkipped.WithLabelValues(string(reason)).Inc()
	return kpidomain.ChartOutcome{IndicatorCd: indicatorCd, Skip: reason}
}

// groupRows folds points into one row per bucket label, rows ascending by
// their "name" key under string comparison.
func groupRows(points []metricsource.Point) []kpidomain.ChartRow {
	byBucket := make(map[string]kpidomain.ChartRow)
	for _, point := range points {
		row, ok := byBucket[point.TimeLabel]
		if !ok {
			row = kpidomain.ChartRow{"name": point.TimeLabel}
			byBucket[point.TimeLabel] = row
		}
		row[point.SeriesLabel] = point.Value
	}

	rows := make([]kpidomain.ChartRow, 0, len(byBucket))
	for _, row := range byBucket {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i]["name"].(string) < rows[j]["name"].(string)
	})
	return rows
}

func resolveTitle(sub kpidomain.Subscription, meta kpidomain.IndicatorMeta) string {
	if sub.Description != nil {
		if title := strings.TrimSpace(*sub.Description); title != "" {
			return title
		}
	}
	if meta.IndicatorNm != "" {
		return meta.IndicatorNm
	}
	return defaultTitle
}

func (s *service) ListSubscriptions(ctx context.Context, tenant tenantctx.Tenant) ([]kpidomain.Subscription, error) {
	return s.repo.ActiveSubscriptions(ctx, s.db, tenant)
}

func (s *service) ListIndicators(ctx context.Context) ([]kpidomain.IndicatorMeta, error) {
	metas, err := s.repo.IndicatorsWithCategory(ctx, s.db)
	if err != nil {
		return nil, err
	}

	indicators := make([]kpidomain.IndicatorMeta, 0, len(metas))
	for _, meta := range metas {
		indicators = append(indicators, meta)
	}
	sort.Slice(indicators, func(i, j int) bool {
		return indicators[i].IndicatorCd < indicators[j].IndicatorCd
	})
	return indicators, nil
}
