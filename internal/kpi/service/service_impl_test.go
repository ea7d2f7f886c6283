package service

import (
	"context"
	"errors"
	"testing"

	kpidomain "github.com/plantops/kpihub/internal/kpi/domain"
	"github.com/plantops/kpihub/internal/metricsource"
	"github.com/plantops/kpihub/internal/observability/metrics"
	"github.com/plantops/kpihub/pkg/tenantctx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testTenant = tenantctx.Tenant{Site: "plant-a", CompanyCode: "acme"}

type fakeRepo struct {
	subs  []kpidomain.Subscription
	metas map[string]kpidomain.IndicatorMeta
	err   error
}

func (f *fakeRepo) ActiveSubscriptions(ctx context.Context, db *gorm.DB, tenant tenantctx.Tenant) ([]kpidomain.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.subs, nil
}

func (f *fakeRepo) IndicatorsWithCategory(ctx context.Context, db *gorm.DB) (map[string]kpidomain.IndicatorMeta, error) {
	return f.metas, nil
}

type adapterFunc func(ctx context.Context, tenant tenantctx.Tenant, filter metricsource.Filter) ([]metricsource.Point, error)

func (f adapterFunc) Fetch(ctx context.Context, tenant tenantctx.Tenant, filter metricsource.Filter) ([]metricsource.Point, error) {
	return f(ctx, tenant, filter)
}

func staticAdapter(points []metricsource.Point) metricsource.Adapter {
	return adapterFunc(func(context.Context, tenantctx.Tenant, metricsource.Filter) ([]metricsource.Point, error) {
		return points, nil
	})
}

func newTestService(repo kpidomain.Repository, registry *metricsource.Registry) kpidomain.Service {
	return NewService(Params{
		Repo:     repo,
		Registry: registry,
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Logger:   zap.NewNop(),
	})
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func TestGetChartDataEmptyInput(t *testing.T) {
	svc := newTestService(&fakeRepo{}, metricsource.NewRegistry())

	payloads, err := svc.GetChartData(context.Background(), testTenant, nil)
	require.NoError(t, err)
	require.Empty(t, payloads)
}

func TestGetChartDataAssemblesPayload(t *testing.T) {
	repo := &fakeRepo{
		subs: []kpidomain.Subscription{
			{IndicatorCd: "kpi_001", TargetValue: floatPtr(80)},
		},
		metas: map[string]kpidomain.IndicatorMeta{
			"kpi_001": {IndicatorCd: "kpi_001", IndicatorNm: "Equipment Uptime", CategoryCd: "cat_01", CategoryNm: "Equipment"},
		},
	}
	registry := metricsource.NewRegistry()
	registry.Register("kpi_001", staticAdapter([]metricsource.Point{
		{TimeLabel: "10", SeriesLabel: "EQ-1", Value: 0.8},
		{TimeLabel: "11", SeriesLabel: "EQ-1", Value: 0.9},
	}))
	svc := newTestService(repo, registry)

	payloads, err := svc.GetChartData(context.Background(), testTenant, []kpidomain.ChartFilter{
		{Date: "2024-06-10", Range: "day"},
	})
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	payload := payloads[0]
	require.Equal(t, "kpi_001", payload.IndicatorCd)
	require.Equal(t, "Equipment Uptime", payload.Title)
	require.Equal(t, "line", payload.ChartType)
	require.Equal(t, 80.0, *payload.TargetValue)
	require.Equal(t, []kpidomain.ChartRow{
		{"name": "10", "EQ-1": 0.8},
		{"name": "11", "EQ-1": 0.9},
	}, payload.ChartData)
}

func TestAssembleChartDataSkipsWithoutAborting(t *testing.T) {
	repo := &fakeRepo{
		subs: []kpidomain.Subscription{
			{IndicatorCd: "kpi_001"}, // ok
			{IndicatorCd: "kpi_002"}, // missing metadata
			{IndicatorCd: "kpi_003"}, // no adapter
			{IndicatorCd: "kpi_004"}, // adapter error
			{IndicatorCd: "kpi_005"}, // no data
		},
		metas: map[string]kpidomain.IndicatorMeta{
			"kpi_001": {IndicatorCd: "kpi_001", IndicatorNm: "Power"},
			"kpi_003": {IndicatorCd: "kpi_003", IndicatorNm: "Yield"},
			"kpi_004": {IndicatorCd: "kpi_004", IndicatorNm: "Defect"},
			"kpi_005": {IndicatorCd: "kpi_005", IndicatorNm: "Extra"},
		},
	}
	registry := metricsource.NewRegistry()
	registry.Register("kpi_001", staticAdapter([]metricsource.Point{{TimeLabel: "10", SeriesLabel: "EQ-1", Value: 1}}))
	registry.Register("kpi_004", adapterFunc(func(context.Context, tenantctx.Tenant, metricsource.Filter) ([]metricsource.Point, error) {
		return nil, errors.New("store down")
	}))
	registry.Register("kpi_005", staticAdapter(nil))
	svc := newTestService(repo, registry)

	outcomes, err := svc.AssembleChartData(context.Background(), testTenant, []kpidomain.ChartFilter{
		{Date: "2024-06-10", Range: "day"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 5)

	bySkip := make(map[kpidomain.SkipReason]int)
	assembled := 0
	for _, outcome := range outcomes {
		if outcome.Payload != nil {
			assembled++
			continue
		}
		bySkip[outcome.Skip]++
	}
	require.Equal(t, 1, assembled)
	require.Equal(t, 1, bySkip[kpidomain.SkipMissingMetadata])
	require.Equal(t, 1, bySkip[kpidomain.SkipNoAdapter])
	require.Equal(t, 1, bySkip[kpidomain.SkipAdapterError])
	require.Equal(t, 1, bySkip[kpidomain.SkipNoData])
}

func TestChartRowsSortedByName(t *testing.T) {
	repo := &fakeRepo{
		subs:  []kpidomain.Subscription{{IndicatorCd: "kpi_001"}},
		metas: map[string]kpidomain.IndicatorMeta{"kpi_001": {IndicatorCd: "kpi_001", IndicatorNm: "Power"}},
	}
	registry := metricsource.NewRegistry()
	registry.Register("kpi_001", staticAdapter([]metricsource.Point{
		{TimeLabel: "14", SeriesLabel: "EQ-1", Value: 3},
		{TimeLabel: "02", SeriesLabel: "EQ-1", Value: 1},
		{TimeLabel: "09", SeriesLabel: "EQ-2", Value: 2},
		{TimeLabel: "09", SeriesLabel: "EQ-1", Value: 4},
	}))
	svc := newTestService(repo, registry)

	payloads, err := svc.GetChartData(context.Background(), testTenant, []kpidomain.ChartFilter{
		{Date: "2024-06-10", Range: "day"},
	})
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	rows := payloads[0].ChartData
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		require.LessOrEqual(t, rows[i-1]["name"].(string), rows[i]["name"].(string))
	}
	// One row per distinct bucket, one column per series.
	require.Equal(t, kpidomain.ChartRow{"name": "09", "EQ-1": 4.0, "EQ-2": 2.0}, rows[1])
}

func TestTitlePrecedence(t *testing.T) {
	registry := metricsource.NewRegistry()
	registry.Register("kpi_001", staticAdapter([]metricsource.Point{{TimeLabel: "10", SeriesLabel: "EQ-1", Value: 1}}))

	cases := []struct {
		name        string
		description *string
		indicatorNm string
		want        string
	}{
		{"description wins", strPtr("Custom Title"), "Power", "Custom Title"},
		{"blank description falls back", strPtr("   "), "Power", "Power"},
		{"indicator name", nil, "Power", "Power"},
		{"generic placeholder", nil, "", "KPI"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{
				subs: []kpidomain.Subscription{{IndicatorCd: "kpi_001", Description: tc.description}},
				metas: map[string]kpidomain.IndicatorMeta{
					"kpi_001": {IndicatorCd: "kpi_001", IndicatorNm: tc.indicatorNm},
				},
			}
			svc := newTestService(repo, registry)

			payloads, err := svc.GetChartData(context.Background(), testTenant, []kpidomain.ChartFilter{
				{Date: "2024-06-10", Range: "day"},
			})
			require.NoError(t, err)
			require.Len(t, payloads, 1)
			require.Equal(t, tc.want, payloads[0].Title)
		})
	}
}

func TestRequestedCodesRestrictSubscriptions(t *testing.T) {
	repo := &fakeRepo{
		subs: []kpidomain.Subscription{
			{IndicatorCd: "kpi_001"},
			{IndicatorCd: "kpi_002"},
		},
		metas: map[string]kpidomain.IndicatorMeta{
			"kpi_001": {IndicatorCd: "kpi_001", IndicatorNm: "Power"},
			"kpi_002": {IndicatorCd: "kpi_002", IndicatorNm: "Operation Rate"},
		},
	}
	points := []metricsource.Point{{TimeLabel: "10", SeriesLabel: "EQ-1", Value: 1}}
	registry := metricsource.NewRegistry()
	registry.Register("kpi_001", staticAdapter(points))
	registry.Register("kpi_002", staticAdapter(points))
	svc := newTestService(repo, registry)

	payloads, err := svc.GetChartData(context.Background(), testTenant, []kpidomain.ChartFilter{
		{IndicatorCd: "kpi_002", Date: "2024-06-10", Range: "day"},
	})
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	require.Equal(t, "kpi_002", payloads[0].IndicatorCd)
}

func TestDefaultFilterAppliesToUnlistedIndicators(t *testing.T) {
	repo := &fakeRepo{
		subs: []kpidomain.Subscription{
			{IndicatorCd: "kpi_001"},
			{IndicatorCd: "kpi_002"},
		},
		metas: map[string]kpidomain.IndicatorMeta{
			"kpi_001": {IndicatorCd: "kpi_001", IndicatorNm: "Power"},
			"kpi_002": {IndicatorCd: "kpi_002", IndicatorNm: "Operation Rate"},
		},
	}

	var gotRanges []string
	capture := adapterFunc(func(_ context.Context, _ tenantctx.Tenant, filter metricsource.Filter) ([]metricsource.Point, error) {
		gotRanges = append(gotRanges, filter.Range)
		return []metricsource.Point{{TimeLabel: "10", SeriesLabel: "EQ-1", Value: 1}}, nil
	})
	registry := metricsource.NewRegistry()
	registry.Register("kpi_001", capture)
	registry.Register("kpi_002", capture)
	svc := newTestService(repo, registry)

	// A single code-less entry covers every subscription with the default
	// filter.
	payloads, err := svc.GetChartData(context.Background(), testTenant, []kpidomain.ChartFilter{
		{Date: "2024-06-10", Range: "day"},
	})
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	require.Equal(t, []string{"day", "day"}, gotRanges)

	// Entries that name codes restrict the batch and carry their own filters.
	gotRanges = nil
	payloads, err = svc.GetChartData(context.Background(), testTenant, []kpidomain.ChartFilter{
		{IndicatorCd: "kpi_001", Date: "2024-06-10", Range: "day"},
		{IndicatorCd: "kpi_002", Date: "2024-06-10", Range: "week"},
	})
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	require.Equal(t, []string{"day", "week"}, gotRanges)
}

func TestInvalidFilterDateSkips(t *testing.T) {
	repo := &fakeRepo{
		subs:  []kpidomain.Subscription{{IndicatorCd: "kpi_001"}},
		metas: map[string]kpidomain.IndicatorMeta{"kpi_001": {IndicatorCd: "kpi_001", IndicatorNm: "Power"}},
	}
	registry := metricsource.NewRegistry()
	registry.Register("kpi_001", staticAdapter([]metricsource.Point{{TimeLabel: "10", SeriesLabel: "EQ-1", Value: 1}}))
	svc := newTestService(repo, registry)

	outcomes, err := svc.AssembleChartData(context.Background(), testTenant, []kpidomain.ChartFilter{
		{Date: "10-06-2024", Range: "day"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Equal(t, kpidomain.SkipInvalidFilter, outcomes[0].Skip)
}

func TestNoActiveSubscriptionsYieldsEmptyResult(t *testing.T) {
	svc := newTestService(&fakeRepo{}, metricsource.NewRegistry())

	payloads, err := svc.GetChartData(context.Background(), testTenant, []kpidomain.ChartFilter{
		{Date: "2024-06-10", Range: "day"},
	})
	require.NoError(t, err)
	require.Empty(t, payloads)
}
