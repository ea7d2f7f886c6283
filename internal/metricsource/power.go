package metricsource

import (
	"context"
	"sort"

	"github.com/plantops/kpihub/internal/sensor"
	"github.com/plantops/kpihub/pkg/tenantctx"
)

const storedTimeLayout = "2006-01-02 15:04:05"

// PowerAdapter averages sensor power per (time bucket, device). The optional
// DeviceID filter restricts rows to a single device before grouping.
type PowerAdapter struct {
	readings sensor.Repository
}

func NewPowerAdapter(readings sensor.Repository) *PowerAdapter {
	return &PowerAdapter{readings: readings}
}

func (a *PowerAdapter) Fetch(ctx context.Context, tenant tenantctx.Tenant, filter Filter) ([]Point, error) {
	params := ResolveParams(filter.Range)
	start, end := ResolveWindow(filter.Date, params.LookbackDays)

	rows, err := a.readings.PowerReadings(ctx, tenant,
		start.Format(storedTimeLayout), end.Format(storedTimeLayout), filter.DeviceID)
	if err != nil {
		return nil, err
	}

	type group struct {
		sum   float64
		count int
	}
	groups := make(map[[2]string]*group)
	for _, row := range rows {
		key := [2]string{params.BucketLabel(row.RecordTime), row.DeviceID}
		g := groups[key]
		if g == nil {
			g = &group{}
			groups[key] = g
		}
		g.sum += row.Power
		g.count++
	}

	points := make([]Point, 0, len(groups))
	for key, g := range groups {
		value := 0.0
		if g.count > 0 {
			value = g.sum / float64(g.count)
		}
		points = append(points, Point{TimeLabel: key[0], SeriesLabel: key[1], Value: value})
	}
	sortPoints(points)
	return points, nil
}

func sortPoints(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].TimeLabel != points[j].TimeLabel {
			return points[i].TimeLabel < points[j].TimeLabel
		}
		return points[i].SeriesLabel < points[j].SeriesLabel
	})
}
