package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	kpidomain "github.com/plantops/kpihub/internal/kpi/domain"
	"github.com/plantops/kpihub/internal/metricsource"
	productiondomain "github.com/plantops/kpihub/internal/production/domain"
	"github.com/plantops/kpihub/pkg/tenantctx"
	"go.uber.org/zap"
)

const queryDateLayout = "2006-01-02"

func (s *Server) tenant(c *gin.Context) (tenantctx.Tenant, bool) {
	tenant, ok := tenantctx.TenantFromContext(c.Request.Context())
	if !ok || tenant.IsZero() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing tenant context"})
		return tenantctx.Tenant{}, false
	}
	return tenant, true
}

// GetChartData assembles chart payloads for the request body's filters.
// POST /api/kpi/chart-data
func (s *Server) GetChartData(c *gin.Context) {
	tenant, ok := s.tenant(c)
	if !ok {
		return
	}

	var filters []kpidomain.ChartFilter
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	payloads, err := s.kpiSvc.GetChartData(c.Request.Context(), tenant, filters)
	if err != nil {
		s.logger.Error("chart data assembly failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chart data unavailable"})
		return
	}

	c.JSON(http.StatusOK, payloads)
}

// ListSubscriptions returns the tenant's active subscriptions.
// GET /api/kpi/subscriptions
func (s *Server) ListSubscriptions(c *gin.Context) {
	tenant, ok := s.tenant(c)
	if !ok {
		return
	}

	subscriptions, err := s.kpiSvc.ListSubscriptions(c.Request.Context(), tenant)
	if err != nil {
		s.logger.Error("list subscriptions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscriptions unavailable"})
		return
	}

	c.JSON(http.StatusOK, subscriptions)
}

// ListIndicators returns indicator master data with category names.
// GET /api/kpi/indicators
func (s *Server) ListIndicators(c *gin.Context) {
	indicators, err := s.kpiSvc.ListIndicators(c.Request.Context())
	if err != nil {
		s.logger.Error("list indicators failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "indicators unavailable"})
		return
	}

	c.JSON(http.StatusOK, indicators)
}

// ListSnapshots returns production-rate snapshots for one cadence, windowed
// by optional from/to dates.
// GET /api/kpi/snapshots/:cadence
func (s *Server) ListSnapshots(c *gin.Context) {
	tenant, ok := s.tenant(c)
	if !ok {
		return
	}

	cadence := productiondomain.Cadence(c.Param("cadence"))
	if !cadence.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cadence must be hour or day"})
		return
	}

	to := s.clock.Now()
	from := to.AddDate(0, 0, -1)
	if cadence == productiondomain.CadenceDay {
		from = to.AddDate(0, 0, -30)
	}
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		to = parsed.AddDate(0, 0, 1)
	}

	snapshots, err := s.rollupSvc.ListSnapshots(c.Request.Context(), cadence, tenant, from, to)
	if err != nil {
		s.logger.Error("list snapshots failed",
			zap.String("cadence", string(cadence)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "snapshots unavailable"})
		return
	}

	c.JSON(http.StatusOK, snapshots)
}

// GetPowerChart returns raw power points, optionally scoped to one device.
// Used by the equipment 3D view.
// GET /api/kpi/power?date=yyyy-MM-dd&range=day&deviceId=...
func (s *Server) GetPowerChart(c *gin.Context) {
	tenant, ok := s.tenant(c)
	if !ok {
		return
	}

	date, err := time.Parse(queryDateLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}
	rangeToken := c.DefaultQuery("range", "day")

	adapter, ok := s.registry.Lookup(metricsource.IndicatorPower)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "power metric source not registered"})
		return
	}

	points, err := adapter.Fetch(c.Request.Context(), tenant, metricsource.Filter{
		Date:     date,
		Range:    rangeToken,
		DeviceID: c.Query("deviceId"),
	})
	if err != nil {
		s.logger.Error("power fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "power data unavailable"})
		return
	}

	type powerPoint struct {
		TimeLabel string  `json:"timeLabel"`
		DeviceID  string  `json:"deviceId"`
		Power     float64 `json:"power"`
	}
	out := make([]powerPoint, 0, len(points))
	for _, point := range points {
		out = append(out, powerPoint{
			TimeLabel: point.TimeLabel,
			DeviceID:  point.SeriesLabel,
			Power:     point.Value,
		})
	}

	c.JSON(http.StatusOK, out)
}
