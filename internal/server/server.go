package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plantops/kpihub/internal/clock"
	"github.com/plantops/kpihub/internal/config"
	kpidomain "github.com/plantops/kpihub/internal/kpi/domain"
	"github.com/plantops/kpihub/internal/metricsource"
	obsmiddleware "github.com/plantops/kpihub/internal/observability/logger"
	"github.com/plantops/kpihub/internal/rollup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(cfg, log, registry)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine    *gin.Engine
	kpiSvc    kpidomain.Service
	rollupSvc rollup.Service
	registry  *metricsource.Registry
	clock     clock.Clock
	logger    *zap.Logger
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	KpiSvc    kpidomain.Service
	RollupSvc rollup.Service
	Registry  *metricsource.Registry
	Clock     clock.Clock
	Logger    *zap.Logger
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:    p.Gin,
		kpiSvc:    p.KpiSvc,
		rollupSvc: p.RollupSvc,
		registry:  p.Registry,
		clock:     p.Clock,
		logger:    p.Logger.Named("server"),
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/kpi", TenantRequired())

	api.POST("/chart-data", s.GetChartData)
	api.GET("/subscriptions", s.ListSubscriptions)
	api.GET("/indicators", s.ListIndicators)
	api.GET("/snapshots/:cadence", s.ListSnapshots)
	api.GET("/power", s.GetPowerChart)
}
