package scheduler

import (
	"context"

	"github.com/plantops/kpihub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func registerHooks(lc fx.Lifecycle, cfg config.Config, s *Scheduler, log *zap.Logger) {
	if !cfg.Scheduler.Enabled {
		log.Info("rollup scheduler disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}

var Module = fx.Module("scheduler",
	fx.Provide(
		NewRedisClient,
		NewRedisLocker,
		New,
	),
	fx.Invoke(registerRedisHooks),
	fx.Invoke(registerHooks),
)
