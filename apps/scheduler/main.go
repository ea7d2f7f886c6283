package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/plantops/kpihub/internal/clock"
	"github.com/plantops/kpihub/internal/config"
	"github.com/plantops/kpihub/internal/logger"
	"github.com/plantops/kpihub/internal/observability/metrics"
	"github.com/plantops/kpihub/internal/production"
	"github.com/plantops/kpihub/internal/rollup"
	"github.com/plantops/kpihub/internal/scheduler"
	"github.com/plantops/kpihub/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		metrics.Module,
		db.Module,

		production.Module,
		rollup.Module,

		// No server module; the scheduler registers its own lifecycle hooks.
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}
