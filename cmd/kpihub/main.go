// Command kpihub runs the API server and the rollup scheduler in one
// process, for single-instance deployments and local development.
package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/plantops/kpihub/internal/clock"
	"github.com/plantops/kpihub/internal/config"
	"github.com/plantops/kpihub/internal/kpi"
	"github.com/plantops/kpihub/internal/logger"
	"github.com/plantops/kpihub/internal/metricsource"
	"github.com/plantops/kpihub/internal/observability/metrics"
	"github.com/plantops/kpihub/internal/production"
	"github.com/plantops/kpihub/internal/rollup"
	"github.com/plantops/kpihub/internal/scheduler"
	"github.com/plantops/kpihub/internal/sensor"
	"github.com/plantops/kpihub/internal/server"
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
		sensor.Module,

		production.Module,
		metricsource.Module,
		kpi.Module,
		rollup.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
