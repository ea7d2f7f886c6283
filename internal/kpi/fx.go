package kpi

import (
	"github.com/plantops/kpihub/internal/kpi/repository"
	"github.com/plantops/kpihub/internal/kpi/service"
	"go.uber.org/fx"
)

var Module = fx.Module("kpi.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
