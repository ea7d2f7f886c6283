package metricsource

import (
	productiondomain "github.com/plantops/kpihub/internal/production/domain"
	"github.com/plantops/kpihub/internal/sensor"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// NewDefaultRegistry binds the indicator codes with a metric source to their
// adapters.
func NewDefaultRegistry(db *gorm.DB, readings sensor.Repository, results productiondomain.Repository) *Registry {
	registry := NewRegistry()
	registry.Register(IndicatorPower, NewPowerAdapter(readings))
	registry.Register(IndicatorOperationRate, NewOperationRateAdapter(db, results))
	registry.Register(IndicatorYieldRate, NewYieldRateAdapter(db, results))
	registry.Register(IndicatorDefectRate, NewDefectRateAdapter(db, results))
	return registry
}

var Module = fx.Module("metricsource",
	fx.Provide(NewDefaultRegistry),
)
