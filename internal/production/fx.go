package production

import (
	"github.com/plantops/kpihub/internal/production/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("production",
	fx.Provide(repository.Provide),
)
