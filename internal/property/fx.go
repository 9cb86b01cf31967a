package property

import (
	"github.com/openimob/rentshare/internal/property/repository"
	"github.com/openimob/rentshare/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
