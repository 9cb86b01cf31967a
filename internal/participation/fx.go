package participation

import (
	"github.com/openimob/rentshare/internal/participation/repository"
	"github.com/openimob/rentshare/internal/participation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("participation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
