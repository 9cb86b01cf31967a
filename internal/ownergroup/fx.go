package ownergroup

import (
	"github.com/openimob/rentshare/internal/ownergroup/repository"
	"github.com/openimob/rentshare/internal/ownergroup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ownergroup.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
