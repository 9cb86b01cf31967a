package owner

import (
	"github.com/openimob/rentshare/internal/owner/repository"
	"github.com/openimob/rentshare/internal/owner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("owner.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
