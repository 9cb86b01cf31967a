package rent

import (
	"github.com/openimob/rentshare/internal/rent/repository"
	"github.com/openimob/rentshare/internal/rent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
