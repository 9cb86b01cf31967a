package audit

import (
	"github.com/openimob/rentshare/internal/audit/repository"
	"github.com/openimob/rentshare/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
