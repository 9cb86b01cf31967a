package transfer

import (
	"github.com/openimob/rentshare/internal/transfer/repository"
	"github.com/openimob/rentshare/internal/transfer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("transfer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
