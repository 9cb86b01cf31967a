package importer

import (
	"github.com/openimob/rentshare/internal/importer/repository"
	"github.com/openimob/rentshare/internal/importer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("importer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
