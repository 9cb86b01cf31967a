package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/clock"
	"github.com/openimob/rentshare/internal/config"
	"github.com/openimob/rentshare/internal/migration"
	"github.com/openimob/rentshare/internal/observability"
	"github.com/openimob/rentshare/internal/server"
	"github.com/openimob/rentshare/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
