package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallfirma/fibua/internal/config"
	"github.com/smallfirma/fibua/internal/logger"
	"github.com/smallfirma/fibua/internal/migration"
	"github.com/smallfirma/fibua/internal/seed"
	"github.com/smallfirma/fibua/internal/server"
	"github.com/smallfirma/fibua/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		seed.Module,
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
