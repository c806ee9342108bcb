package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/alkeincodes/bundle-tool/internal/billing"
	"github.com/alkeincodes/bundle-tool/internal/clock"
	"github.com/alkeincodes/bundle-tool/internal/config"
	"github.com/alkeincodes/bundle-tool/internal/membership"
	"github.com/alkeincodes/bundle-tool/internal/observability"
	"github.com/alkeincodes/bundle-tool/internal/offer"
	"github.com/alkeincodes/bundle-tool/internal/platform"
	"github.com/alkeincodes/bundle-tool/internal/server"
	"github.com/alkeincodes/bundle-tool/internal/session"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		session.Module,
		billing.Module,
		platform.Module,
		membership.Module,
		offer.Module,
		server.Module,
	)
	app.Run()
}
