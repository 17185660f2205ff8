package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/customer"
	"github.com/smallbiznis/faktura/internal/invoice"
	"github.com/smallbiznis/faktura/internal/logger"
	"github.com/smallbiznis/faktura/internal/migration"
	"github.com/smallbiznis/faktura/internal/providers/email"
	"github.com/smallbiznis/faktura/internal/providers/pdf"
	"github.com/smallbiznis/faktura/internal/ratelimit"
	"github.com/smallbiznis/faktura/internal/reference"
	"github.com/smallbiznis/faktura/internal/reminder"
	"github.com/smallbiznis/faktura/internal/scheduler"
	"github.com/smallbiznis/faktura/internal/seed"
	"github.com/smallbiznis/faktura/internal/server"
	"github.com/smallbiznis/faktura/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,
		ratelimit.Module,

		// Functional Domains
		email.Module,
		pdf.Module,
		customer.Module,
		invoice.Module,
		reminder.Module,
		reference.Module,

		scheduler.Module,
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
