package main

import (
	"context"
	"log"

	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/server"
	"github.com/roomify-app/roomify/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger, err := logging.NewProductionZap(cfg.Debug)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		return
	}

	app.Run(ctx)

}
