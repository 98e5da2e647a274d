package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/roomify-app/roomify/internal/client/cli"
	"github.com/roomify-app/roomify/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.LoadConfig()

	if err := cli.Execute(ctx, cfg, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}

}
