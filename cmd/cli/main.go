package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/strapiclient/internal/buildinfo"
	"github.com/dmitrijs2005/strapiclient/internal/client/cli"
	"github.com/dmitrijs2005/strapiclient/internal/client/config"
	"github.com/dmitrijs2005/strapiclient/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logging.New(os.Stderr, cfg.LogLevel))
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
