package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/EdProwise/beawar-school-sub001/internal/buildinfo"
	"github.com/EdProwise/beawar-school-sub001/internal/client/cli"
	"github.com/EdProwise/beawar-school-sub001/internal/client/config"
	"github.com/EdProwise/beawar-school-sub001/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error(ctx, "invalid configuration", "error", err)
		os.Exit(1)
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to start console", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
