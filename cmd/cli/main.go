package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/devendra0039/s3-file-manager/internal/buildinfo"
	"github.com/devendra0039/s3-file-manager/internal/client/cli"
	"github.com/devendra0039/s3-file-manager/internal/client/config"
	"github.com/devendra0039/s3-file-manager/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
