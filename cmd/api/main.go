package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/markdave123-py/newsprint/internal/app"
	"github.com/markdave123-py/newsprint/internal/config"
	"github.com/markdave123-py/newsprint/internal/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.LoadConfig()
	log := logger.New(cfg.LogLevel)

	if err := cfg.ValidateServer(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("startup failed")
	}

	err = application.Run(ctx, cfg.NumWorkers)
	application.Close()
	if err != nil {
		log.WithError(err).Error("server error")
		os.Exit(1)
	}
	log.Info("shut down cleanly")
}
