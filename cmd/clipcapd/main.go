package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"clipcap/internal/config"
	"clipcap/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, store, err := bootstrap(cfg, logger)
	if err != nil {
		logger.Error("bootstrap", slog.String("error", err.Error()))
		return
	}
	defer store.Close() //nolint:errcheck

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", slog.String("error", err.Error()))
		return
	}
	defer d.Stop()

	<-ctx.Done()
	logger.Info("clipcapd shutting down")
}
