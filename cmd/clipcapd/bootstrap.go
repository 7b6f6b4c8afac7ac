package main

import (
	"fmt"
	"log/slog"

	"clipcap/internal/config"
	"clipcap/internal/daemon"
	"clipcap/internal/history"
)

func bootstrap(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, *history.Store, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("ensure directories: %w", err)
	}

	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open history store: %w", err)
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("create daemon: %w", err)
	}
	return d, store, nil
}
