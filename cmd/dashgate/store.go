package main

import (
	"fmt"
	"os"
	"path/filepath"

	"mercator-hq/dashgate/pkg/config"
	"mercator-hq/dashgate/pkg/store"
	"mercator-hq/dashgate/pkg/store/memory"
	"mercator-hq/dashgate/pkg/store/sqlite"
)

// openStore opens the configured definition store backend.
func openStore(cfg *config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return memory.New(), nil
	case "sqlite", "":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		st, err := sqlite.Open(&sqlite.Config{
			Path:         cfg.SQLite.Path,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
