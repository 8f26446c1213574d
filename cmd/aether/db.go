package main

import (
	"context"

	"aether/internal/config"
	"aether/internal/store"
	"aether/internal/store/postgres"
	"aether/internal/store/sqlite"
)

func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	driver, err := config.DatabaseDriver(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var db store.Store
	switch driver {
	case "postgres":
		db, err = postgres.New(ctx, cfg.Database.DSN)
	default:
		db, err = sqlite.New(ctx, cfg.Database.DSN)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("store opened", "driver", driver)
	return db, nil
}
