// Package storage picks the store implementation from the database URL.
package storage

import (
	"context"
	"fmt"

	"restobackend/internal/db"
	"restobackend/internal/repository"
	"restobackend/internal/service"
	"restobackend/internal/sqlite"

	"go.uber.org/zap"
)

// Open connects to Postgres (postgres:// URLs, migrated on open) or to a
// SQLite file (sqlite://, file: or a plain path). The returned func releases
// the connection.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (service.Store, func(), error) {
	if db.IsPostgresURL(databaseURL) {
		pool, err := db.NewPool(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("store opened", zap.String("driver", "postgres"))
		return repository.New(pool), pool.Close, nil
	}

	dsn := sqlite.DSNFromURL(databaseURL)
	store, err := sqlite.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("store opened", zap.String("driver", "sqlite"), zap.String("dsn", dsn))
	return store, func() { _ = store.Close() }, nil
}
