package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/josh-kwaku/mobile-payments/internal/config"
	"github.com/josh-kwaku/mobile-payments/internal/repository"
)

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.TransactionStore, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
			MaxOpenConns:     cfg.DBMaxOpenConns,
			MaxIdleConns:     cfg.DBMaxIdleConns,
			ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
			ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
		})
		if err != nil {
			return nil, fmt.Errorf("openStore: %w", err)
		}
		return repository.NewPostgresStore(db, cfg.DatabaseURL, logger), nil

	case config.StoreDriverRedis:
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("openStore: %w", err)
		}
		return repository.NewRedisStore(client, cfg.RedisKeyPrefix, logger), nil

	default:
		return repository.NewMemoryStore(logger), nil
	}
}
