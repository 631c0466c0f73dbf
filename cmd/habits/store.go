package main

import (
	"context"
	"fmt"

	"habits/internal/adapter/memory"
	"habits/internal/adapter/postgres"
	redisstore "habits/internal/adapter/redis"
	"habits/internal/config"
	"habits/internal/domain"

	"go.uber.org/zap"
)

// openStore returns the configured repository and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (domain.HabitRepository, func() error, error) {
	switch cfg.Server.Store {
	case config.StorePostgres:
		db, err := postgres.Open(cfg.Server.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		return db, db.Close, nil
	case config.StoreRedis:
		r := cfg.Server.Redis
		s, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   r.Prefix,
		}, log.Named("redis"))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreMemory:
		log.Warn("using in-memory store; habits are lost on restart")
		return memory.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Server.Store)
	}
}
