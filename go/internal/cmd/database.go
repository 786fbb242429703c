package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/popqiz/popqiz/go/internal/dbconfig"
	"github.com/popqiz/popqiz/go/internal/store"
)

func setupDatabase(ctx context.Context) (*pgxpool.Pool, dbconfig.Config, error) {
	cfg := dbconfig.NewConfigFromEnv()

	pool, err := store.Open(ctx, cfg.DSN())
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, cfg, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("database", cfg.Database).Str("host", cfg.Host).Msg("connected to database")
	return pool, cfg, nil
}
