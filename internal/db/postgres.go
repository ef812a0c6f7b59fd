package db

import (
	"context"
	"time"

	"wetmill-backend/internal/config"
	"wetmill-backend/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(cfg *config.Config) *pgxpool.Pool {
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		logging.Logger().Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logging.Logger().Fatalf("db ping failed: %v", err)
	}

	return pool
}
