package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alert-strategist/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	newPool  = pgxpool.New
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// InitPostgres opens and verifies a connection pool.
func InitPostgres(ctx context.Context, dsn string, log *logger.Logger) (*pgxpool.Pool, error) {
	if log == nil {
		log = logger.L()
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pingPool(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info("Connected to Postgres", logger.Int("max_conns", int(pool.Config().MaxConns)))
	return pool, nil
}
