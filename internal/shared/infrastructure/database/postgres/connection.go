// Package postgres opens the pgx pool behind the Postgres timetable store.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/database"
)

// ErrMissingURL is returned when no DATABASE_URL was configured.
var ErrMissingURL = errors.New("postgres: DATABASE_URL is required")

// PoolConfig parses cfg.URL and applies the pool limits.
func PoolConfig(cfg database.Config) (*pgxpool.Config, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if _, ok := pc.ConnConfig.RuntimeParams["application_name"]; !ok {
		pc.ConnConfig.RuntimeParams["application_name"] = database.ApplicationName
	}
	return pc, nil
}

// Open builds the pool and pings it within cfg's connect timeout.
func Open(ctx context.Context, cfg database.Config) (*pgxpool.Pool, error) {
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	pingCtx, cancel := cfg.PingContext(ctx)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}
