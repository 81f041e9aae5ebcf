package persistence

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/resilience"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// Options selects and configures a store backend.
type Options struct {
	Driver      database.Driver
	FilePath    string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
	RedisKey    string
	Breaker     resilience.BreakerConfig
}

// Opened is a store together with the resources backing it.
type Opened struct {
	Store  domain.Store
	Driver database.Driver
	closer io.Closer
}

// Close releases the backend connection, if any.
func (o *Opened) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open builds the store selected by opts. Remote backends are wrapped in a
// circuit breaker.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Opened, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Driver {
	case database.DriverFile, "":
		if opts.FilePath == "" {
			return nil, fmt.Errorf("timetable path is required for the file store")
		}
		return &Opened{Store: NewFileStore(opts.FilePath, logger), Driver: database.DriverFile}, nil

	case database.DriverMemory:
		return &Opened{Store: NewMemoryStore(), Driver: database.DriverMemory}, nil

	case database.DriverSQLite:
		db, err := sqlite.Open(ctx, database.Config{SQLitePath: opts.SQLitePath})
		if err != nil {
			return nil, err
		}
		store, err := NewSQLiteStore(ctx, db, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &Opened{Store: store, Driver: database.DriverSQLite, closer: db}, nil

	case database.DriverPostgres:
		pool, err := postgres.Open(ctx, database.Config{URL: opts.DatabaseURL})
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &Opened{
			Store:  NewBreakerStore("postgres-store", store, opts.Breaker, logger),
			Driver: database.DriverPostgres,
			closer: closerFunc(func() error { pool.Close(); return nil }),
		}, nil

	case database.DriverRedis:
		redisOpts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		client := redis.NewClient(redisOpts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return &Opened{
			Store:  NewBreakerStore("redis-store", NewRedisStore(client, opts.RedisKey, logger), opts.Breaker, logger),
			Driver: database.DriverRedis,
			closer: client,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", opts.Driver)
	}
}
