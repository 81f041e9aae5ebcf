package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// PostgresStore keeps the schedule document in a PostgreSQL table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	name   string
	logger *slog.Logger
}

// NewPostgresStore creates the document table if needed and returns a store.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to migrate timetable table: %w", err)
	}
	return &PostgresStore{pool: pool, name: DocumentName, logger: logger}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (*domain.Schedule, error) {
	var body string
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM timetable_documents WHERE name = $1`, s.name,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewSchedule(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load timetable: %w", err)
	}

	schedule, _ := decodeOrEmpty(s.logger, "postgres", []byte(body))
	return schedule, nil
}

func (s *PostgresStore) Save(ctx context.Context, schedule *domain.Schedule) error {
	data, err := schedule.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode timetable: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO timetable_documents (name, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`, s.name, string(data))
	if err != nil {
		return fmt.Errorf("failed to save timetable: %w", err)
	}
	return nil
}
