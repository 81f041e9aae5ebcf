package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// DocumentName is the row/key under which the schedule document is stored.
const DocumentName = "timetable"

// SQLiteStore keeps the schedule document in a SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	name   string
	logger *slog.Logger
}

// NewSQLiteStore creates the document table if needed and returns a store.
func NewSQLiteStore(ctx context.Context, db *sql.DB, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate timetable table: %w", err)
	}
	return &SQLiteStore{db: db, name: DocumentName, logger: logger}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*domain.Schedule, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM timetable_documents WHERE name = ?`, s.name,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewSchedule(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load timetable: %w", err)
	}

	schedule, _ := decodeOrEmpty(s.logger, "sqlite", []byte(body))
	return schedule, nil
}

func (s *SQLiteStore) Save(ctx context.Context, schedule *domain.Schedule) error {
	data, err := schedule.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode timetable: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO timetable_documents (name, body, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, s.name, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save timetable: %w", err)
	}
	return nil
}
