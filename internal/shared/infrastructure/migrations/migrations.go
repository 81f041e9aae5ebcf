// Package migrations holds the embedded schema for the SQL timetable stores.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

// PostgresExecer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type PostgresExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// RunSQLiteMigrations executes all SQLite migrations in order.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	return run("sqlite", func(stmt string) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	})
}

// RunPostgresMigrations executes all PostgreSQL migrations in order.
func RunPostgresMigrations(ctx context.Context, db PostgresExecer) error {
	return run("postgres", func(stmt string) error {
		_, err := db.Exec(ctx, stmt)
		return err
	})
}

// UpFiles lists the .up.sql migrations for dialect in execution order.
func UpFiles(dialect string) ([]string, error) {
	entries, err := migrationsFS.ReadDir(dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s migrations: %w", dialect, err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Every migration is written with IF NOT EXISTS so reruns are no-ops.
func run(dialect string, exec func(string) error) error {
	files, err := UpFiles(dialect)
	if err != nil {
		return err
	}
	for _, file := range files {
		migration, err := migrationsFS.ReadFile(dialect + "/" + file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if err := exec(string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}
	return nil
}
