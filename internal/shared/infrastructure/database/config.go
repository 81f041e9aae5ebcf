package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config carries what the SQL openers need.
type Config struct {
	URL        string // postgres connection string
	SQLitePath string // file path, sqlite:// URL or MemoryPath

	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// DefaultConnectTimeout bounds the initial ping when Config leaves it unset.
const DefaultConnectTimeout = 10 * time.Second

// ApplicationName is reported to Postgres so sessions show up in pg_stat_activity.
const ApplicationName = "timetable"

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return DefaultConnectTimeout
}

// PingContext derives the context used for the first ping after opening.
func (c Config) PingContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.connectTimeout())
}

// DefaultSQLitePath is ~/.timetable/timetable.db, or ./.timetable when the
// home directory is unknown.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".timetable", "timetable.db")
}

// SQLiteFilePath strips the sqlite:// scheme.
func SQLiteFilePath(path string) string {
	return strings.TrimPrefix(path, "sqlite://")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
