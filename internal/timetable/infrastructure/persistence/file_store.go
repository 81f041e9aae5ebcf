package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// CorruptSuffix is appended to a document path when unreadable content is
// set aside.
const CorruptSuffix = ".corrupt"

// FileStore keeps the schedule in a JSON file on disk.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the document location.
func (s *FileStore) Path() string { return s.path }

// Load reads the document. A missing file is an empty schedule; a corrupt
// one is copied aside and also treated as empty.
func (s *FileStore) Load(ctx context.Context) (*domain.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewSchedule(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read timetable: %w", err)
	}

	schedule, corrupt := decodeOrEmpty(s.logger, s.path, data)
	if corrupt {
		s.quarantine(data)
	}
	return schedule, nil
}

// Save replaces the document atomically.
func (s *FileStore) Save(ctx context.Context, schedule *domain.Schedule) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := schedule.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode timetable: %w", err)
	}
	if err := atomicWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timetable: %w", err)
	}
	return nil
}

func (s *FileStore) quarantine(data []byte) {
	target := s.path + CorruptSuffix
	if err := atomicWrite(target, data, 0644); err != nil {
		s.logger.Warn("failed to preserve corrupt timetable", "path", target, "error", err)
		return
	}
	s.logger.Info("corrupt timetable preserved", "path", target)
}

// atomicWrite writes data to path using a temp file and rename.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".timetable-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
