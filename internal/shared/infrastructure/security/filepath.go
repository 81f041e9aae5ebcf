// Package security validates paths handed to the CLI before they are read or written.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyPath is returned for an empty path.
var ErrEmptyPath = errors.New("file path cannot be empty")

// shell metacharacters never expected in a slots or export file name
var forbiddenChars = ";&|$`<>!\n\r"

// ValidateFilePath cleans path, makes it absolute and resolves symlinks when
// the target exists. A path that does not exist yet is returned cleaned.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("file path contains forbidden character %q: %s", path[i], path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// ReadFile reads a validated path.
func ReadFile(path string) ([]byte, error) {
	clean, err := ValidateFilePath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(clean)
}

// WriteFile writes data to a validated path with owner-only permissions.
// Directories are refused.
func WriteFile(path string, data []byte) error {
	clean, err := ValidateFilePath(path)
	if err != nil {
		return err
	}
	if info, err := os.Stat(clean); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return os.WriteFile(clean, data, 0o600)
}
