package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxPathLength = 4096

var ErrUnsafePath = errors.New("unsafe path")

// DataFile validates a path for one of the app's own files (database, log),
// expands a leading ~/ and returns it absolute and clean. When create is set
// the parent directory is created.
func DataFile(path string, create bool) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsafePath)
	}
	if len(path) > maxPathLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrUnsafePath, maxPathLength)
	}
	for _, r := range path {
		if r == 0 || (r < 32 && r != '\t') {
			return "", fmt.Errorf("%w: control characters", ErrUnsafePath)
		}
	}

	switch {
	case strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	case strings.HasPrefix(path, "~"):
		return "", fmt.Errorf("%w: only ~/ is expanded", ErrUnsafePath)
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: directory traversal", ErrUnsafePath)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrUnsafePath, abs)
	}

	if create {
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return "", fmt.Errorf("creating directory: %w", err)
		}
	}
	return abs, nil
}
