package files

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"inpcalc/internal/validation"
)

// lockRetryDelay is the polling interval while waiting for a report lock
const lockRetryDelay = 100 * time.Millisecond

// Manager provides the file operations behind report persistence
type Manager struct {
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		validator: validation.NewFileValidator(logger),
		logger:    logger.With("component", "file_manager"),
	}
}

// EnsureWritableDirectory creates dir if needed and probes that it accepts writes
func (m *Manager) EnsureWritableDirectory(dir string) error {
	return m.validator.ValidateOutputDirectory(dir)
}

// Lock takes an exclusive advisory lock guarding path. The returned
// function releases it and removes the lock file.
func (m *Manager) Lock(ctx context.Context, path string) (func(), error) {
	lockPath := path + ".lock"
	fl := flock.New(lockPath)

	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock %s", path)
	}

	m.logger.Debug("Acquired file lock", slog.String("path", lockPath))
	return func() {
		if err := fl.Unlock(); err != nil {
			m.logger.Warn("Failed to release file lock",
				slog.String("path", lockPath),
				slog.String("error", err.Error()))
		}
		os.Remove(lockPath)
	}, nil
}

// TempPath returns a unique, not yet existing path next to dst with the
// same extension
func (m *Manager) TempPath(dst string) (string, error) {
	dir := filepath.Dir(dst)
	ext := filepath.Ext(dst)

	f, err := os.CreateTemp(dir, ".tmp-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	name := f.Name()
	f.Close()
	// The caller writes the file itself, so only the name is reserved
	if err := os.Remove(name); err != nil {
		return "", fmt.Errorf("failed to reserve temp file %s: %w", name, err)
	}
	return name, nil
}

// Commit atomically moves a completed temp file into place
func (m *Manager) Commit(tmp, dst string) error {
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", tmp, dst, err)
	}

	m.logger.Debug("Committed file",
		slog.String("temp", tmp),
		slog.String("path", dst))
	return nil
}

// Discard removes a temp file left by a failed write
func (m *Manager) Discard(tmp string) {
	if tmp == "" {
		return
	}
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("Failed to remove temp file",
			slog.String("path", tmp),
			slog.String("error", err.Error()))
	}
}
