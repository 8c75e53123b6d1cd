package tex2png

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
)

// Work directory settings.
const (
	dirPermissions = 0o750 // rwxr-x---
	tempDirPattern = "tex2png-*"
	lockName       = "formula.lock"
	lockRetryDelay = 50 * time.Millisecond
)

// workspace is the directory holding formula.tex and formula.dvi for one
// conversion, plus whatever must happen when the conversion ends.
type workspace struct {
	dir     string
	scoped  bool // created for this conversion
	release func() error
}

// openScoped creates a fresh temporary directory. release removes it unless
// keep is set.
func openScoped(logger *log.Logger, keep bool) (*workspace, error) {
	dir, err := os.MkdirTemp("", tempDirPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkDir, err)
	}

	ws := &workspace{dir: dir, scoped: true}
	ws.release = func() error {
		if keep {
			logger.Info("keeping work directory", "dir", dir)
			return nil
		}
		return os.RemoveAll(dir)
	}
	return ws, nil
}

// openShared uses a caller-chosen directory with the fixed intermediate
// names. Files are left in place afterwards. An advisory lock serialises
// conversions sharing the directory, since they would overwrite each other's
// formula.tex.
func openShared(ctx context.Context, dir string) (*workspace, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkDir, err)
	}
	if err := os.MkdirAll(absDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkDir, err)
	}

	lock := flock.New(filepath.Join(absDir, lockName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkDirLock, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrWorkDirLock, absDir)
	}

	return &workspace{dir: absDir, release: lock.Unlock}, nil
}
