package daemon

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"phototagger/internal/config"
	"phototagger/internal/logging"
)

// ErrAlreadyRunning reports that another process holds the folder lock.
var ErrAlreadyRunning = errors.New("another phototagger instance is already running for this folder")

// LockPath returns the lock file used for root under stateDir.
func LockPath(stateDir, root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(stateDir, hex.EncodeToString(sum[:8])+".lock")
}

// Daemon serializes runs against one root folder across processes.
type Daemon struct {
	root     string
	lockPath string
	lock     *flock.Flock
	logger   *slog.Logger
}

// New constructs a Daemon for root using the configured state directory.
func New(cfg *config.Config, root string, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if cfg.Paths.StateDir == "" {
		return nil, errors.New("daemon requires paths.state_dir")
	}
	lockPath := LockPath(cfg.Paths.StateDir, root)
	return &Daemon{
		root:     root,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		logger:   logging.NewComponentLogger(logger, "daemon"),
	}, nil
}

// LockPath reports the lock file guarding the root.
func (d *Daemon) LockPath() string { return d.lockPath }

// Run acquires the folder lock, runs fn and releases the lock.
func (d *Daemon) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, d.lockPath)
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release folder lock", logging.Error(err), logging.String("lock", d.lockPath))
		}
	}()

	d.logger.Debug("folder lock acquired",
		logging.String("root", d.root),
		logging.String("lock", d.lockPath),
	)
	return fn(ctx)
}
