package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"phototagger/internal/logging"
	"phototagger/internal/services"
)

// Scan processes every recognized image under root in lexical walk order.
// Per-file failures are counted in the Summary. Unreadable directories are
// logged and skipped. Cancellation stops the walk between files and is
// returned alongside the partial Summary; the file in progress finishes.
func Scan(ctx context.Context, root string, proc *Processor, force bool, logger *slog.Logger) (Summary, error) {
	logger = logging.NewComponentLogger(logger, "scan")
	summary := Summary{Root: root}
	started := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "scan", "stat root", root, err)
	}
	if !info.IsDir() {
		return summary, services.Wrap(services.ErrConfiguration, "scan", "stat root", root, errors.New("not a directory"))
	}

	if _, ok := services.RunIDFromContext(ctx); !ok {
		ctx = services.WithRunID(ctx, uuid.NewString())
	}
	logger = logging.WithContext(ctx, logger)
	logger.Info("scan started",
		logging.String("root", root),
		logging.Bool("force", force),
		logging.String(logging.FieldEventType, "scan_started"),
	)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logging.WarnWithContext(logger, "directory unreadable", "scan_dir_skipped",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "images below this directory are not processed"),
				logging.String(logging.FieldErrorHint, "check directory permissions"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsImage(path) || !isRegular(path, d) {
			return nil
		}
		summary.Add(proc.Process(context.WithoutCancel(ctx), path, force))
		return nil
	})

	summary.Elapsed = time.Since(started)
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
		return summary, fmt.Errorf("scan %s: %w", root, walkErr)
	}
	logger.Info("scan finished",
		logging.Int("total", summary.Total),
		logging.Int("tagged", summary.Tagged),
		logging.Int("skipped", summary.Skipped),
		logging.Int("no_tags", summary.NoTags),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed),
		logging.Bool("interrupted", walkErr != nil),
		logging.String(logging.FieldEventType, "scan_finished"),
	)
	return summary, walkErr
}

// isRegular accepts regular files and symlinks that resolve to one.
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
