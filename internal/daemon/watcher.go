package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"phototagger/internal/logging"
	"phototagger/internal/services"
	"phototagger/internal/workflow"
)

const (
	defaultSettleDelay = time.Second
	defaultBacklogWarn = 256
)

// FileProcessor is the per-file unit of work the watcher drives.
type FileProcessor interface {
	Process(ctx context.Context, path string, force bool) workflow.Outcome
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

// WithEventSource overrides how the event source is opened.
func WithEventSource(open func() (EventSource, error)) WatcherOption {
	return func(w *Watcher) {
		if open != nil {
			w.openSource = open
		}
	}
}

// WithSettleDelay sets the pause between dequeuing a file and processing it.
func WithSettleDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// WithBacklogWarning sets the number of waiting files that triggers a
// warning. The queue itself is unbounded.
func WithBacklogWarning(n int) WatcherOption {
	return func(w *Watcher) {
		if n > 0 {
			w.backlogWarn = n
		}
	}
}

// Watcher tags images as they appear below a root directory.
type Watcher struct {
	root       string
	proc       FileProcessor
	logger     *slog.Logger
	openSource func() (EventSource, error)
	settle      time.Duration
	backlogWarn int

	mu      sync.Mutex
	watched map[string]struct{}
}

// NewWatcher constructs a Watcher over root.
func NewWatcher(root string, proc FileProcessor, logger *slog.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		root:        root,
		proc:        proc,
		logger:      logging.NewComponentLogger(logger, "watcher"),
		openSource:  NewFSNotifySource,
		settle:      defaultSettleDelay,
		backlogWarn: defaultBacklogWarn,
		watched:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. It returns nil on a clean shutdown.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "watch", "stat root", w.root, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "watch", "stat root", w.root, errors.New("not a directory"))
	}

	source, err := w.openSource()
	if err != nil {
		return fmt.Errorf("open watcher: %w", err)
	}
	defer source.Close()

	if _, ok := services.RunIDFromContext(ctx); !ok {
		ctx = services.WithRunID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, w.logger)

	if _, err := w.addTree(logger, source, w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	logger.Info("watch started",
		logging.String("root", w.root),
		logging.Int("directories", w.watchedCount()),
		logging.Duration("settle_delay", w.settle),
		logging.String(logging.FieldEventType, "watch_started"),
	)

	queue := newPendingQueue()
	abandoned := 0
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer queue.close()
		return w.pump(gctx, logger, source, queue)
	})
	g.Go(func() error {
		abandoned = w.work(gctx, queue)
		return nil
	})
	err = g.Wait()

	if dropped := abandoned + queue.discard(); dropped > 0 {
		logger.Info("dropped queued images on shutdown",
			logging.Int("dropped", dropped),
			logging.String(logging.FieldEventType, "watch_queue_dropped"),
		)
	}

	logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stopped"))
	return err
}

func (w *Watcher) pump(ctx context.Context, logger *slog.Logger, source EventSource, queue *pendingQueue) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-source.Events():
			if !ok {
				return errors.New("watch event stream closed")
			}
			w.handleEvent(logger, source, ev, queue)
		case err, ok := <-source.Errors():
			if !ok {
				return errors.New("watch error stream closed")
			}
			logging.WarnWithContext(logger, "watch error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "raise fs.inotify.max_user_watches if the tree is large"),
				logging.String(logging.FieldImpact, "some file events may be missed"),
			)
		}
	}
}

func (w *Watcher) handleEvent(logger *slog.Logger, source EventSource, ev fsnotify.Event, queue *pendingQueue) {
	if !ev.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		logger.Debug("created path vanished", logging.String("path", ev.Name), logging.Error(err))
		return
	}
	if info.IsDir() {
		images, err := w.addTree(logger, source, ev.Name)
		if err != nil {
			logger.Warn("failed to watch new directory", logging.String("path", ev.Name), logging.Error(err))
			return
		}
		for _, path := range images {
			w.enqueue(logger, path, queue)
		}
		return
	}
	if info.Mode().IsRegular() && workflow.IsImage(ev.Name) {
		w.enqueue(logger, ev.Name, queue)
	}
}

func (w *Watcher) enqueue(logger *slog.Logger, path string, queue *pendingQueue) {
	added, backlog := queue.push(path)
	if !added {
		logger.Debug("image already queued", logging.String("path", path))
		return
	}
	logger.Debug("image queued", logging.String("path", path), logging.Int("backlog", backlog))
	if backlog == w.backlogWarn {
		logging.WarnWithContext(logger, "watch backlog growing", "watch_backlog",
			logging.Int("backlog", backlog),
			logging.String(logging.FieldErrorHint, "images arrive faster than they are tagged; they stay queued"),
			logging.String(logging.FieldImpact, "tags will be written late"),
		)
	}
}

// work processes queued paths one at a time. It returns 1 when shutdown
// interrupts the settle delay of a dequeued path.
func (w *Watcher) work(ctx context.Context, queue *pendingQueue) int {
	for {
		path, ok := queue.pop(ctx)
		if !ok {
			return 0
		}
		if err := sleepContext(ctx, w.settle); err != nil {
			return 1
		}
		// The started file finishes even when shutdown begins meanwhile.
		w.proc.Process(context.WithoutCancel(ctx), path, true)
	}
}

// addTree watches dir and every directory below it and returns the images
// already present in newly watched directories.
func (w *Watcher) addTree(logger *slog.Logger, source EventSource, dir string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Warn("skipping unreadable directory", logging.String("path", path), logging.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if path != dir && d.Type().IsRegular() && workflow.IsImage(path) {
				images = append(images, path)
			}
			return nil
		}
		if w.isWatched(path) {
			return nil
		}
		if err := source.Add(path); err != nil {
			if path == dir {
				return err
			}
			logger.Warn("failed to watch directory", logging.String("path", path), logging.Error(err))
			return fs.SkipDir
		}
		w.markWatched(path)
		return nil
	})
	if dir == w.root {
		images = nil
	}
	return images, err
}

func (w *Watcher) isWatched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.watched[path]
	return ok
}

func (w *Watcher) markWatched(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watched[path] = struct{}{}
}

func (w *Watcher) watchedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
