package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"phototagger/internal/classify"
	"phototagger/internal/config"
	"phototagger/internal/daemon"
	"phototagger/internal/logging"
	"phototagger/internal/preflight"
	"phototagger/internal/services"
	"phototagger/internal/services/clip"
	"phototagger/internal/sidecar"
	"phototagger/internal/tagging"
	"phototagger/internal/workflow"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "scan <folder>",
		Short: "Tag every image below a folder once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, ctx, args[0], force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-tag images that already have keywords")
	return cmd
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <folder>",
		Short: "Tag new images as they appear below a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, ctx, args[0])
		},
	}
}

// runtime holds the wired per-run dependencies.
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	root      string
	processor *workflow.Processor
	daemon    *daemon.Daemon
}

func prepareRun(ctx *commandContext, folder string, out io.Writer) (*runtime, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolve folder: %w", err)
	}
	if check := preflight.CheckDirectoryAccess("Photo folder", root); !check.Passed {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "check folder", check.Detail, nil)
	}

	d, err := daemon.New(cfg, root, logger)
	if err != nil {
		return nil, err
	}

	reporter := newLineReporter(out, root, shouldColorize(out))
	return &runtime{
		cfg:       cfg,
		logger:    logger,
		root:      root,
		processor: workflow.NewProcessor(buildPipeline(cfg, logger), sidecar.NewStore(logger), reporter, logger),
		daemon:    d,
	}, nil
}

func buildPipeline(cfg *config.Config, logger *slog.Logger) *tagging.Pipeline {
	ranker := classify.New(classify.NewEmbeddingScorer(clip.NewFromConfig(cfg)), logger)
	return tagging.NewPipeline(ranker, tagging.StagesFromConfig(cfg), logger)
}

func runScan(cmd *cobra.Command, ctx *commandContext, folder string, force bool) error {
	out := cmd.OutOrStdout()
	rt, err := prepareRun(ctx, folder, out)
	if err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	runCtx := services.WithRunID(signalCtx, uuid.NewString())

	fmt.Fprintf(out, "Scanning %s\n", rt.root)
	if force {
		fmt.Fprintln(out, "Force mode: re-tagging images that already have keywords")
	}

	var summary workflow.Summary
	err = rt.daemon.Run(runCtx, func(runCtx context.Context) error {
		var scanErr error
		summary, scanErr = workflow.Scan(runCtx, rt.root, rt.processor, force, rt.logger)
		return scanErr
	})
	if summary.Total > 0 || err == nil || errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, renderSummary(summary))
	}
	return err
}

func runWatch(cmd *cobra.Command, ctx *commandContext, folder string) error {
	out := cmd.OutOrStdout()
	rt, err := prepareRun(ctx, folder, out)
	if err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	runCtx := services.WithRunID(signalCtx, uuid.NewString())

	watcher := daemon.NewWatcher(rt.root, rt.processor, rt.logger,
		daemon.WithSettleDelay(rt.cfg.SettleDelay()),
		daemon.WithBacklogWarning(rt.cfg.Watch.BacklogWarning),
	)
	fmt.Fprintf(out, "Watching %s for new images (Ctrl+C to stop)\n", rt.root)
	err = rt.daemon.Run(runCtx, watcher.Run)
	if err != nil {
		logging.ErrorWithContext(logging.WithContext(runCtx, rt.logger), "watch failed", "watch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the folder still exists and inotify limits"),
		)
	}
	return err
}
