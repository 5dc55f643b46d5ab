package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"phototagger/internal/preflight"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [folder]",
		Short: "Verify the state directory, a photo folder and the embedding service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var root string
			if len(args) == 1 {
				if root, err = filepath.Abs(args[0]); err != nil {
					return fmt.Errorf("resolve folder: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			}
			results := preflight.RunAll(cmd.Context(), cfg, root)
			for _, r := range results {
				fmt.Fprintln(out, renderCheckLine(r, colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}
}

func renderCheckLine(r preflight.Result, colorize bool) string {
	status, color := "OK", ansiGreen
	if !r.Passed {
		status, color = "ERROR", ansiRed
	}
	line := fmt.Sprintf("%s%-*s [%s] %s", statusIndent, statusLabelWidth, r.Name+":", status, r.Detail)
	if colorize {
		return color + line + ansiReset
	}
	return line
}
