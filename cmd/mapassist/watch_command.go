package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mapassist/internal/logging"
	"mapassist/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags releaseFlags

	cmd := &cobra.Command{
		Use:   "watch [release-root]",
		Short: "Re-run the release check whenever the release tree changes",
		Long: "Runs the release check once, then again after every burst of file changes.\n" +
			"Each cycle scans the tree afresh. Stop with Ctrl+C.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}

			check := func(runCtx context.Context) error {
				plan, err := prepareRelease(cmd, ctx, &flags, args)
				if err != nil {
					return err
				}
				report, err := runPlan(runCtx, plan, logger)
				if err != nil {
					return err
				}
				if !report.Preflight {
					recordRun(runCtx, ctx, &report, logger)
				}
				if ctx.wantsJSON() {
					return writeJSON(cmd, newJSONReport(&report, plan.preflight))
				}
				printReleaseReport(cmd, ctx.isVerbose(), plan.preflight, &report)
				return nil
			}

			var argRoot string
			if len(args) > 0 {
				argRoot = args[0]
			}
			root, err := resolveRoot(argRoot, cfg.Paths.ReleaseRoot)
			if err != nil {
				return err
			}
			if err := check(cmd.Context()); err != nil {
				return err
			}

			w, err := watch.New(watch.Config{
				BaseDir:  root,
				Ignore:   cfg.Reslist.Ignore,
				Debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
				Logger:   logger,
				OnChange: func(runCtx context.Context, changed []string) error {
					logger.Info("release tree changed",
						logging.String(logging.FieldEventType, "watch_change"),
						logging.Int("changed", len(changed)),
					)
					fmt.Fprintln(cmd.OutOrStdout())
					return check(runCtx)
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", root)
			return w.Run(cmd.Context())
		},
	}
	flags.register(cmd)
	return cmd
}
