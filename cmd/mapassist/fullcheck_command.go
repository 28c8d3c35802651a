package main

import (
	"strings"

	"github.com/spf13/cobra"

	"mapassist/internal/config"
	"mapassist/internal/preflight"
	"mapassist/internal/release"
)

func newFullCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fullcheck [install-root]",
		Short: "Validate every map script, music script, and reslist in an install",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}

			var installRoot string
			switch {
			case len(args) > 0 && strings.TrimSpace(args[0]) != "":
				if installRoot, err = config.ExpandPath(strings.TrimSpace(args[0])); err != nil {
					return err
				}
			case cfg.Paths.InstallRoot != "":
				installRoot = cfg.Paths.InstallRoot
			default:
				installRoot = config.DetectInstallRoot()
			}

			checks := preflight.RunFullCheck(installRoot)
			report := release.Report{Mode: release.ModeFullCheck, Root: installRoot}
			if preflight.Usable(checks) {
				orch := release.New(release.Options{
					MusicExtension:   cfg.Music.Extension,
					FallbackPlaylist: cfg.Music.FallbackPlaylist,
					Disallowed:       cfg.Reslist.DisallowedExtensions,
					Ignore:           cfg.Reslist.Ignore,
					IgnoreFile:       cfg.Reslist.IgnoreFile,
				}, nil, logger)
				report = orch.FullCheck(cmd.Context(), installRoot)
				recordRun(cmd.Context(), ctx, &report, logger)
			} else {
				report.Preflight = true
			}

			if ctx.wantsJSON() {
				if err := writeJSON(cmd, newJSONReport(&report, checks)); err != nil {
					return err
				}
			} else {
				printFullCheckReport(cmd, ctx.isVerbose(), checks, &report)
			}
			if code := report.Failures(); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
}
