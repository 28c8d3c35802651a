package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mapassist/internal/config"
	"mapassist/internal/history"
	"mapassist/internal/logging"
	"mapassist/internal/mapscript"
	"mapassist/internal/preflight"
	"mapassist/internal/release"
)

// releaseFlags are shared by the root command and watch.
type releaseFlags struct {
	install       string
	baseWeight    int
	minPlayers    int
	maxPlayers    int
	resIntensity  int
	teamThreshold int
}

func (f *releaseFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.install, "install", "g", "", "GoldenEye: Source install directory")
	fs.IntVarP(&f.baseWeight, "weight", "w", 0, "Map script BaseWeight")
	fs.IntVarP(&f.minPlayers, "minplayers", "n", 0, "Map script MinPlayers")
	fs.IntVarP(&f.maxPlayers, "maxplayers", "x", 0, "Map script MaxPlayers")
	fs.IntVarP(&f.resIntensity, "resintensity", "s", 0, "Map script ResIntensity")
	fs.IntVarP(&f.teamThreshold, "teamthresh", "t", 0, "Map script TeamThreshold")
}

// params merges configured defaults with the flags the user actually set.
func (f *releaseFlags) params(cmd *cobra.Command, cfg *config.Config) mapscript.Params {
	p := mapscript.Params{
		BaseWeight:    cfg.Map.BaseWeight,
		MaxPlayers:    cfg.Map.MaxPlayers,
		MinPlayers:    cfg.Map.MinPlayers,
		ResIntensity:  cfg.Map.ResIntensity,
		TeamThreshold: cfg.Map.TeamThreshold,
	}
	fs := cmd.Flags()
	if fs.Changed("weight") {
		p.BaseWeight = f.baseWeight
	}
	if fs.Changed("maxplayers") {
		p.MaxPlayers = f.maxPlayers
	}
	if fs.Changed("minplayers") {
		p.MinPlayers = f.minPlayers
	}
	if fs.Changed("resintensity") {
		p.ResIntensity = f.resIntensity
	}
	if fs.Changed("teamthresh") {
		p.TeamThreshold = f.teamThreshold
	}
	return p
}

func (f *releaseFlags) installRoot(cfg *config.Config) (string, error) {
	if strings.TrimSpace(f.install) != "" {
		return config.ExpandPath(strings.TrimSpace(f.install))
	}
	if cfg.Paths.InstallRoot != "" {
		return cfg.Paths.InstallRoot, nil
	}
	return config.DetectInstallRoot(), nil
}

// releasePlan is a preflighted release ready to run.
type releasePlan struct {
	opts      release.Options
	preflight []preflight.Result
}

// prepareRelease resolves paths and parameters and runs the preflight
// checks. A nil plan with a nil error means preflight blocked the run.
func prepareRelease(cmd *cobra.Command, ctx *commandContext, flags *releaseFlags, args []string) (*releasePlan, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	var argRoot string
	if len(args) > 0 {
		argRoot = args[0]
	}
	root, err := resolveRoot(argRoot, cfg.Paths.ReleaseRoot)
	if err != nil {
		return nil, err
	}
	install, err := flags.installRoot(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve install root: %w", err)
	}

	// CheckRelease reports the missing map binary.
	mapName, _ := preflight.InferMapName(root)
	params := flags.params(cmd, cfg)
	results := preflight.RunRelease(preflight.Release{
		Root:        root,
		MapName:     mapName,
		InstallRoot: install,
		Params:      params,
	})
	plan := &releasePlan{preflight: results}
	if !preflight.Usable(results) {
		return plan, nil
	}
	if !preflight.InstallUsable(results) {
		install = ""
	}
	plan.opts = release.Options{
		ReleaseRoot:      root,
		InstallRoot:      install,
		MapName:          mapName,
		Params:           params,
		MusicExtension:   cfg.Music.Extension,
		FallbackPlaylist: cfg.Music.FallbackPlaylist,
		Disallowed:       cfg.Reslist.DisallowedExtensions,
		Ignore:           cfg.Reslist.Ignore,
		IgnoreFile:       cfg.Reslist.IgnoreFile,
		LockDir:          cfg.LockDir(),
	}
	return plan, nil
}

func (p *releasePlan) usable() bool {
	return preflight.Usable(p.preflight)
}

// runPlan executes the plan and returns the report with the preflight bit
// folded in.
func runPlan(ctx context.Context, plan *releasePlan, logger *slog.Logger) (release.Report, error) {
	if !plan.usable() {
		return release.Report{Mode: release.ModeRelease, Preflight: true}, nil
	}
	orch := release.New(plan.opts, nil, logger)
	report, err := orch.Run(ctx)
	if err != nil {
		if errors.Is(err, release.ErrLocked) {
			report.Preflight = true
			plan.preflight = append(plan.preflight, preflight.Result{Name: "Release lock", Detail: err.Error()})
			return report, nil
		}
		return report, err
	}
	return report, nil
}

func runReleaseCommand(cmd *cobra.Command, ctx *commandContext, flags *releaseFlags, args []string) error {
	logger, err := ctx.ensureLogger(cmd)
	if err != nil {
		return err
	}
	plan, err := prepareRelease(cmd, ctx, flags, args)
	if err != nil {
		return err
	}
	report, err := runPlan(cmd.Context(), plan, logger)
	if err != nil {
		return err
	}
	if !report.Preflight {
		recordRun(cmd.Context(), ctx, &report, logger)
	}

	if ctx.wantsJSON() {
		if err := writeJSON(cmd, newJSONReport(&report, plan.preflight)); err != nil {
			return err
		}
	} else {
		printReleaseReport(cmd, ctx.isVerbose(), plan.preflight, &report)
	}
	if code := report.Failures(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// recordRun stores the run in the ledger. Ledger failures never fail the
// run itself.
func recordRun(ctx context.Context, cmdCtx *commandContext, report *release.Report, logger *slog.Logger) {
	store, err := cmdCtx.openHistory()
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	if err := store.Record(ctx, history.FromReport(report)); err != nil {
		logging.WarnWithContext(logger, "failed to record run", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
		return
	}
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return
	}
	if removed, err := store.Prune(ctx, cfg.History.KeepRuns); err != nil {
		logger.Warn("failed to prune history", logging.Error(err))
	} else if removed > 0 {
		logger.Debug("pruned history", logging.Int64("removed", removed))
	}
}
