package release

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mapassist/internal/logging"
	"mapassist/internal/mapscript"
	"mapassist/internal/musicscript"
	"mapassist/internal/pathkey"
	"mapassist/internal/reslist"
	"mapassist/internal/scripterr"
)

type sweep struct {
	dialect  Dialect
	dir      string
	ext      string
	validate func(path string) ([]string, error)
}

// FullCheck validates every map script, music script, and reslist in an
// install. Reslists are checked for disallowed, missing, and duplicate
// entries only, since the install holds files owned by other maps. The
// three sweeps run concurrently and share the orchestrator's index.
func (o *Orchestrator) FullCheck(ctx context.Context, installRoot string) Report {
	ctx, runID := ensureRunID(ctx)
	report := Report{
		RunID:     runID,
		Mode:      ModeFullCheck,
		Root:      installRoot,
		StartedAt: time.Now(),
	}
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("full check started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("root", installRoot),
	)

	layout := Layout{Root: installRoot}
	sources := musicscript.Sources{
		InstallSoundDir: layout.SoundDir(),
		ReleaseSoundDir: layout.SoundDir(),
	}
	sweeps := []sweep{
		{
			dialect: MapScript,
			dir:     layout.MapScriptDir(),
			ext:     "txt",
			validate: func(path string) ([]string, error) {
				return nil, mapscript.ValidateFile(path)
			},
		},
		{
			dialect: MusicScript,
			dir:     layout.MusicScriptDir(),
			ext:     "txt",
			validate: func(path string) ([]string, error) {
				res, err := o.music.ValidateFile(path, sources)
				return res.Warnings, err
			},
		},
		{
			dialect: Reslist,
			dir:     layout.MapsDir(),
			ext:     reslist.Extension,
			validate: func(path string) ([]string, error) {
				_, err := o.reslist.ValidateFile(path, installRoot, reslist.ModeFullCheck)
				return nil, err
			},
		},
	}

	var (
		mu      sync.Mutex
		results []Result
	)
	var g errgroup.Group
	for _, s := range sweeps {
		g.Go(func() error {
			out := o.runSweep(ctx, s)
			mu.Lock()
			results = append(results, out...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report.Results = results
	report.sortResults()
	report.FinishedAt = time.Now()
	logger.Info("full check finished",
		logging.String(logging.FieldEventType, "run_finish"),
		logging.Int("documents", len(report.Results)),
		logging.Int("failures", report.Failures()),
		logging.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report
}

func (o *Orchestrator) runSweep(ctx context.Context, s sweep) []Result {
	logger := logging.WithContext(ctx, o.logger).With(logging.String(logging.FieldDialect, s.dialect.String()))
	paths, err := listDocuments(s.dir, s.ext)
	if err != nil {
		res := Result{Dialect: s.dialect, Document: s.dir, Err: err}
		o.logResult(logger, res)
		return []Result{res}
	}
	logger.Debug("sweep started", logging.String("dir", s.dir), logging.Int("documents", len(paths)))

	out := make([]Result, 0, len(paths))
	for _, path := range paths {
		res := Result{Dialect: s.dialect, Document: path, Action: ActionValidated}
		if err := ctx.Err(); err != nil {
			res.Err = err
			out = append(out, res)
			continue
		}
		start := time.Now()
		res.Warnings, res.Err = s.validate(path)
		res.Duration = time.Since(start)
		if res.Err != nil {
			o.logResult(logger.With(logging.String(logging.FieldDocument, path)), res)
		} else {
			logger.Debug("document valid", logging.String(logging.FieldDocument, path))
		}
		out = append(out, res)
	}
	return out
}

// listDocuments returns every file under dir with the extension, using the
// on-disk spelling so the files can be opened on case-sensitive systems.
func listDocuments(dir, ext string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && pathkey.HasExt(d.Name(), ext) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, scripterr.IO("scan", dir, err)
	}
	return out, nil
}
