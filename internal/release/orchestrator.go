package release

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mapassist/internal/dirindex"
	"mapassist/internal/fileutil"
	"mapassist/internal/logging"
	"mapassist/internal/mapscript"
	"mapassist/internal/musicscript"
	"mapassist/internal/reslist"
	"mapassist/internal/scripterr"
)

// Options configures an Orchestrator.
type Options struct {
	ReleaseRoot string
	// InstallRoot is a validated game install, or empty when none is usable.
	InstallRoot string
	MapName     string
	Params      mapscript.Params

	MusicExtension   string
	FallbackPlaylist []string

	Disallowed []string
	Ignore     []string
	IgnoreFile string

	// LockDir holds per-release lock files. Empty disables locking.
	LockDir string
}

// Orchestrator runs the release and full-check plans.
type Orchestrator struct {
	opts    Options
	index   *dirindex.Index
	music   *musicscript.Engine
	reslist *reslist.Engine
	logger  *slog.Logger
}

// New constructs an orchestrator. A nil index gets a fresh one; all engines
// share it so each distinct tree is scanned once.
func New(opts Options, index *dirindex.Index, logger *slog.Logger) *Orchestrator {
	logger = logging.NewComponentLogger(logger, "release")
	if index == nil {
		index = dirindex.New(logger)
	}
	if strings.TrimSpace(opts.MusicExtension) == "" {
		opts.MusicExtension = "mp3"
	}
	return &Orchestrator{
		opts:  opts,
		index: index,
		music: &musicscript.Engine{
			Index:     index,
			Extension: opts.MusicExtension,
			Fallback:  opts.FallbackPlaylist,
			Logger:    logger,
		},
		reslist: &reslist.Engine{
			Index:      index,
			Disallowed: opts.Disallowed,
			Ignore:     opts.Ignore,
			IgnoreFile: opts.IgnoreFile,
			Logger:     logger,
		},
		logger: logger,
	}
}

// Index returns the directory index shared by the engines.
func (o *Orchestrator) Index() *dirindex.Index {
	return o.index
}

// Layout returns the release layout.
func (o *Orchestrator) Layout() Layout {
	return Layout{Root: o.opts.ReleaseRoot, MapName: o.opts.MapName}
}

func (o *Orchestrator) installSoundDir() string {
	if strings.TrimSpace(o.opts.InstallRoot) == "" {
		return ""
	}
	return Layout{Root: o.opts.InstallRoot}.SoundDir()
}

func ensureRunID(ctx context.Context) (context.Context, string) {
	if id, ok := logging.RunIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return logging.WithRunID(ctx, id), id
}

// BuildOrValidate generates the dialect's document when it is absent and
// validates it otherwise.
func (o *Orchestrator) BuildOrValidate(ctx context.Context, d Dialect) Result {
	layout := o.Layout()
	path := layout.DocumentPath(d)
	result := Result{Dialect: d, Document: path}
	start := time.Now()
	logger := logging.WithContext(ctx, o.logger).With(
		logging.String(logging.FieldDialect, d.String()),
		logging.String(logging.FieldDocument, path),
	)

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	exists, err := fileutil.FileExists(path)
	if err != nil {
		result.Err = scripterr.IO("stat", path, err)
		o.logResult(logger, result)
		return result
	}

	if exists {
		result.Action = ActionValidated
		result.Warnings, result.Err = o.validate(d, path)
	} else {
		result.Action = ActionCreated
		result.Warnings, result.Err = o.generate(d, path)
	}
	result.Duration = time.Since(start)
	o.logResult(logger, result)
	return result
}

func (o *Orchestrator) generate(d Dialect, path string) ([]string, error) {
	layout := o.Layout()
	switch d {
	case MapScript:
		return nil, mapscript.GenerateFile(path, o.opts.Params)
	case MusicScript:
		res, err := o.music.GenerateFile(path, layout.SoundDir())
		return res.Warnings, err
	case Reslist:
		_, err := o.reslist.GenerateFile(path, layout.Root)
		return nil, err
	default:
		return nil, fmt.Errorf("unknown dialect %v", d)
	}
}

func (o *Orchestrator) validate(d Dialect, path string) ([]string, error) {
	layout := o.Layout()
	switch d {
	case MapScript:
		return nil, mapscript.ValidateFile(path)
	case MusicScript:
		res, err := o.music.ValidateFile(path, musicscript.Sources{
			InstallSoundDir: o.installSoundDir(),
			ReleaseSoundDir: layout.SoundDir(),
		})
		return res.Warnings, err
	case Reslist:
		_, err := o.reslist.ValidateFile(path, layout.Root, reslist.ModeRelease)
		return nil, err
	default:
		return nil, fmt.Errorf("unknown dialect %v", d)
	}
}

func (o *Orchestrator) logResult(logger *slog.Logger, result Result) {
	if result.Err != nil {
		logging.ErrorWithContext(logger, "document failed", "document_failed",
			logging.String("action", string(result.Action)),
			logging.String(logging.FieldErrorKind, result.ErrorKind()),
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, errorHint(result)),
		)
		return
	}
	logger.Info("document "+string(result.Action),
		logging.String(logging.FieldEventType, "document_"+string(result.Action)),
		logging.Duration("duration", result.Duration),
		logging.Int("warnings", len(result.Warnings)),
	)
}

func errorHint(result Result) string {
	switch result.ErrorKind() {
	case "format", "missing":
		return "fix the document or delete it to regenerate"
	case "reference":
		return "add the referenced files or remove the entries"
	case "reconcile":
		return "delete the reslist to regenerate it from the release tree"
	case "io":
		return "check file permissions and paths"
	default:
		return "check logs for details"
	}
}

// Run prepares the release. The map script and music script tasks run
// concurrently; the reslist task starts after both finish. The returned
// error is only set when the run could not start.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	ctx, runID := ensureRunID(ctx)
	report := Report{
		RunID:     runID,
		Mode:      ModeRelease,
		MapName:   o.opts.MapName,
		Root:      o.opts.ReleaseRoot,
		StartedAt: time.Now(),
	}
	logger := logging.WithContext(ctx, o.logger).With(logging.String(logging.FieldMap, o.opts.MapName))

	lock, err := acquireLock(o.opts.LockDir, o.opts.ReleaseRoot)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := lock.release(); err != nil {
			logger.Warn("failed to release lock", logging.Error(err))
		}
	}()

	logger.Info("release run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("root", o.opts.ReleaseRoot),
		logging.Bool("install", o.opts.InstallRoot != ""),
	)

	results := make([]Result, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0] = o.BuildOrValidate(ctx, MapScript)
	}()
	go func() {
		defer wg.Done()
		results[1] = o.BuildOrValidate(ctx, MusicScript)
	}()
	wg.Wait()

	results = append(results, o.BuildOrValidate(ctx, Reslist))
	report.Results = results
	report.FinishedAt = time.Now()

	logger.Info("release run finished",
		logging.String(logging.FieldEventType, "run_finish"),
		logging.Int("failures", report.Failures()),
		logging.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}
