package musicscript

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"mapassist/internal/dirindex"
	"mapassist/internal/fileutil"
	"mapassist/internal/kvgrammar"
	"mapassist/internal/logging"
	"mapassist/internal/pathkey"
	"mapassist/internal/scripterr"
)

const (
	rootBlock = "music"
	fileKey   = "file"
	musicDir  = "music/"
)

// Sources are the sound directories a music script may reference.
type Sources struct {
	// InstallSoundDir is the shared game install's sound directory. Empty when
	// no valid install is available.
	InstallSoundDir string
	// ReleaseSoundDir is the map package's own sound directory.
	ReleaseSoundDir string
}

// Result summarizes a generated or validated music script.
type Result struct {
	Tracks       []string
	FromFallback bool
	Warnings     []string
}

// Engine generates and validates music scripts.
type Engine struct {
	Index     *dirindex.Index
	Extension string
	Fallback  []string
	Logger    *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	return logging.NewComponentLogger(e.Logger, "musicscript")
}

func (e *Engine) filter() dirindex.Filter {
	return dirindex.Filter{Extension: e.Extension}
}

// Generate writes a playlist of every track under the release's music
// directory, or the configured fallback playlist when there are none.
func (e *Engine) Generate(w io.Writer, releaseSoundDir string) (Result, error) {
	snap, err := e.Index.Snapshot([]string{releaseSoundDir}, e.filter())
	if err != nil {
		return Result{}, err
	}
	var result Result
	for _, p := range snap.Paths() {
		if strings.HasPrefix(p, musicDir) {
			result.Tracks = append(result.Tracks, p)
		}
	}
	if len(result.Tracks) == 0 {
		for _, p := range e.Fallback {
			if p = pathkey.Declared(p); p != "" {
				result.Tracks = append(result.Tracks, p)
			}
		}
		result.FromFallback = true
		result.Warnings = append(result.Warnings, "no custom music found; using the fallback playlist")
		logging.WarnWithContext(e.logger(), "music script uses fallback playlist", "music_fallback",
			logging.String("sound_dir", releaseSoundDir),
			logging.String(logging.FieldErrorHint, "add tracks under sound/music to give the map its own playlist"),
			logging.String(logging.FieldImpact, "the map plays the default soundtrack"),
		)
	}
	if len(result.Tracks) == 0 {
		return Result{}, scripterr.Format(0, rootBlock, "no tracks found and no fallback playlist configured")
	}

	lines := []string{kvgrammar.Quote(rootBlock), "{"}
	for _, track := range result.Tracks {
		if !kvgrammar.Quotable(track) {
			return Result{}, scripterr.Reference(track, "path cannot be written as a quoted value")
		}
		lines = append(lines, "\t"+kvgrammar.Quote(fileKey)+"\t"+kvgrammar.Quote(track))
	}
	lines = append(lines, "}")
	if err := kvgrammar.WriteLines(w, lines); err != nil {
		return Result{}, scripterr.IO("write music script", "", err)
	}
	return result, nil
}

type track struct {
	path string
	line int
}

// Validate checks structure, track extensions, and that every track exists in
// the install or release sound directory. Existence is not checked when no
// install sound directory is known; a warning is returned instead.
func (e *Engine) Validate(r io.Reader, src Sources) (Result, error) {
	doc, err := kvgrammar.ParseDocument(r, kvgrammar.ParseOptions{MaxDepth: 2})
	if err != nil {
		return Result{}, err
	}
	root, err := doc.Root(rootBlock)
	if err != nil {
		return Result{}, err
	}
	tracks, err := collectTracks(root.Children)
	if err != nil {
		return Result{}, err
	}

	result := Result{}
	ext := pathkey.CleanExt(e.Extension)
	for _, t := range tracks {
		if !pathkey.HasExt(t.path, ext) {
			return Result{}, scripterr.Reference(t.path, fmt.Sprintf("line %d: music tracks must be .%s files", t.line, ext))
		}
		result.Tracks = append(result.Tracks, t.path)
	}

	if strings.TrimSpace(src.InstallSoundDir) == "" {
		result.Warnings = append(result.Warnings, "no game install available; skipped the track existence check")
		logging.WarnWithContext(e.logger(), "music track existence not checked", "music_existence_skipped",
			logging.Int("tracks", len(tracks)),
			logging.String(logging.FieldErrorHint, "pass the game install directory to verify tracks"),
			logging.String(logging.FieldImpact, "missing tracks will not be detected"),
		)
		return result, nil
	}

	install, err := e.Index.Snapshot([]string{src.InstallSoundDir}, e.filter())
	if err != nil {
		return Result{}, err
	}
	release, err := e.Index.Snapshot([]string{src.ReleaseSoundDir}, e.filter())
	if err != nil {
		return Result{}, err
	}
	var missing []string
	for _, t := range tracks {
		key := pathkey.Declared(t.path)
		if !install.Contains(key) && !release.Contains(key) {
			missing = append(missing, t.path)
		}
	}
	if len(missing) > 0 {
		return Result{}, scripterr.References("music tracks not found in the install or release sound directory", missing)
	}
	return result, nil
}

func collectTracks(entries []kvgrammar.Entry) ([]track, error) {
	var out []track
	for _, entry := range entries {
		if entry.Block {
			sub, err := collectTracks(entry.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		if !strings.EqualFold(entry.Key, fileKey) {
			return nil, scripterr.Format(entry.Line, entry.Key, fmt.Sprintf("expected %q entries", fileKey))
		}
		if err := kvgrammar.Text.Check(entry.Line, entry.Key, strings.TrimSpace(entry.Value)); err != nil {
			return nil, err
		}
		out = append(out, track{path: entry.Value, line: entry.Line})
	}
	return out, nil
}

// GenerateFile writes a music script to path.
func (e *Engine) GenerateFile(path, releaseSoundDir string) (Result, error) {
	var buf bytes.Buffer
	result, err := e.Generate(&buf, releaseSoundDir)
	if err != nil {
		return Result{}, scripterr.InDocument(err, path)
	}
	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	if err != nil {
		return Result{}, scripterr.IO("write music script", path, err)
	}
	return result, nil
}

// ValidateFile validates the music script stored at path.
func (e *Engine) ValidateFile(path string, src Sources) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, scripterr.IO("open music script", path, err)
	}
	defer f.Close()
	result, err := e.Validate(f, src)
	return result, scripterr.InDocument(err, path)
}
