package reslist

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
	"mapassist/internal/scripterr"
)

const (
	rootBlock = "resources"
	fileValue = "file"
)

// Extension is the reslist file extension.
const Extension = "res"

// Mode selects how strictly a manifest is reconciled.
type Mode int

const (
	// ModeRelease requires every file in the tree to be declared.
	ModeRelease Mode = iota
	// ModeFullCheck only requires declared files to exist, since a shared
	// install holds files that belong to other maps.
	ModeFullCheck
)

func (m Mode) String() string {
	switch m {
	case ModeRelease:
		return "release"
	case ModeFullCheck:
		return "fullcheck"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DefaultDisallowed lists extensions that never belong in a manifest: the
// map binary, the manifest itself, and executables.
func DefaultDisallowed() []string {
	return []string{"bsp", Extension, "exe", "dll", "bat", "cmd", "com", "msi", "ps1", "sh"}
}

// Result summarizes a generated or validated manifest.
type Result struct {
	Entries        int
	Reconciliation Reconciliation
}

// Engine generates and validates reslist manifests.
type Engine struct {
	Index      *dirindex.Index
	Disallowed []string
	Ignore     []string
	IgnoreFile string
	Logger     *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	return logging.NewComponentLogger(e.Logger, "reslist")
}

func (e *Engine) disallowed() []string {
	if len(e.Disallowed) == 0 {
		return DefaultDisallowed()
	}
	return e.Disallowed
}

func (e *Engine) filter() dirindex.Filter {
	return dirindex.Filter{
		Exclude:    e.disallowed(),
		Ignore:     e.Ignore,
		IgnoreFile: e.IgnoreFile,
	}
}

// Generate writes a manifest declaring every distributable file under root.
func (e *Engine) Generate(w io.Writer, root string) (Result, error) {
	snap, err := e.Index.Snapshot([]string{root}, e.filter())
	if err != nil {
		return Result{}, err
	}
	paths := snap.Paths()
	if len(paths) == 0 {
		return Result{}, scripterr.Format(0, rootBlock, "release tree has no files to declare")
	}
	lines := make([]string, 0, len(paths)+3)
	lines = append(lines, kvgrammar.Quote(rootBlock), "{")
	for _, p := range paths {
		if !kvgrammar.Quotable(p) {
			return Result{}, scripterr.Reference(p, "path cannot be written as a quoted value")
		}
		lines = append(lines, "\t"+kvgrammar.Quote(p)+"\t"+kvgrammar.Quote(fileValue))
	}
	lines = append(lines, "}")
	if err := kvgrammar.WriteLines(w, lines); err != nil {
		return Result{}, scripterr.IO("write reslist", "", err)
	}
	e.logger().Debug("reslist generated", logging.Int("entries", len(paths)))
	return Result{Entries: len(paths)}, nil
}

// Validate parses a manifest and reconciles it against root. Failures are
// reported in order: disallowed entries, missing files, duplicates, and,
// outside ModeFullCheck, undeclared files.
func (e *Engine) Validate(r io.Reader, root string, mode Mode) (Result, error) {
	declared, err := parseEntries(r)
	if err != nil {
		return Result{}, err
	}
	snap, err := e.Index.Snapshot([]string{root}, e.filter())
	if err != nil {
		return Result{}, err
	}
	rec := Reconcile(declared, snap, e.disallowed())
	result := Result{Entries: len(declared), Reconciliation: rec}

	switch {
	case len(rec.Disallowed) > 0:
		return result, scripterr.References("manifest declares files that must not be distributed", rec.Disallowed)
	case len(rec.Missing) > 0:
		return result, scripterr.References("declared files do not exist", rec.Missing)
	case len(rec.Duplicates) > 0:
		return result, scripterr.References("files are declared more than once", rec.Duplicates)
	}
	if mode != ModeFullCheck && len(rec.Undeclared) > 0 {
		return result, scripterr.Undeclared(rec.Undeclared)
	}
	if mode == ModeFullCheck && len(rec.Undeclared) > 0 {
		e.logger().Debug("undeclared files ignored in full check", logging.Int("count", len(rec.Undeclared)))
	}
	return result, nil
}

func parseEntries(r io.Reader) ([]string, error) {
	doc, err := kvgrammar.ParseDocument(r, kvgrammar.ParseOptions{MaxDepth: 1})
	if err != nil {
		return nil, err
	}
	root, err := doc.Root(rootBlock)
	if err != nil {
		return nil, err
	}
	declared := make([]string, 0, len(root.Children))
	for _, entry := range root.Children {
		if !strings.EqualFold(entry.Value, fileValue) {
			return nil, scripterr.Format(entry.Line, entry.Key, fmt.Sprintf("expected value %q", fileValue))
		}
		if strings.TrimSpace(entry.Key) == "" {
			return nil, scripterr.Format(entry.Line, rootBlock, "entry has an empty path")
		}
		declared = append(declared, entry.Key)
	}
	return declared, nil
}

// GenerateFile writes a manifest for root to path.
func (e *Engine) GenerateFile(path, root string) (Result, error) {
	var buf bytes.Buffer
	result, err := e.Generate(&buf, root)
	if err != nil {
		return Result{}, scripterr.InDocument(err, path)
	}
	err = fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	if err != nil {
		return Result{}, scripterr.IO("write reslist", path, err)
	}
	return result, nil
}

// ValidateFile validates the manifest stored at path against root.
func (e *Engine) ValidateFile(path, root string, mode Mode) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, scripterr.IO("open reslist", path, err)
	}
	defer f.Close()
	result, err := e.Validate(f, root, mode)
	return result, scripterr.InDocument(err, path)
}
