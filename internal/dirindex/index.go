package dirindex

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/singleflight"

	"mapassist/internal/logging"
	"mapassist/internal/pathkey"
	"mapassist/internal/scripterr"
)

// Filter selects which files of a walk enter a snapshot.
type Filter struct {
	// Extension, when set, is the only extension kept.
	Extension string
	// Exclude lists extensions that are never kept.
	Exclude []string
	// Ignore holds doublestar patterns matched against normalized paths.
	Ignore []string
	// IgnoreFile names a gitignore-style file looked up at each root.
	IgnoreFile string
}

func (f Filter) canonical() (Filter, error) {
	out := Filter{
		Extension:  pathkey.CleanExt(f.Extension),
		IgnoreFile: strings.TrimSpace(f.IgnoreFile),
	}
	for _, ext := range f.Exclude {
		if ext = pathkey.CleanExt(ext); ext != "" {
			out.Exclude = append(out.Exclude, ext)
		}
	}
	for _, pattern := range f.Ignore {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return Filter{}, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
		out.Ignore = append(out.Ignore, pattern)
	}
	slices.Sort(out.Exclude)
	out.Exclude = slices.Compact(out.Exclude)
	slices.Sort(out.Ignore)
	out.Ignore = slices.Compact(out.Ignore)
	return out, nil
}

func (f Filter) accepts(normalized, raw string, gi *ignore.GitIgnore) bool {
	ext := pathkey.Ext(normalized)
	if f.Extension != "" && ext != f.Extension {
		return false
	}
	if ext != "" && slices.Contains(f.Exclude, ext) {
		return false
	}
	if f.IgnoreFile != "" && strings.EqualFold(path.Base(raw), f.IgnoreFile) {
		return false
	}
	for _, pattern := range f.Ignore {
		if ok, _ := doublestar.Match(pattern, normalized); ok {
			return false
		}
	}
	if gi != nil && gi.MatchesPath(raw) {
		return false
	}
	return true
}

// Key identifies one (roots, filter) combination.
type Key string

func keyFor(roots []string, f Filter) (Key, []string, error) {
	if len(roots) == 0 {
		return "", nil, errors.New("snapshot requires at least one root")
	}
	abs := make([]string, 0, len(roots))
	for _, root := range roots {
		resolved, err := filepath.Abs(filepath.Clean(root))
		if err != nil {
			return "", nil, fmt.Errorf("resolve root %q: %w", root, err)
		}
		abs = append(abs, resolved)
	}
	var b strings.Builder
	b.WriteString(strings.Join(abs, "\x00"))
	b.WriteString("\x01ext=")
	b.WriteString(f.Extension)
	b.WriteString("\x01exclude=")
	b.WriteString(strings.Join(f.Exclude, ","))
	b.WriteString("\x01ignore=")
	b.WriteString(strings.Join(f.Ignore, ","))
	b.WriteString("\x01ignorefile=")
	b.WriteString(f.IgnoreFile)
	return Key(b.String()), abs, nil
}

type entry struct {
	snap *Snapshot
	err  error
}

// Index memoizes directory snapshots for the lifetime of one run.
type Index struct {
	logger *slog.Logger
	group  singleflight.Group
	done   sync.Map
	walks  atomic.Int64
}

// New returns an empty index.
func New(logger *slog.Logger) *Index {
	return &Index{logger: logging.NewComponentLogger(logger, "dirindex")}
}

// Snapshot returns the memoized snapshot for roots under f, scanning the
// filesystem on the first request. Concurrent first requests share one scan.
// A failed scan is memoized as well.
func (ix *Index) Snapshot(roots []string, f Filter) (*Snapshot, error) {
	filter, err := f.canonical()
	if err != nil {
		return nil, err
	}
	key, abs, err := keyFor(roots, filter)
	if err != nil {
		return nil, err
	}
	if v, ok := ix.done.Load(key); ok {
		e := v.(*entry)
		return e.snap, e.err
	}
	v, _, _ := ix.group.Do(string(key), func() (any, error) {
		if v, ok := ix.done.Load(key); ok {
			return v, nil
		}
		snap, err := ix.scan(abs, filter)
		e := &entry{snap: snap, err: err}
		ix.done.Store(key, e)
		return e, nil
	})
	e := v.(*entry)
	return e.snap, e.err
}

// Walks reports how many filesystem scans the index has performed.
func (ix *Index) Walks() int64 {
	return ix.walks.Load()
}

func (ix *Index) scan(roots []string, f Filter) (*Snapshot, error) {
	ix.walks.Add(1)
	start := time.Now()
	set := make(map[string]struct{})
	for _, root := range roots {
		if err := walkRoot(root, f, set); err != nil {
			ix.logger.Debug("directory snapshot failed",
				logging.String("root", root),
				logging.Error(err),
			)
			return nil, err
		}
	}
	snap := newSnapshot(roots, set)
	ix.logger.Debug("directory snapshot built",
		logging.String("roots", strings.Join(roots, ", ")),
		logging.Int("entries", snap.Len()),
		logging.Duration("duration", time.Since(start)),
	)
	return snap, nil
}

func walkRoot(root string, f Filter, set map[string]struct{}) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return scripterr.IO("stat root", root, err)
	}
	if !info.IsDir() {
		return scripterr.IO("scan root", root, errors.New("not a directory"))
	}

	var gi *ignore.GitIgnore
	if f.IgnoreFile != "" {
		gi, err = loadIgnoreFile(filepath.Join(root, f.IgnoreFile))
		if err != nil {
			return err
		}
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return scripterr.IO("walk", p, err)
		}
		if d.IsDir() || !isRegular(p, d) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return scripterr.IO("walk", p, err)
		}
		raw := filepath.ToSlash(rel)
		normalized, err := pathkey.Relative(root, p)
		if err != nil {
			return scripterr.IO("walk", p, err)
		}
		if f.accepts(normalized, raw, gi) {
			set[normalized] = struct{}{}
		}
		return nil
	})
}

func isRegular(p string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func loadIgnoreFile(p string) (*ignore.GitIgnore, error) {
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, scripterr.IO("stat ignore file", p, err)
	}
	gi, err := ignore.CompileIgnoreFile(p)
	if err != nil {
		return nil, scripterr.IO("read ignore file", p, err)
	}
	return gi, nil
}
