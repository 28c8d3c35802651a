package dirindex

import (
	"slices"
)

// Snapshot is an immutable set of normalized paths found under one or more
// roots at scan time.
type Snapshot struct {
	roots []string
	paths []string
	set   map[string]struct{}
}

func newSnapshot(roots []string, set map[string]struct{}) *Snapshot {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return &Snapshot{roots: slices.Clone(roots), paths: paths, set: set}
}

// Contains reports whether the normalized path p was present.
func (s *Snapshot) Contains(p string) bool {
	if s == nil {
		return false
	}
	_, ok := s.set[p]
	return ok
}

// Len returns the number of paths in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Paths returns the sorted normalized paths.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.paths)
}

// Roots returns the absolute roots the snapshot was built from.
func (s *Snapshot) Roots() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.roots)
}
