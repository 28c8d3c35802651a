package reslist

import (
	"slices"

	"mapassist/internal/dirindex"
	"mapassist/internal/pathkey"
)

// Reconciliation compares declared manifest entries with the files found on
// disk. All sets are normalized paths in sorted order.
type Reconciliation struct {
	// Missing entries are declared but absent on disk.
	Missing []string
	// Undeclared files are on disk but absent from the manifest.
	Undeclared []string
	// Duplicates are declared more than once.
	Duplicates []string
	// Disallowed entries carry an extension that must never ship in a manifest.
	Disallowed []string
}

// Ready reports whether the manifest matches the tree exactly.
func (r Reconciliation) Ready() bool {
	return len(r.Missing) == 0 && len(r.Undeclared) == 0 && len(r.Duplicates) == 0 && len(r.Disallowed) == 0
}

// Reconcile computes the two-way difference between declared entries and snap.
func Reconcile(declared []string, snap *dirindex.Snapshot, disallowed []string) Reconciliation {
	banned := make(map[string]struct{}, len(disallowed))
	for _, ext := range disallowed {
		banned[pathkey.CleanExt(ext)] = struct{}{}
	}

	var r Reconciliation
	counts := make(map[string]int, len(declared))
	for _, raw := range declared {
		p := pathkey.Declared(raw)
		counts[p]++
		if counts[p] != 1 {
			if counts[p] == 2 {
				r.Duplicates = append(r.Duplicates, p)
			}
			continue
		}
		if _, bad := banned[pathkey.Ext(p)]; bad {
			r.Disallowed = append(r.Disallowed, p)
			continue
		}
		if !snap.Contains(p) {
			r.Missing = append(r.Missing, p)
		}
	}
	for _, p := range snap.Paths() {
		if _, ok := counts[p]; !ok {
			r.Undeclared = append(r.Undeclared, p)
		}
	}
	slices.Sort(r.Missing)
	slices.Sort(r.Duplicates)
	slices.Sort(r.Disallowed)
	return r
}
