package preflight

import (
	"mapassist/internal/mapscript"
)

// Result reports the outcome of a single preflight check. A result that did
// not pass but carries Warn is advisory and does not block a run.
type Result struct {
	Name   string
	Passed bool
	Warn   bool
	Detail string
}

// Blocking reports whether the result must stop a run.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Warn
}

// Release describes what a release run needs checked before it starts.
type Release struct {
	Root        string
	MapName     string
	InstallRoot string
	Params      mapscript.Params
}

// RunRelease executes every check a single-map release depends on.
func RunRelease(rel Release) []Result {
	results := CheckRelease(rel.Root, rel.MapName)
	results = append(results, CheckDirectoryAccess("Release directory access", rel.Root))
	results = append(results, CheckInstall(rel.InstallRoot, false))
	results = append(results, CheckParams(rel.Params)...)
	return results
}

// RunFullCheck executes the checks a fullcheck sweep depends on. The install
// is the subject of the sweep so it must be valid.
func RunFullCheck(installRoot string) []Result {
	return []Result{CheckInstall(installRoot, true)}
}

// Usable reports whether no result blocks the run.
func Usable(results []Result) bool {
	for _, r := range results {
		if r.Blocking() {
			return false
		}
	}
	return true
}

// InstallUsable reports whether the install check in results passed, meaning
// the install tree can be consulted for existence checks.
func InstallUsable(results []Result) bool {
	for _, r := range results {
		if r.Name == InstallCheckName {
			return r.Passed
		}
	}
	return false
}
