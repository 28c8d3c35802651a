package release

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"mapassist/internal/scripterr"
)

// Dialect identifies one of the three release documents.
type Dialect int

const (
	MapScript Dialect = iota
	MusicScript
	Reslist
)

// Dialects lists every dialect in processing order.
var Dialects = []Dialect{MapScript, MusicScript, Reslist}

func (d Dialect) String() string {
	switch d {
	case MapScript:
		return "map_script"
	case MusicScript:
		return "music_script"
	case Reslist:
		return "reslist"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// ParseDialect maps a dialect name back to its value.
func ParseDialect(s string) (Dialect, error) {
	for _, d := range Dialects {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown dialect %q", s)
}

// Failure bits combined into Report.Failures and the process exit code.
const (
	FailPreflight   = 0x1
	FailMapScript   = 0x2
	FailMusicScript = 0x4
	FailReslist     = 0x8
)

// FailureBit returns the failure bit assigned to the dialect.
func (d Dialect) FailureBit() int {
	switch d {
	case MapScript:
		return FailMapScript
	case MusicScript:
		return FailMusicScript
	case Reslist:
		return FailReslist
	default:
		return 0
	}
}

// Action records what a task did with its document.
type Action string

const (
	ActionNone      Action = ""
	ActionCreated   Action = "created"
	ActionValidated Action = "validated"
)

// Status summarizes a Result.
type Status string

const (
	StatusOK    Status = "ok"
	StatusWarn  Status = "warn"
	StatusError Status = "error"
)

// Mode distinguishes release runs from install sweeps.
type Mode string

const (
	ModeRelease   Mode = "release"
	ModeFullCheck Mode = "fullcheck"
)

// Result is the outcome of one document task.
type Result struct {
	Dialect  Dialect
	Document string
	Action   Action
	Warnings []string
	Err      error
	Duration time.Duration
}

// Status classifies the result.
func (r Result) Status() Status {
	switch {
	case r.Err != nil:
		return StatusError
	case len(r.Warnings) > 0:
		return StatusWarn
	default:
		return StatusOK
	}
}

// ErrorKind returns the failure classification, or an empty string.
func (r Result) ErrorKind() string {
	return scripterr.Kind(r.Err)
}

// Report aggregates the results of one run.
type Report struct {
	RunID      string
	Mode       Mode
	MapName    string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
	// Preflight is set by the caller when a precondition failed.
	Preflight bool
}

// Failures returns the failure bitmask: one bit per dialect with at least
// one failed document, plus FailPreflight.
func (r *Report) Failures() int {
	mask := 0
	if r.Preflight {
		mask |= FailPreflight
	}
	for _, res := range r.Results {
		if res.Err != nil {
			mask |= res.Dialect.FailureBit()
		}
	}
	return mask
}

// Passed reports whether nothing failed.
func (r *Report) Passed() bool {
	return r.Failures() == 0
}

// Count returns how many results have the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status() == status {
			n++
		}
	}
	return n
}

// ByDialect returns the results for d.
func (r *Report) ByDialect(d Dialect) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Dialect == d {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) sortResults() {
	slices.SortStableFunc(r.Results, func(a, b Result) int {
		if a.Dialect != b.Dialect {
			return int(a.Dialect) - int(b.Dialect)
		}
		return strings.Compare(a.Document, b.Document)
	})
}
