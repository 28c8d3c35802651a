package history

import (
	"time"

	"mapassist/internal/release"
)

// Run is one recorded release or full-check run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Mode       string
	MapName    string
	Root       string
	Failures   int
	Results    []Result
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Result is one document outcome within a run.
type Result struct {
	Dialect  string
	Document string
	Action   string
	Status   string
	Kind     string
	Message  string
	Duration time.Duration
}

// FromReport converts an orchestrator report into a ledger run.
func FromReport(report *release.Report) Run {
	run := Run{
		ID:         report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Mode:       string(report.Mode),
		MapName:    report.MapName,
		Root:       report.Root,
		Failures:   report.Failures(),
		Results:    make([]Result, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		row := Result{
			Dialect:  res.Dialect.String(),
			Document: res.Document,
			Action:   string(res.Action),
			Status:   string(res.Status()),
			Kind:     res.ErrorKind(),
			Duration: res.Duration,
		}
		switch {
		case res.Err != nil:
			row.Message = res.Err.Error()
		case len(res.Warnings) > 0:
			row.Message = res.Warnings[0]
		}
		run.Results = append(run.Results, row)
	}
	return run
}
