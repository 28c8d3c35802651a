package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"mapassist/internal/preflight"
	"mapassist/internal/release"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type jsonCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type jsonResult struct {
	Dialect    string   `json:"dialect"`
	Document   string   `json:"document"`
	Action     string   `json:"action,omitempty"`
	Status     string   `json:"status"`
	Kind       string   `json:"kind,omitempty"`
	Error      string   `json:"error,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	DurationMS int64    `json:"duration_ms"`
}

type jsonReport struct {
	RunID      string       `json:"run_id,omitempty"`
	Mode       string       `json:"mode"`
	Map        string       `json:"map,omitempty"`
	Root       string       `json:"root,omitempty"`
	Failures   int          `json:"failures"`
	DurationMS int64        `json:"duration_ms"`
	Preflight  []jsonCheck  `json:"preflight,omitempty"`
	Results    []jsonResult `json:"results"`
}

func newJSONReport(report *release.Report, checks []preflight.Result) jsonReport {
	out := jsonReport{
		RunID:    report.RunID,
		Mode:     string(report.Mode),
		Map:      report.MapName,
		Root:     report.Root,
		Failures: report.Failures(),
		Results:  make([]jsonResult, 0, len(report.Results)),
	}
	if !report.StartedAt.IsZero() && !report.FinishedAt.IsZero() {
		out.DurationMS = report.FinishedAt.Sub(report.StartedAt).Milliseconds()
	}
	for _, c := range checks {
		status := "ok"
		if !c.Passed {
			status = "error"
			if c.Warn {
				status = "warn"
			}
		}
		out.Preflight = append(out.Preflight, jsonCheck{Name: c.Name, Status: status, Detail: c.Detail})
	}
	for _, r := range report.Results {
		entry := jsonResult{
			Dialect:    r.Dialect.String(),
			Document:   r.Document,
			Action:     string(r.Action),
			Status:     string(r.Status()),
			Kind:       r.ErrorKind(),
			Warnings:   r.Warnings,
			DurationMS: r.Duration.Round(time.Millisecond).Milliseconds(),
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		out.Results = append(out.Results, entry)
	}
	return out
}
