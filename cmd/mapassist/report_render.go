package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mapassist/internal/preflight"
	"mapassist/internal/release"
)

func relativeTo(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func resultMessage(root string, r release.Result) string {
	doc := relativeTo(root, r.Document)
	if r.Action != release.ActionNone {
		doc = string(r.Action) + " " + doc
	}
	if r.Err != nil {
		return doc + ": " + r.Err.Error()
	}
	return doc
}

// printPreflight renders the preflight section. Passing checks are shown
// only in verbose mode.
func printPreflight(cmd *cobra.Command, verbose, colorize bool, results []preflight.Result) {
	out := cmd.OutOrStdout()
	var lines []string
	for _, r := range results {
		if r.Passed && !verbose {
			continue
		}
		lines = append(lines, renderStatusLine(r.Name, checkStatus(r), r.Detail, colorize))
	}
	if len(lines) == 0 {
		return
	}
	for _, line := range renderSectionHeader("Preflight", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)
}

func printReleaseReport(cmd *cobra.Command, verbose bool, checks []preflight.Result, report *release.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	printPreflight(cmd, verbose, colorize, checks)

	if len(report.Results) > 0 {
		title := report.MapName
		if title == "" {
			title = "Release"
		}
		for _, line := range renderSectionHeader(title, colorize) {
			fmt.Fprintln(out, line)
		}
		for _, r := range report.Results {
			fmt.Fprintln(out, renderStatusLine(r.Dialect.String(), r.Status(), resultMessage(report.Root, r), colorize))
			for _, w := range r.Warnings {
				fmt.Fprintln(out, renderDetailLine(w))
			}
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, summaryLine(report))
}

func summaryLine(report *release.Report) string {
	code := report.Failures()
	var line string
	switch {
	case report.Mode == release.ModeFullCheck:
		line = fmt.Sprintf("Checked %d documents: %d ok, %d warn, %d error",
			len(report.Results),
			report.Count(release.StatusOK),
			report.Count(release.StatusWarn),
			report.Count(release.StatusError),
		)
		if code != 0 {
			line += fmt.Sprintf(" (exit %#x)", code)
		}
	case report.Passed():
		line = "Release ready"
	default:
		line = fmt.Sprintf("Release check failed (exit %#x)", code)
	}
	if !report.StartedAt.IsZero() && !report.FinishedAt.IsZero() {
		line += fmt.Sprintf(" in %s", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	return line
}

// printFullCheckReport renders sweep results as a table. Clean documents are
// listed only in verbose mode.
func printFullCheckReport(cmd *cobra.Command, verbose bool, checks []preflight.Result, report *release.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	printPreflight(cmd, verbose, colorize, checks)

	if tbl := renderResultTable(report.Root, report.Results, verbose); tbl != "" {
		fmt.Fprintln(out, tbl)
	}
	fmt.Fprintln(out, summaryLine(report))
}
