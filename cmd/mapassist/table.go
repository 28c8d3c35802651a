package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mapassist/internal/history"
	"mapassist/internal/release"
)

// detailWidth wraps error and warning text, which can list many paths.
const detailWidth = 60

type tableColumn struct {
	header   string
	align    text.Align
	maxWidth int
}

func newTable(columns ...tableColumn) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.header
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       col.align,
			AlignHeader: text.AlignLeft,
		}
		if col.maxWidth > 0 {
			configs[i].WidthMax = col.maxWidth
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)
	return tw
}

// resultDetail is the error of a failed result, or its warnings.
func resultDetail(r release.Result) string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case len(r.Warnings) > 0:
		return strings.Join(r.Warnings, "; ")
	default:
		return ""
	}
}

// renderResultTable lists document results with paths relative to root.
// Clean documents are listed only when verbose; an empty string means there
// was nothing to list.
func renderResultTable(root string, results []release.Result, verbose bool) string {
	tw := newTable(
		tableColumn{header: "Dialect"},
		tableColumn{header: "Document"},
		tableColumn{header: "Status"},
		tableColumn{header: "Detail", maxWidth: detailWidth},
	)
	listed := 0
	for _, r := range results {
		status := r.Status()
		if status == release.StatusOK && !verbose {
			continue
		}
		tw.AppendRow(table.Row{
			r.Dialect.String(),
			relativeTo(root, r.Document),
			strings.ToUpper(string(status)),
			resultDetail(r),
		})
		listed++
	}
	if listed == 0 {
		return ""
	}
	return tw.Render()
}

// renderRunTable lists ledger runs, newest first as given.
func renderRunTable(runs []history.Run) string {
	tw := newTable(
		tableColumn{header: "ID"},
		tableColumn{header: "Started"},
		tableColumn{header: "Mode"},
		tableColumn{header: "Map"},
		tableColumn{header: "Exit", align: text.AlignRight},
		tableColumn{header: "Duration", align: text.AlignRight},
	)
	for _, run := range runs {
		tw.AppendRow(table.Row{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Mode,
			dashIfEmpty(run.MapName),
			fmt.Sprintf("%#x", run.Failures),
			run.Duration().Round(time.Millisecond).String(),
		})
	}
	return tw.Render()
}

// renderRunResultTable lists the documents recorded for one run.
func renderRunResultTable(run history.Run) string {
	tw := newTable(
		tableColumn{header: "Dialect"},
		tableColumn{header: "Document"},
		tableColumn{header: "Action"},
		tableColumn{header: "Status"},
		tableColumn{header: "Detail", maxWidth: detailWidth},
	)
	for _, r := range run.Results {
		tw.AppendRow(table.Row{
			r.Dialect,
			relativeTo(run.Root, r.Document),
			dashIfEmpty(r.Action),
			strings.ToUpper(r.Status),
			r.Message,
		})
	}
	return tw.Render()
}
