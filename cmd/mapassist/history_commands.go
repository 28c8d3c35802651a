package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mapassist/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.wantsJSON() {
				return writeJSON(cmd, jsonRuns(runs))
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRunTable(runs))
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of runs to list")
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the documents checked by one run",
		Long:  "Shows one run. The id may be any unique prefix of the run id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("run %q not found", args[0])
			}
			if err != nil {
				return err
			}
			if ctx.wantsJSON() {
				return writeJSON(cmd, jsonRun(run, true))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:      %s\n", run.ID)
			fmt.Fprintf(out, "Mode:     %s\n", run.Mode)
			fmt.Fprintf(out, "Map:      %s\n", dashIfEmpty(run.MapName))
			fmt.Fprintf(out, "Root:     %s\n", run.Root)
			fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "Duration: %s\n", run.Duration().Round(time.Millisecond))
			fmt.Fprintf(out, "Exit:     %#x\n", run.Failures)
			if len(run.Results) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderRunResultTable(run))
			return nil
		},
	}
}

func requireHistory(ctx *commandContext) (*history.Store, error) {
	store, err := ctx.openHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("run history is disabled (history.enabled = false)")
	}
	return store, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

type jsonHistoryResult struct {
	Dialect    string `json:"dialect"`
	Document   string `json:"document"`
	Action     string `json:"action,omitempty"`
	Status     string `json:"status"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type jsonHistoryRun struct {
	ID         string              `json:"id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Mode       string              `json:"mode"`
	Map        string              `json:"map,omitempty"`
	Root       string              `json:"root"`
	Failures   int                 `json:"failures"`
	Results    []jsonHistoryResult `json:"results,omitempty"`
}

func jsonRun(run history.Run, withResults bool) jsonHistoryRun {
	out := jsonHistoryRun{
		ID:         run.ID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Mode:       run.Mode,
		Map:        run.MapName,
		Root:       run.Root,
		Failures:   run.Failures,
	}
	if withResults {
		for _, r := range run.Results {
			out.Results = append(out.Results, jsonHistoryResult{
				Dialect:    r.Dialect,
				Document:   r.Document,
				Action:     r.Action,
				Status:     r.Status,
				Kind:       r.Kind,
				Message:    r.Message,
				DurationMS: r.Duration.Milliseconds(),
			})
		}
	}
	return out
}

func jsonRuns(runs []history.Run) []jsonHistoryRun {
	out := make([]jsonHistoryRun, 0, len(runs))
	for _, run := range runs {
		out = append(out, jsonRun(run, false))
	}
	return out
}

