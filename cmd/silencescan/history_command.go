package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"silencescan/internal/scanstore"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous scan runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore(cfg)
			if err != nil {
				return fmt.Errorf("open state database: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, historyJSON(runs))
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			headers := []string{"Run", "Started", "Videos", "With", "Without", "Failed", "Total silence", "Report"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, historyRow(run))
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func historyRow(run scanstore.Run) []string {
	if run.FinishedAt.IsZero() {
		return []string{shortID(run.ID), run.StartedAt.Local().Format(time.DateTime), "-", "-", "-", "-", "-", "(incomplete)"}
	}
	return []string{
		shortID(run.ID),
		run.StartedAt.Local().Format(time.DateTime),
		formatCount(run.VideoCount),
		formatCount(run.WithSilence),
		formatCount(run.WithoutSilence),
		formatCount(run.Failed),
		formatMs(run.TotalSilenceMs),
		dashIfEmpty(run.ReportPath),
	}
}

type runJSON struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	InputDir       string     `json:"input_dir"`
	ThresholdDBFS  float64    `json:"threshold_dbfs"`
	MinSilenceMs   int        `json:"min_silence_ms"`
	Videos         int        `json:"videos"`
	WithSilence    int        `json:"with_silence"`
	WithoutSilence int        `json:"without_silence"`
	Failed         int        `json:"failed"`
	TotalSilenceMs int64      `json:"total_silence_ms"`
	ReportPath     string     `json:"report_path,omitempty"`
}

func historyJSON(runs []scanstore.Run) []runJSON {
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		item := runJSON{
			ID:             run.ID,
			StartedAt:      run.StartedAt,
			InputDir:       run.InputDir,
			ThresholdDBFS:  run.ThresholdDBFS,
			MinSilenceMs:   run.MinSilenceMs,
			Videos:         run.VideoCount,
			WithSilence:    run.WithSilence,
			WithoutSilence: run.WithoutSilence,
			Failed:         run.Failed,
			TotalSilenceMs: run.TotalSilenceMs,
			ReportPath:     run.ReportPath,
		}
		if !run.FinishedAt.IsZero() {
			finished := run.FinishedAt
			item.FinishedAt = &finished
		}
		out = append(out, item)
	}
	return out
}
