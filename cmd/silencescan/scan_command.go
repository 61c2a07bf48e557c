package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"silencescan/internal/config"
	"silencescan/internal/logging"
	"silencescan/internal/media/pcm"
	"silencescan/internal/metrics"
	"silencescan/internal/preflight"
	"silencescan/internal/report"
	"silencescan/internal/scan"
	"silencescan/internal/scanstore"
)

type scanFlags struct {
	input      string
	output     string
	threshold  float64
	minSilence int
	workers    int
	noCache    bool
	json       bool
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the input directory and write the silence report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyScanFlags(cmd, cfg, flags); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
				return fmt.Errorf("preflight failed: %s", preflight.Summarize(failed))
			}

			decoder, err := pcm.NewDecoder(cfg)
			if err != nil {
				return err
			}

			var store *scanstore.Store
			if opened, err := ctx.openStore(cfg); err != nil {
				logging.WarnWithContext(logger, "state database unavailable", "store_unavailable",
					logging.Error(err),
					logging.String(logging.FieldImpact, "run history and result cache disabled"),
					logging.String(logging.FieldErrorHint, "delete "+cfg.StateDBPath()+" if its schema is outdated"),
				)
			} else {
				store = opened
				defer store.Close()
			}

			var recorder *metrics.Recorder
			if cfg.Metrics.Textfile != "" {
				recorder = metrics.NewRecorder()
			}

			res, err := scan.Run(cmd.Context(), cfg, scan.Options{
				Decoder: decoder,
				Store:   store,
				Metrics: recorder,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			if flags.json {
				return writeJSON(cmd, newScanJSON(res))
			}
			out := cmd.OutOrStdout()
			if !res.Summary.HasSilence() {
				fmt.Fprintln(out, report.NoSilenceNotice)
			}
			fmt.Fprintln(out, renderKeyValues(summaryPairs(res), shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "Directory of videos to scan (overrides paths.input_dir)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Report file (overrides paths.report_file)")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "Silence threshold in dBFS (overrides scan.threshold_dbfs)")
	cmd.Flags().IntVar(&flags.minSilence, "min-silence", 0, "Minimum silence length in ms (overrides scan.min_silence_ms)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Files decoded in parallel (overrides scan.workers)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Decode every file even when a cached result exists")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the summary as JSON")
	return cmd
}

func applyScanFlags(cmd *cobra.Command, cfg *config.Config, flags scanFlags) error {
	changed := cmd.Flags().Changed
	if changed("input") {
		expanded, err := config.ExpandPath(flags.input)
		if err != nil {
			return err
		}
		cfg.Paths.InputDir = expanded
	}
	if changed("output") {
		expanded, err := config.ExpandPath(flags.output)
		if err != nil {
			return err
		}
		cfg.Paths.ReportFile = expanded
	}
	if changed("threshold") {
		cfg.Scan.ThresholdDBFS = flags.threshold
	}
	if changed("min-silence") {
		cfg.Scan.MinSilenceMs = flags.minSilence
	}
	if changed("workers") {
		cfg.Scan.Workers = flags.workers
	}
	if flags.noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func summaryPairs(res scan.Result) [][2]string {
	s := res.Summary
	pairs := [][2]string{
		{"Videos", formatCount(s.VideoCount)},
		{"With silence", formatCount(s.WithTrailingSilence)},
		{"Without silence", formatCount(s.WithoutTrailingSilence)},
		{"Failed", formatCount(s.FailedCount())},
	}
	for _, kind := range s.FailureKinds() {
		pairs = append(pairs, [2]string{"  " + kindLabel(kind), formatCount(s.FailureCounts[kind])})
	}
	if s.Stats != nil {
		pairs = append(pairs,
			[2]string{"Average silence", report.FormatAverage(s.Stats.Average) + " ms"},
			[2]string{"Max silence", formatMs(s.Stats.Max)},
			[2]string{"Min silence", formatMs(s.Stats.Min)},
			[2]string{"Total silence", formatMs(s.Stats.Total)},
		)
	}
	if res.CacheHits > 0 {
		pairs = append(pairs, [2]string{"Cache hits", formatCount(res.CacheHits)})
	}
	pairs = append(pairs,
		[2]string{"Report", dashIfEmpty(res.ReportPath)},
		[2]string{"Elapsed", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond).String()},
	)
	return pairs
}

type scanJSON struct {
	RunID          string         `json:"run_id"`
	Videos         int            `json:"videos"`
	WithSilence    int            `json:"with_silence"`
	WithoutSilence int            `json:"without_silence"`
	Failed         map[string]int `json:"failed"`
	FailedFiles    []failedJSON   `json:"failed_files,omitempty"`
	Stats          *statsJSON     `json:"stats"`
	CacheHits      int            `json:"cache_hits"`
	ReportPath     string         `json:"report_path,omitempty"`
	Notice         string         `json:"notice,omitempty"`
}

type failedJSON struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type statsJSON struct {
	AverageMs float64 `json:"average_ms"`
	MaxMs     int64   `json:"max_ms"`
	MinMs     int64   `json:"min_ms"`
	TotalMs   int64   `json:"total_ms"`
}

func newScanJSON(res scan.Result) scanJSON {
	s := res.Summary
	out := scanJSON{
		RunID:          res.RunID,
		Videos:         s.VideoCount,
		WithSilence:    s.WithTrailingSilence,
		WithoutSilence: s.WithoutTrailingSilence,
		Failed:         s.FailureCounts,
		CacheHits:      res.CacheHits,
		ReportPath:     res.ReportPath,
	}
	for _, f := range s.Failures {
		out.FailedFiles = append(out.FailedFiles, failedJSON{Path: f.Path, Kind: f.Kind, Error: f.Err.Error()})
	}
	if s.Stats != nil {
		out.Stats = &statsJSON{
			AverageMs: s.Stats.Average,
			MaxMs:     s.Stats.Max,
			MinMs:     s.Stats.Min,
			TotalMs:   s.Stats.Total,
		}
	} else {
		out.Notice = report.NoSilenceNotice
	}
	return out
}
