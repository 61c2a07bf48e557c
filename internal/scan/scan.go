package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"silencescan/internal/aggregate"
	"silencescan/internal/config"
	"silencescan/internal/failures"
	"silencescan/internal/logging"
	"silencescan/internal/media/pcm"
	"silencescan/internal/metrics"
	"silencescan/internal/report"
	"silencescan/internal/scanstore"
	"silencescan/internal/silence"
)

// Options carries the collaborators of a run. Store and Metrics are optional.
type Options struct {
	Decoder pcm.Decoder
	Store   *scanstore.Store
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Result describes a completed run.
type Result struct {
	RunID      string
	Candidates int
	CacheHits  int
	Summary    aggregate.Summary
	// ReportPath is empty when no file ended in silence and no report was written.
	ReportPath string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Run scans every candidate in the input directory and writes the report.
func Run(ctx context.Context, cfg *config.Config, opts Options) (Result, error) {
	if cfg == nil {
		return Result{}, failures.Wrap(failures.ErrConfiguration, "scan", "run", "nil config", nil)
	}
	if opts.Decoder == nil {
		return Result{}, failures.Wrap(failures.ErrConfiguration, "scan", "run", "decoder required", nil)
	}

	res := Result{RunID: uuid.NewString(), StartedAt: time.Now()}
	ctx = logging.WithRunID(ctx, res.RunID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "scan"))

	candidates, err := ListCandidates(cfg)
	if err != nil {
		return Result{}, err
	}
	res.Candidates = len(candidates)

	r := &runner{
		cfg:     cfg,
		decoder: opts.Decoder,
		store:   opts.Store,
		metrics: opts.Metrics,
		logger:  logger,
		runID:   res.RunID,
		params: silence.Params{
			ThresholdDBFS: cfg.Scan.ThresholdDBFS,
			MinRunMs:      cfg.Scan.MinSilenceMs,
			WindowMs:      cfg.Scan.WindowMs,
		},
	}
	r.paramsKey = paramsKey(cfg, opts.Decoder)

	if r.store != nil {
		err := r.store.BeginRun(ctx, scanstore.Run{
			ID:            res.RunID,
			StartedAt:     res.StartedAt,
			InputDir:      cfg.Paths.InputDir,
			ThresholdDBFS: cfg.Scan.ThresholdDBFS,
			MinSilenceMs:  cfg.Scan.MinSilenceMs,
		})
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "store_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run is not recorded and the result cache is skipped"),
				logging.String(logging.FieldErrorHint, "delete the state database if its schema is outdated"),
			)
			r.store = nil
		}
	}

	logger.Info("scan started",
		logging.String("input_dir", cfg.Paths.InputDir),
		logging.Int("candidates", len(candidates)),
		logging.Float64("threshold_dbfs", cfg.Scan.ThresholdDBFS),
		logging.Int("min_silence_ms", cfg.Scan.MinSilenceMs),
		logging.Int("workers", cfg.Scan.Workers),
		logging.String("decoder", opts.Decoder.Name()),
	)

	agg := r.scanAll(ctx, candidates)
	if err := ctx.Err(); err != nil {
		logger.Warn("scan canceled", logging.Error(err))
		return Result{}, err
	}

	res.Summary = agg.Finalize()
	res.CacheHits = int(r.cacheHits.Load())

	if res.Summary.HasSilence() {
		if err := report.Write(cfg.Paths.ReportFile, res.Summary); err != nil {
			logging.ErrorWithContext(logger, "report write failed", "report_write_failed",
				logging.Error(err),
				logging.String("path", cfg.Paths.ReportFile),
				logging.String(logging.FieldErrorHint, "check that the report directory is writable and not locked by another scan"),
			)
			return Result{}, err
		}
		res.ReportPath = cfg.Paths.ReportFile
		logger.Info("report written", logging.String("path", res.ReportPath))
	} else {
		logger.Info(report.NoSilenceNotice)
	}

	res.FinishedAt = time.Now()
	if r.store != nil {
		err := r.store.FinishRun(ctx, scanstore.Run{
			ID:             res.RunID,
			FinishedAt:     res.FinishedAt,
			VideoCount:     res.Summary.VideoCount,
			WithSilence:    res.Summary.WithTrailingSilence,
			WithoutSilence: res.Summary.WithoutTrailingSilence,
			Failed:         res.Summary.FailedCount(),
			TotalSilenceMs: totalSilence(res.Summary),
			ReportPath:     res.ReportPath,
		})
		if err != nil {
			logging.WarnWithContext(logger, "failed to record run totals", "store_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "history shows this run as unfinished"),
			)
		}
	}

	elapsed := res.FinishedAt.Sub(res.StartedAt)
	r.metrics.RecordRun(elapsed, res.FinishedAt)
	if err := r.metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logging.ErrorWithContext(logger, "metrics textfile write failed", "metrics_write_failed",
			logging.Error(err),
			logging.String("path", cfg.Metrics.Textfile),
			logging.String(logging.FieldErrorHint, "check metrics.textfile points into a writable directory"),
		)
		return Result{}, err
	}

	logger.Info("scan completed",
		logging.Int("videos", res.Summary.VideoCount),
		logging.Int("with_silence", res.Summary.WithTrailingSilence),
		logging.Int("without_silence", res.Summary.WithoutTrailingSilence),
		logging.Int("failed", res.Summary.FailedCount()),
		logging.Int("cache_hits", res.CacheHits),
		logging.Duration("elapsed", elapsed),
	)
	return res, nil
}

type runner struct {
	cfg       *config.Config
	decoder   pcm.Decoder
	store     *scanstore.Store
	metrics   *metrics.Recorder
	logger    *slog.Logger
	runID     string
	params    silence.Params
	paramsKey string
	cacheHits atomic.Int64
}

func (r *runner) scanAll(ctx context.Context, paths []string) *aggregate.Aggregator {
	workers := max(1, min(r.cfg.Scan.Workers, len(paths)))
	if workers == 1 {
		agg := &aggregate.Aggregator{}
		for _, path := range paths {
			if ctx.Err() != nil {
				break
			}
			r.scanOne(ctx, agg, path)
		}
		return agg
	}

	jobs := make(chan string)
	partials := make([]*aggregate.Aggregator, workers)
	var wg sync.WaitGroup
	for i := range partials {
		partials[i] = &aggregate.Aggregator{}
		wg.Add(1)
		go func(agg *aggregate.Aggregator) {
			defer wg.Done()
			for path := range jobs {
				r.scanOne(ctx, agg, path)
			}
		}(partials[i])
	}

feed:
	for _, path := range paths {
		select {
		case jobs <- path:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	merged := &aggregate.Aggregator{}
	for _, agg := range partials {
		merged.Merge(agg)
	}
	return merged
}

func (r *runner) scanOne(ctx context.Context, agg *aggregate.Aggregator, path string) {
	if ctx.Err() != nil {
		return
	}
	fileCtx := logging.WithFile(ctx, path)
	logger := logging.WithContext(fileCtx, r.logger)
	started := time.Now()

	key, cacheable := r.cacheKey(path)
	if cacheable {
		cached, ok, err := r.store.LookupResult(ctx, key)
		if err != nil {
			logger.Warn("result cache lookup failed", logging.Error(err))
		} else if ok {
			r.cacheHits.Add(1)
			agg.Add(cached)
			r.metrics.RecordResult(cached, time.Since(started), true)
			logger.Debug("cached result reused",
				logging.Bool("trailing_silence", cached.Trailing),
				logging.Int64("silence_ms", cached.Interval.LengthMs()),
			)
			return
		}
	}

	result, intervals, err := decodeWithTimeout(fileCtx, r.cfg.DecodeTimeout(), r.decoder, path, r.params)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		agg.AddFailure(path, err)
		r.metrics.RecordFailure(err)
		logging.WarnWithContext(logger, "file skipped", "file_failed",
			logging.String("kind", failures.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file is excluded from the video count"),
			logging.String(logging.FieldErrorHint, failureHint(err)),
		)
		return
	}

	elapsed := time.Since(started)
	agg.Add(result)
	r.metrics.RecordResult(result, elapsed, false)
	if len(intervals) > 0 {
		logger.Debug("silence detected", logging.String("intervals", formatIntervals(intervals)))
	}
	if result.Trailing {
		logger.Info("trailing silence",
			logging.Int64("silence_ms", result.Interval.LengthMs()),
			logging.Int64("duration_ms", result.DurationMs),
		)
	} else {
		logger.Debug("no trailing silence", logging.Int64("duration_ms", result.DurationMs))
	}

	if cacheable {
		if err := r.store.SaveResult(ctx, key, r.runID, result); err != nil {
			logger.Warn("result cache write failed", logging.Error(err))
		}
	}
}

func (r *runner) cacheKey(path string) (scanstore.FileKey, bool) {
	if r.store == nil || !r.cfg.Cache.Enabled {
		return scanstore.FileKey{}, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return scanstore.FileKey{}, false
	}
	return scanstore.FileKey{
		Path:      path,
		Size:      info.Size(),
		ModTimeNs: info.ModTime().UnixNano(),
		ParamsKey: r.paramsKey,
	}, true
}

// paramsKey fingerprints every setting that can change a file's result.
func paramsKey(cfg *config.Config, decoder pcm.Decoder) string {
	return fmt.Sprintf("threshold=%g;min=%d;window=%d;decoder=%s;rate=%d;channels=%d",
		cfg.Scan.ThresholdDBFS,
		cfg.Scan.MinSilenceMs,
		cfg.Scan.WindowMs,
		decoder.Name(),
		cfg.Decoder.SampleRate,
		cfg.Decoder.Channels,
	)
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, failures.ErrDecode):
		return "check the file plays and has an audio track"
	case errors.Is(err, failures.ErrInvalidInput):
		return "the decoded audio is empty or malformed"
	default:
		return "see error for details"
	}
}

func formatIntervals(intervals []silence.Interval) string {
	parts := make([]string, len(intervals))
	for i, interval := range intervals {
		parts[i] = interval.String()
	}
	return strings.Join(parts, " ")
}

func totalSilence(summary aggregate.Summary) int64 {
	if summary.Stats == nil {
		return 0
	}
	return summary.Stats.Total
}
