package scanstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one batch scan.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time // zero while the run is in progress or if it aborted
	InputDir       string
	ThresholdDBFS  float64
	MinSilenceMs   int
	VideoCount     int
	WithSilence    int
	WithoutSilence int
	Failed         int
	TotalSilenceMs int64
	ReportPath     string
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("begin run: empty id")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, started_at, input_dir, threshold_dbfs, min_silence_ms)
         VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.InputDir,
		run.ThresholdDBFS,
		run.MinSilenceMs,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stores the totals of a completed run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, video_count = ?, with_silence = ?, without_silence = ?,
            failed = ?, total_silence_ms = ?, report_path = ?
         WHERE id = ?`,
		run.FinishedAt.UTC().Format(timeLayout),
		run.VideoCount,
		run.WithSilence,
		run.WithoutSilence,
		run.Failed,
		run.TotalSilenceMs,
		nullableString(run.ReportPath),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, started_at, finished_at, input_dir, threshold_dbfs, min_silence_ms,
            video_count, with_silence, without_silence, failed, total_silence_ms, report_path
         FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
			reportPath sql.NullString
		)
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.InputDir, &run.ThresholdDBFS, &run.MinSilenceMs,
			&run.VideoCount, &run.WithSilence, &run.WithoutSilence, &run.Failed, &run.TotalSilenceMs, &reportPath); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.StartedAt = parseTime(startedAt)
		if finishedAt.Valid {
			run.FinishedAt = parseTime(finishedAt.String)
		}
		run.ReportPath = reportPath.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
