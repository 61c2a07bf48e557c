package scanstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"silencescan/internal/aggregate"
	"silencescan/internal/silence"
)

// FileKey identifies a file version scanned with a given parameter set.
type FileKey struct {
	Path      string
	Size      int64
	ModTimeNs int64
	ParamsKey string
}

// LookupResult returns a cached result when path, size, mtime, and
// parameters all match.
func (s *Store) LookupResult(ctx context.Context, key FileKey) (aggregate.FileResult, bool, error) {
	var (
		durationMs int64
		trailing   bool
		startMs    int64
		endMs      int64
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT duration_ms, trailing, start_ms, end_ms FROM file_results
         WHERE path = ? AND params_key = ? AND size = ? AND mod_time_ns = ?`,
		key.Path, key.ParamsKey, key.Size, key.ModTimeNs,
	).Scan(&durationMs, &trailing, &startMs, &endMs)
	if errors.Is(err, sql.ErrNoRows) {
		return aggregate.FileResult{}, false, nil
	}
	if err != nil {
		return aggregate.FileResult{}, false, fmt.Errorf("lookup result: %w", err)
	}
	result := aggregate.FileResult{Path: key.Path, DurationMs: durationMs, Trailing: trailing}
	if trailing {
		result.Interval = silence.Interval{StartMs: startMs, EndMs: endMs}
	}
	return result, true, nil
}

// SaveResult stores or replaces the result for key.
func (s *Store) SaveResult(ctx context.Context, key FileKey, runID string, result aggregate.FileResult) error {
	err := s.exec(ctx,
		`INSERT INTO file_results (path, params_key, size, mod_time_ns, duration_ms, trailing, start_ms, end_ms, run_id, scanned_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (path, params_key) DO UPDATE SET
            size = excluded.size,
            mod_time_ns = excluded.mod_time_ns,
            duration_ms = excluded.duration_ms,
            trailing = excluded.trailing,
            start_ms = excluded.start_ms,
            end_ms = excluded.end_ms,
            run_id = excluded.run_id,
            scanned_at = excluded.scanned_at`,
		key.Path, key.ParamsKey, key.Size, key.ModTimeNs,
		result.DurationMs, result.Trailing, result.Interval.StartMs, result.Interval.EndMs,
		runID, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}
