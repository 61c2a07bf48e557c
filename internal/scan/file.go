package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"silencescan/internal/aggregate"
	"silencescan/internal/failures"
	"silencescan/internal/media/pcm"
	"silencescan/internal/silence"
)

// ScanFile decodes path and checks its audio for trailing silence. The
// detected intervals are returned alongside the result for logging.
func ScanFile(ctx context.Context, decoder pcm.Decoder, path string, params silence.Params) (aggregate.FileResult, []silence.Interval, error) {
	buf, err := decoder.Decode(ctx, path)
	if err != nil {
		return aggregate.FileResult{}, nil, err
	}
	intervals, err := silence.Detect(buf, params)
	if err != nil {
		return aggregate.FileResult{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	durationMs := buf.DurationMs()
	result := aggregate.FileResult{Path: path, DurationMs: durationMs}
	if last, ok := silence.Trailing(intervals, durationMs); ok {
		result.Trailing = true
		result.Interval = last
	}
	return result, intervals, nil
}

// decodeWithTimeout bounds a single file's decode. A per-file deadline is a
// decode failure for that file; cancellation of the run is returned as is.
func decodeWithTimeout(ctx context.Context, timeout time.Duration, decoder pcm.Decoder, path string, params silence.Params) (aggregate.FileResult, []silence.Interval, error) {
	if timeout <= 0 {
		return ScanFile(ctx, decoder, path, params)
	}
	fileCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, intervals, err := ScanFile(fileCtx, decoder, path, params)
	if err != nil && ctx.Err() == nil && errors.Is(fileCtx.Err(), context.DeadlineExceeded) {
		return aggregate.FileResult{}, nil, failures.Wrap(failures.ErrDecode, "scan", "decode",
			fmt.Sprintf("%s: timed out after %s", path, timeout), err)
	}
	return result, intervals, err
}
