// Package aggregate folds per-file trailing-silence results into batch
// statistics.
package aggregate

import (
	"sort"

	"silencescan/internal/failures"
	"silencescan/internal/silence"
)

// FileResult is the outcome of scanning one file.
type FileResult struct {
	Path       string
	DurationMs int64
	Trailing   bool
	Interval   silence.Interval
}

// Failure records a file that could not be scanned.
type Failure struct {
	Path string
	Kind string
	Err  error
}

// Aggregator accumulates results. The zero value is ready to use. An
// Aggregator is not safe for concurrent use; give each worker its own and
// Merge them.
type Aggregator struct {
	videoCount int
	with       int
	without    int
	lengths    []int64
	failures   []Failure
}

// Add folds a successful scan result.
func (a *Aggregator) Add(result FileResult) {
	a.videoCount++
	if result.Trailing {
		a.with++
		a.lengths = append(a.lengths, result.Interval.LengthMs())
		return
	}
	a.without++
}

// AddFailure records a per-file failure without counting the file as a video.
func (a *Aggregator) AddFailure(path string, err error) {
	a.failures = append(a.failures, Failure{Path: path, Kind: failures.Kind(err), Err: err})
}

// Merge folds other into a.
func (a *Aggregator) Merge(other *Aggregator) {
	if other == nil {
		return
	}
	a.videoCount += other.videoCount
	a.with += other.with
	a.without += other.without
	a.lengths = append(a.lengths, other.lengths...)
	a.failures = append(a.failures, other.failures...)
}

// Stats summarizes recorded trailing-silence lengths in milliseconds.
type Stats struct {
	Average float64
	Min     int64
	Max     int64
	Total   int64
}

// Summary is the finalized view of a batch.
type Summary struct {
	VideoCount             int
	WithTrailingSilence    int
	WithoutTrailingSilence int
	FailureCounts          map[string]int
	Failures               []Failure
	// Stats is nil when no file ended in silence.
	Stats *Stats
}

// FailedCount returns the number of files that could not be scanned.
func (s Summary) FailedCount() int {
	return len(s.Failures)
}

// HasSilence reports whether any file ended in silence.
func (s Summary) HasSilence() bool {
	return s.Stats != nil
}

// Finalize computes the summary. It does not modify the aggregator.
func (a *Aggregator) Finalize() Summary {
	summary := Summary{
		VideoCount:             a.videoCount,
		WithTrailingSilence:    a.with,
		WithoutTrailingSilence: a.without,
		FailureCounts:          make(map[string]int),
		Failures:               append([]Failure(nil), a.failures...),
	}
	for _, failure := range a.failures {
		summary.FailureCounts[failure.Kind]++
	}
	sort.SliceStable(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Path < summary.Failures[j].Path
	})
	if len(a.lengths) == 0 {
		return summary
	}

	stats := Stats{Min: a.lengths[0], Max: a.lengths[0]}
	for _, length := range a.lengths {
		stats.Total += length
		stats.Min = min(stats.Min, length)
		stats.Max = max(stats.Max, length)
	}
	stats.Average = float64(stats.Total) / float64(len(a.lengths))
	summary.Stats = &stats
	return summary
}

// FailureKinds returns the failure bucket names in sorted order.
func (s Summary) FailureKinds() []string {
	kinds := make([]string, 0, len(s.FailureCounts))
	for kind := range s.FailureCounts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
