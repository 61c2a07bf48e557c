package aggregate_test

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"silencescan/internal/aggregate"
	"silencescan/internal/failures"
	"silencescan/internal/silence"
)

func trailing(path string, start, end int64) aggregate.FileResult {
	return aggregate.FileResult{
		Path:       path,
		DurationMs: end,
		Trailing:   true,
		Interval:   silence.Interval{StartMs: start, EndMs: end},
	}
}

func TestFinalizeComputesStats(t *testing.T) {
	var agg aggregate.Aggregator
	agg.Add(trailing("a.mp4", 4000, 5000))
	agg.Add(aggregate.FileResult{Path: "b.mp4", DurationMs: 3000})
	agg.Add(trailing("c.mp4", 4500, 5000))
	agg.Add(trailing("d.mp4", 9700, 10000))

	summary := agg.Finalize()
	if summary.VideoCount != 4 || summary.WithTrailingSilence != 3 || summary.WithoutTrailingSilence != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if summary.Stats == nil {
		t.Fatal("expected stats")
	}
	want := aggregate.Stats{Average: 600, Min: 300, Max: 1000, Total: 1800}
	if *summary.Stats != want {
		t.Fatalf("got %+v want %+v", *summary.Stats, want)
	}
}

func TestFinalizeWithoutSilenceHasNoStats(t *testing.T) {
	var agg aggregate.Aggregator
	agg.Add(aggregate.FileResult{Path: "a.mp4", DurationMs: 1000})
	summary := agg.Finalize()
	if summary.HasSilence() {
		t.Fatalf("expected no stats, got %+v", summary.Stats)
	}
	if summary.VideoCount != 1 || summary.WithoutTrailingSilence != 1 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
}

func TestFinalizeEmptyBatch(t *testing.T) {
	var agg aggregate.Aggregator
	summary := agg.Finalize()
	if summary.VideoCount != 0 || summary.WithTrailingSilence != 0 || summary.WithoutTrailingSilence != 0 || summary.FailedCount() != 0 {
		t.Fatalf("expected zero counts, got %+v", summary)
	}
	if summary.HasSilence() {
		t.Fatal("expected no stats for empty batch")
	}
}

func TestFailuresAreBucketedSeparately(t *testing.T) {
	var agg aggregate.Aggregator
	agg.Add(trailing("ok.mp4", 0, 200))
	agg.AddFailure("z.mp4", failures.Wrap(failures.ErrDecode, "pcm", "extract", "z.mp4", errors.New("exit status 1")))
	agg.AddFailure("y.mp4", failures.Wrap(failures.ErrDecode, "pcm", "probe", "y.mp4", nil))
	agg.AddFailure("x.mp4", failures.Wrap(failures.ErrInvalidInput, "silence", "detect", "empty buffer", nil))

	summary := agg.Finalize()
	if summary.VideoCount != 1 {
		t.Fatalf("failures must not count as videos, got %d", summary.VideoCount)
	}
	if summary.FailedCount() != 3 {
		t.Fatalf("expected 3 failures, got %d", summary.FailedCount())
	}
	wantCounts := map[string]int{failures.KindDecode: 2, failures.KindInvalidInput: 1}
	if !reflect.DeepEqual(summary.FailureCounts, wantCounts) {
		t.Fatalf("got %v want %v", summary.FailureCounts, wantCounts)
	}
	if got := summary.FailureKinds(); !reflect.DeepEqual(got, []string{failures.KindDecode, failures.KindInvalidInput}) {
		t.Fatalf("unexpected kinds order: %v", got)
	}
	if summary.Failures[0].Path != "x.mp4" {
		t.Fatalf("expected failures sorted by path, got %+v", summary.Failures)
	}
}

func TestStatsInvariantsAndMergeMatchesSequentialFold(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	var results []aggregate.FileResult
	for i := 0; i < 200; i++ {
		duration := int64(1000 + rng.IntN(60000))
		if rng.IntN(3) == 0 {
			results = append(results, aggregate.FileResult{DurationMs: duration})
			continue
		}
		length := int64(100 + rng.IntN(900))
		results = append(results, trailing("", duration-length, duration))
	}

	var sequential aggregate.Aggregator
	parts := make([]aggregate.Aggregator, 4)
	var recorded []int64
	for i, result := range results {
		sequential.Add(result)
		parts[i%len(parts)].Add(result)
		if result.Trailing {
			recorded = append(recorded, result.Interval.LengthMs())
		}
	}
	var merged aggregate.Aggregator
	for i := len(parts) - 1; i >= 0; i-- {
		merged.Merge(&parts[i])
	}

	seq := sequential.Finalize()
	got := merged.Finalize()
	if *seq.Stats != *got.Stats || seq.VideoCount != got.VideoCount || seq.WithTrailingSilence != got.WithTrailingSilence {
		t.Fatalf("merge changed the result: %+v vs %+v", got, seq)
	}

	var total int64
	for _, length := range recorded {
		total += length
	}
	stats := got.Stats
	if stats.Total != total {
		t.Fatalf("total %d != sum of lengths %d", stats.Total, total)
	}
	if float64(stats.Min) > stats.Average || stats.Average > float64(stats.Max) {
		t.Fatalf("expected min <= average <= max, got %+v", stats)
	}
	if got.WithTrailingSilence != len(recorded) {
		t.Fatalf("with-silence count %d != trailing results %d", got.WithTrailingSilence, len(recorded))
	}
	if got.VideoCount != got.WithTrailingSilence+got.WithoutTrailingSilence {
		t.Fatalf("counts do not add up: %+v", got)
	}
}
