package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"silencescan/internal/aggregate"
	"silencescan/internal/failures"
	"silencescan/internal/silence"
)

func sampleSummary() aggregate.Summary {
	var agg aggregate.Aggregator
	agg.Add(aggregate.FileResult{Path: "a.mp4", Trailing: true, Interval: silence.Interval{StartMs: 900, EndMs: 1000}})
	agg.Add(aggregate.FileResult{Path: "b.mp4", Trailing: true, Interval: silence.Interval{StartMs: 1800, EndMs: 2000}})
	agg.Add(aggregate.FileResult{Path: "c.mp4"})
	return agg.Finalize()
}

func TestFormatSevenLines(t *testing.T) {
	got, err := Format(sampleSummary())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	want := "Number of videos: 3\n" +
		"Number of videos with silence: 2\n" +
		"Number of videos without silence: 1\n" +
		"Average silence length: 150.0ms\n" +
		"Max silence length: 200ms\n" +
		"Min silence length: 100ms\n" +
		"Total silence length: 300ms\n"
	if got != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatWithoutSilence(t *testing.T) {
	var agg aggregate.Aggregator
	agg.Add(aggregate.FileResult{Path: "a.mp4"})
	if _, err := Format(agg.Finalize()); !errors.Is(err, ErrNoSilence) {
		t.Fatalf("expected ErrNoSilence, got %v", err)
	}
}

func TestFormatAverage(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{150, "150.0"},
		{0, "0.0"},
		{333.3333333333333, "333.3333333333333"},
		{100.5, "100.5"},
	}
	for _, tt := range tests {
		if got := FormatAverage(tt.in); got != tt.want {
			t.Errorf("FormatAverage(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteCreatesReportAndReleasesLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "silence_report.txt")
	if err := Write(path, sampleSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Format(sampleSummary())
	if string(data) != want {
		t.Fatalf("unexpected file contents:\n%s", data)
	}
	if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("expected lock file to be removed, stat err=%v", err)
	}
}

func TestWriteFailsWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silence_report.txt")
	held := flock.New(path + ".lock")
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("failed to take lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	err = Write(path, sampleSummary())
	if !errors.Is(err, failures.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("expected no report while locked")
	}
}

func TestWriteWithoutSilenceWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silence_report.txt")
	var agg aggregate.Aggregator
	if err := Write(path, agg.Finalize()); !errors.Is(err, ErrNoSilence) {
		t.Fatalf("expected ErrNoSilence, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected no report file")
	}
}
