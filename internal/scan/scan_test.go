package scan_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"silencescan/internal/config"
	"silencescan/internal/failures"
	"silencescan/internal/media/pcm"
	"silencescan/internal/metrics"
	"silencescan/internal/scan"
	"silencescan/internal/testsupport"
)

const rate = 8000

func writeClip(t *testing.T, cfg *config.Config, name string, segments ...testsupport.Segment) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.InputDir, name)
	testsupport.WriteWAV(t, path, rate, 1, testsupport.SegmentSamples(rate, segments...))
	return path
}

// seedCorpus writes two clips ending in silence, one without, one corrupt
// file, and entries that must be ignored.
func seedCorpus(t *testing.T, cfg *config.Config) {
	t.Helper()
	writeClip(t, cfg, "a.wav", testsupport.Loud(500), testsupport.Silent(300))
	writeClip(t, cfg, "b.wav", testsupport.Loud(800))
	writeClip(t, cfg, "c.WAV", testsupport.Silent(50), testsupport.Loud(500), testsupport.Silent(150))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "broken.wav"), 128)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "notes.txt"), 16)
	if err := os.MkdirAll(filepath.Join(cfg.Paths.InputDir, "nested.wav"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func run(t *testing.T, ctx context.Context, cfg *config.Config, opts scan.Options) scan.Result {
	t.Helper()
	if opts.Decoder == nil {
		dec, err := pcm.NewDecoder(cfg)
		if err != nil {
			t.Fatalf("NewDecoder: %v", err)
		}
		opts.Decoder = dec
	}
	res, err := scan.Run(ctx, cfg, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

func TestListCandidatesFiltersAndSorts(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	seedCorpus(t, cfg)

	got, err := scan.ListCandidates(cfg)
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	want := []string{"a.wav", "b.wav", "broken.wav", "c.WAV"}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %v", len(want), got)
	}
	for i, name := range want {
		if filepath.Base(got[i]) != name {
			t.Fatalf("candidate %d: got %s want %s", i, filepath.Base(got[i]), name)
		}
	}
}

func TestListCandidatesMissingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	cfg.Paths.InputDir = filepath.Join(testsupport.BaseDir(cfg), "missing")
	if _, err := scan.ListCandidates(cfg); !errors.Is(err, failures.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestRunMixedCorpus(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	seedCorpus(t, cfg)

	res := run(t, context.Background(), cfg, scan.Options{})
	s := res.Summary
	if res.RunID == "" || res.Candidates != 4 {
		t.Fatalf("unexpected run metadata: %+v", res)
	}
	if s.VideoCount != 3 || s.WithTrailingSilence != 2 || s.WithoutTrailingSilence != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.FailedCount() != 1 || s.FailureCounts[failures.KindDecode] != 1 {
		t.Fatalf("expected one decode failure, got %+v", s.FailureCounts)
	}
	if filepath.Base(s.Failures[0].Path) != "broken.wav" {
		t.Fatalf("unexpected failed path: %s", s.Failures[0].Path)
	}
	if s.Stats == nil || s.Stats.Total != 450 || s.Stats.Min != 150 || s.Stats.Max != 300 || s.Stats.Average != 225 {
		t.Fatalf("unexpected stats: %+v", s.Stats)
	}

	if res.ReportPath != cfg.Paths.ReportFile {
		t.Fatalf("expected report at %s, got %q", cfg.Paths.ReportFile, res.ReportPath)
	}
	data, err := os.ReadFile(cfg.Paths.ReportFile)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	want := "Number of videos: 3\n" +
		"Number of videos with silence: 2\n" +
		"Number of videos without silence: 1\n" +
		"Average silence length: 225.0ms\n" +
		"Max silence length: 300ms\n" +
		"Min silence length: 150ms\n" +
		"Total silence length: 450ms\n"
	if string(data) != want {
		t.Fatalf("unexpected report:\n%s", data)
	}
}

func TestRunEmptyCorpusWritesNoReport(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend())

	res := run(t, context.Background(), cfg, scan.Options{})
	if res.Summary.VideoCount != 0 || res.Summary.HasSilence() {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	if res.ReportPath != "" {
		t.Fatalf("expected no report path, got %q", res.ReportPath)
	}
	if _, err := os.Stat(cfg.Paths.ReportFile); !os.IsNotExist(err) {
		t.Fatalf("expected no report file, stat err=%v", err)
	}
}

func TestRunWithoutTrailingSilenceWritesNoReport(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	writeClip(t, cfg, "loud.wav", testsupport.Loud(400))
	writeClip(t, cfg, "gap.wav", testsupport.Loud(100), testsupport.Silent(200), testsupport.Loud(100))

	res := run(t, context.Background(), cfg, scan.Options{})
	if res.Summary.VideoCount != 2 || res.Summary.WithoutTrailingSilence != 2 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	if _, err := os.Stat(cfg.Paths.ReportFile); !os.IsNotExist(err) {
		t.Fatal("expected no report file")
	}
}

func TestRunIsIndependentOfWorkerCount(t *testing.T) {
	sequential := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	seedCorpus(t, sequential)
	parallel := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	seedCorpus(t, parallel)
	parallel.Scan.Workers = 3

	a := run(t, context.Background(), sequential, scan.Options{}).Summary
	b := run(t, context.Background(), parallel, scan.Options{}).Summary
	if a.VideoCount != b.VideoCount || a.WithTrailingSilence != b.WithTrailingSilence || a.FailedCount() != b.FailedCount() {
		t.Fatalf("counts differ: %+v vs %+v", a, b)
	}
	if *a.Stats != *b.Stats {
		t.Fatalf("stats differ: %+v vs %+v", *a.Stats, *b.Stats)
	}

	first, err := os.ReadFile(sequential.Paths.ReportFile)
	if err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(parallel.Paths.ReportFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("reports differ:\n%s\n---\n%s", first, second)
	}
}

func TestRunReusesCachedResults(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend(), testsupport.WithCache())
	seedCorpus(t, cfg)
	store := testsupport.MustOpenStore(t, cfg)

	first := run(t, context.Background(), cfg, scan.Options{Store: store})
	if first.CacheHits != 0 {
		t.Fatalf("expected cold cache, got %d hits", first.CacheHits)
	}
	second := run(t, context.Background(), cfg, scan.Options{Store: store})
	if second.CacheHits != 3 {
		t.Fatalf("expected 3 cache hits, got %d", second.CacheHits)
	}
	if *first.Summary.Stats != *second.Summary.Stats || second.Summary.FailedCount() != 1 {
		t.Fatalf("cached run diverged: %+v vs %+v", first.Summary, second.Summary)
	}

	cfg.Scan.MinSilenceMs = 200
	third := run(t, context.Background(), cfg, scan.Options{Store: store})
	if third.CacheHits != 0 {
		t.Fatalf("expected parameter change to bypass cache, got %d hits", third.CacheHits)
	}
	if third.Summary.WithTrailingSilence != 1 {
		t.Fatalf("expected only the 300ms tail to qualify, got %+v", third.Summary)
	}

	runs, err := store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 recorded runs, got %d", len(runs))
	}
	for _, r := range runs {
		if r.FinishedAt.IsZero() || r.VideoCount != 3 || r.Failed != 1 {
			t.Fatalf("unexpected run record: %+v", r)
		}
	}
}

func TestRunWritesMetricsTextfile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	seedCorpus(t, cfg)
	cfg.Metrics.Textfile = filepath.Join(testsupport.BaseDir(cfg), "silencescan.prom")

	run(t, context.Background(), cfg, scan.Options{Metrics: metrics.NewRecorder()})
	if _, err := os.Stat(cfg.Metrics.Textfile); err != nil {
		t.Fatalf("expected metrics textfile: %v", err)
	}
}

func TestRunCanceled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	seedCorpus(t, cfg)
	dec, err := pcm.NewDecoder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = scan.Run(ctx, cfg, scan.Options{Decoder: dec})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Paths.ReportFile); !os.IsNotExist(statErr) {
		t.Fatal("expected no report after cancellation")
	}
}

func TestRunReportWriteFailureIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	writeClip(t, cfg, "a.wav", testsupport.Loud(200), testsupport.Silent(200))
	// A regular file where the report directory should be.
	blocker := filepath.Join(testsupport.BaseDir(cfg), "blocker")
	testsupport.WriteFile(t, blocker, 1)
	cfg.Paths.ReportFile = filepath.Join(blocker, "silence_report.txt")

	dec, err := pcm.NewDecoder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	_, err = scan.Run(context.Background(), cfg, scan.Options{Decoder: dec, Logger: jsonLogger(&logs)})
	if !errors.Is(err, failures.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	assertErrorLogged(t, logs.String(), "report_write_failed")
}

func TestRunMetricsWriteFailureIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWAVBackend())
	seedCorpus(t, cfg)
	blocker := filepath.Join(testsupport.BaseDir(cfg), "blocker")
	testsupport.WriteFile(t, blocker, 1)
	cfg.Metrics.Textfile = filepath.Join(blocker, "silencescan.prom")

	dec, err := pcm.NewDecoder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	_, err = scan.Run(context.Background(), cfg, scan.Options{
		Decoder: dec,
		Metrics: metrics.NewRecorder(),
		Logger:  jsonLogger(&logs),
	})
	if !errors.Is(err, failures.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	assertErrorLogged(t, logs.String(), "metrics_write_failed")
}

func jsonLogger(w *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func assertErrorLogged(t *testing.T, logs, eventType string) {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(logs), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if entry["event_type"] != eventType {
			continue
		}
		if entry["level"] != "ERROR" {
			t.Fatalf("expected ERROR level for %s, got %v", eventType, entry["level"])
		}
		if hint, _ := entry["error_hint"].(string); hint == "" {
			t.Fatalf("expected error_hint on %s entry: %v", eventType, entry)
		}
		return
	}
	t.Fatalf("no %s entry in logs:\n%s", eventType, logs)
}

func TestRunRequiresDecoder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := scan.Run(context.Background(), cfg, scan.Options{}); !errors.Is(err, failures.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
