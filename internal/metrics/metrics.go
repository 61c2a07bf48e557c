// Package metrics records per-run scan metrics in a private Prometheus
// registry and exports them as a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"silencescan/internal/aggregate"
	"silencescan/internal/failures"
)

// Recorder holds the metrics for a single run. A nil Recorder ignores all calls.
type Recorder struct {
	registry *prometheus.Registry

	FilesScanned    *prometheus.CounterVec
	FilesFailed     *prometheus.CounterVec
	CacheHits       prometheus.Counter
	TrailingSilence prometheus.Histogram
	DecodeDuration  prometheus.Histogram
	RunDuration     prometheus.Gauge
	LastRunTime     prometheus.Gauge
}

// NewRecorder creates and registers the run metrics.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		FilesScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "silencescan_files_scanned_total",
			Help: "Files scanned, by whether the audio ended in silence",
		}, []string{"trailing_silence"}),
		FilesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "silencescan_files_failed_total",
			Help: "Files that could not be scanned, by failure kind",
		}, []string{"kind"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "silencescan_cache_hits_total",
			Help: "Files whose result was reused from the result cache",
		}),
		TrailingSilence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "silencescan_trailing_silence_seconds",
			Help:    "Length of trailing silence per file",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		}),
		DecodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "silencescan_decode_duration_seconds",
			Help:    "Time spent decoding and scanning one file",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "silencescan_run_duration_seconds",
			Help: "Wall time of the last completed run",
		}),
		LastRunTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "silencescan_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// RecordResult records a scanned file.
func (r *Recorder) RecordResult(result aggregate.FileResult, elapsed time.Duration, cached bool) {
	if r == nil {
		return
	}
	label := "false"
	if result.Trailing {
		label = "true"
		r.TrailingSilence.Observe(float64(result.Interval.LengthMs()) / 1000)
	}
	r.FilesScanned.WithLabelValues(label).Inc()
	if cached {
		r.CacheHits.Inc()
		return
	}
	r.DecodeDuration.Observe(elapsed.Seconds())
}

// RecordFailure records a file that could not be scanned.
func (r *Recorder) RecordFailure(err error) {
	if r == nil {
		return
	}
	r.FilesFailed.WithLabelValues(failures.Kind(err)).Inc()
}

// RecordRun records the completion of a run.
func (r *Recorder) RecordRun(elapsed time.Duration, finished time.Time) {
	if r == nil {
		return
	}
	r.RunDuration.Set(elapsed.Seconds())
	r.LastRunTime.Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry in the text exposition format. The
// client library writes to a temp file and renames it into place.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return failures.Wrap(failures.ErrIO, "metrics", "write textfile", fmt.Sprintf("write %s", path), err)
	}
	return nil
}
