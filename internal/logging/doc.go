// Package logging assembles structured slog loggers and formatting helpers used
// across silencescan.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so scan code can automatically
// tag log lines with the run identifier and the file being processed. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
