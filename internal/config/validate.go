package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateDecoder(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		return errors.New("paths.input_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ReportFile) == "" {
		return errors.New("paths.report_file must be set")
	}
	if strings.HasSuffix(c.Paths.ReportFile, "/") {
		return errors.New("paths.report_file must name a file, not a directory")
	}
	return nil
}

func (c *Config) validateScan() error {
	if math.IsNaN(c.Scan.ThresholdDBFS) || math.IsInf(c.Scan.ThresholdDBFS, 0) {
		return errors.New("scan.threshold_dbfs must be a finite number")
	}
	if c.Scan.ThresholdDBFS > 0 {
		return fmt.Errorf("scan.threshold_dbfs must be <= 0 (got %g)", c.Scan.ThresholdDBFS)
	}
	if err := ensurePositiveMap(map[string]int{
		"scan.min_silence_ms": c.Scan.MinSilenceMs,
		"scan.window_ms":      c.Scan.WindowMs,
		"scan.workers":        c.Scan.Workers,
	}); err != nil {
		return err
	}
	if c.Scan.WindowMs > c.Scan.MinSilenceMs {
		return errors.New("scan.window_ms must not exceed scan.min_silence_ms")
	}
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateDecoder() error {
	switch c.Decoder.Backend {
	case BackendFFmpeg, BackendWAV:
	default:
		return fmt.Errorf("decoder.backend: unsupported value %q (want %q or %q)", c.Decoder.Backend, BackendFFmpeg, BackendWAV)
	}
	if c.Decoder.SampleRate < 0 {
		return errors.New("decoder.sample_rate must be 0 (native) or positive")
	}
	if c.Decoder.Channels < 0 {
		return errors.New("decoder.channels must be 0 (native) or positive")
	}
	if c.Decoder.TimeoutSeconds < 0 {
		return errors.New("decoder.timeout_seconds must be 0 (unlimited) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
