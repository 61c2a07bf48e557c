package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"silencescan/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SILENCESCAN_INPUT_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "silencescan")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.InputDir) || filepath.Base(cfg.Paths.InputDir) != "videos" {
		t.Fatalf("unexpected input dir: %q", cfg.Paths.InputDir)
	}
	if filepath.Base(cfg.Paths.ReportFile) != "silence_report.txt" {
		t.Fatalf("unexpected report file: %q", cfg.Paths.ReportFile)
	}
	if cfg.Scan.ThresholdDBFS != -100 {
		t.Fatalf("unexpected threshold: %v", cfg.Scan.ThresholdDBFS)
	}
	if cfg.Scan.MinSilenceMs != 100 {
		t.Fatalf("unexpected min silence: %d", cfg.Scan.MinSilenceMs)
	}
	if cfg.Scan.WindowMs != 1 || cfg.Scan.Workers != 1 {
		t.Fatalf("unexpected window/workers: %d/%d", cfg.Scan.WindowMs, cfg.Scan.Workers)
	}
	if cfg.Decoder.Backend != config.BackendFFmpeg {
		t.Fatalf("unexpected backend: %q", cfg.Decoder.Backend)
	}
	if cfg.Cache.Enabled {
		t.Fatal("expected cache disabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadUsesInputDirFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	envDir := t.TempDir()
	t.Setenv("SILENCESCAN_INPUT_DIR", envDir)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.InputDir != envDir {
		t.Fatalf("expected input dir from env, got %q", cfg.Paths.InputDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "silencescan.toml")

	type payload struct {
		Paths struct {
			InputDir   string `toml:"input_dir"`
			ReportFile string `toml:"report_file"`
		} `toml:"paths"`
		Scan struct {
			ThresholdDBFS float64  `toml:"threshold_dbfs"`
			MinSilenceMs  int      `toml:"min_silence_ms"`
			Extensions    []string `toml:"extensions"`
			Workers       int      `toml:"workers"`
		} `toml:"scan"`
		Decoder struct {
			Backend string `toml:"backend"`
		} `toml:"decoder"`
	}
	custom := payload{}
	custom.Paths.InputDir = filepath.Join(tempDir, "clips")
	custom.Paths.ReportFile = filepath.Join(tempDir, "out", "report.txt")
	custom.Scan.ThresholdDBFS = -60
	custom.Scan.MinSilenceMs = 250
	custom.Scan.Extensions = []string{"WAV", ".wav", " mp4 "}
	custom.Scan.Workers = 4
	custom.Decoder.Backend = "WAV"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Scan.ThresholdDBFS != -60 || cfg.Scan.MinSilenceMs != 250 || cfg.Scan.Workers != 4 {
		t.Fatalf("unexpected scan section: %+v", cfg.Scan)
	}
	if got := strings.Join(cfg.Scan.Extensions, ","); got != ".wav,.mp4" {
		t.Fatalf("unexpected extensions: %q", got)
	}
	if cfg.Decoder.Backend != config.BackendWAV {
		t.Fatalf("expected wav backend, got %q", cfg.Decoder.Backend)
	}
	if !cfg.MatchesExtension("Clip.WAV") || cfg.MatchesExtension("notes.txt") || cfg.MatchesExtension("README") {
		t.Fatal("unexpected extension matching")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(configPath, []byte("[scan]\nthreshold = -10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"positive threshold", func(c *config.Config) { c.Scan.ThresholdDBFS = 3 }, "threshold_dbfs"},
		{"zero min silence", func(c *config.Config) { c.Scan.MinSilenceMs = 0 }, "min_silence_ms"},
		{"window exceeds run", func(c *config.Config) { c.Scan.WindowMs = 500 }, "window_ms"},
		{"negative workers", func(c *config.Config) { c.Scan.Workers = -1 }, "workers"},
		{"unknown backend", func(c *config.Config) { c.Decoder.Backend = "gstreamer" }, "decoder.backend"},
		{"negative rate", func(c *config.Config) { c.Decoder.SampleRate = -1 }, "sample_rate"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.InputDir = t.TempDir()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(target); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}

func TestLoadWAVBackendDefaultsToWAVExtensions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SILENCESCAN_INPUT_DIR", "")
	dir := t.TempDir()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"extensions omitted", "[decoder]\nbackend = \"wav\"\n", ".wav"},
		{"video defaults kept", "[scan]\nextensions = [\".mp4\", \".mkv\", \".mov\", \".avi\", \".m4v\", \".webm\"]\n[decoder]\nbackend = \"wav\"\n", ".wav"},
		{"explicit list", "[scan]\nextensions = [\".mp4\", \"flac\"]\n[decoder]\nbackend = \"wav\"\n", ".mp4,.flac"},
		{"ffmpeg backend", "[decoder]\nbackend = \"ffmpeg\"\n", ".mp4,.mkv,.mov,.avi,.m4v,.webm"},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("config-%d.toml", i))
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			cfg, _, _, err := config.Load(path)
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if got := strings.Join(cfg.Scan.Extensions, ","); got != tc.want {
				t.Fatalf("extensions = %q, want %q", got, tc.want)
			}
		})
	}
}
