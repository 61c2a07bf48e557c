package config

const (
	defaultConfigPath        = "~/.config/silencescan/config.toml"
	defaultInputDir          = "./videos"
	defaultReportFile        = "./silence_report.txt"
	defaultStateDir          = "~/.local/share/silencescan"
	defaultLogDir            = "~/.local/share/silencescan/logs"
	defaultThresholdDBFS     = -100.0
	defaultMinSilenceMs      = 100
	defaultWindowMs          = 1
	defaultWorkers           = 1
	defaultDecoderBackend    = BackendFFmpeg
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultDecoderTimeoutSec = 600
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Decoder backends.
const (
	BackendFFmpeg = "ffmpeg"
	BackendWAV    = "wav"
)

var (
	defaultExtensions    = []string{".mp4", ".mkv", ".mov", ".avi", ".m4v", ".webm"}
	defaultWAVExtensions = []string{".wav"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:   defaultInputDir,
			ReportFile: defaultReportFile,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Scan: Scan{
			ThresholdDBFS: defaultThresholdDBFS,
			MinSilenceMs:  defaultMinSilenceMs,
			WindowMs:      defaultWindowMs,
			Extensions:    append([]string(nil), defaultExtensions...),
			Workers:       defaultWorkers,
		},
		Decoder: Decoder{
			Backend:        defaultDecoderBackend,
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			TimeoutSeconds: defaultDecoderTimeoutSec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
