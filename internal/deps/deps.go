package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"silencescan/internal/config"
)

// Requirement defines an external binary silencescan relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the configured decoder needs. The WAV
// backend decodes in process, so ffmpeg and ffprobe become optional.
func Requirements(cfg *config.Config) []Requirement {
	optional := cfg.Decoder.Backend == config.BackendWAV
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Decoder.FFmpegBinary,
			Description: "Decodes audio tracks to PCM",
			Optional:    optional,
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Decoder.FFprobeBinary,
			Description: "Selects the audio stream to decode",
			Optional:    optional,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the statuses of required binaries that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
