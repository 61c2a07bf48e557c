package pcm

import (
	"context"
	"fmt"

	"silencescan/internal/config"
	"silencescan/internal/failures"
)

// Decoder produces a PCM buffer for a media file.
type Decoder interface {
	Decode(ctx context.Context, path string) (*Buffer, error)
	Name() string
}

// NewDecoder returns the backend selected by cfg.Decoder.Backend.
func NewDecoder(cfg *config.Config) (Decoder, error) {
	if cfg == nil {
		return nil, failures.Wrap(failures.ErrConfiguration, "pcm", "new decoder", "nil config", nil)
	}
	settings := cfg.Decoder
	switch settings.Backend {
	case config.BackendFFmpeg, "":
		return &FFmpegDecoder{
			FFmpegBinary:  settings.FFmpegBinary,
			FFprobeBinary: settings.FFprobeBinary,
			SampleRate:    settings.SampleRate,
			Channels:      settings.Channels,
		}, nil
	case config.BackendWAV:
		return WAVDecoder{}, nil
	default:
		return nil, failures.Wrap(failures.ErrConfiguration, "pcm", "new decoder", fmt.Sprintf("unsupported backend %q", settings.Backend), nil)
	}
}
