package pcm

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"silencescan/internal/failures"
	"silencescan/internal/media/ffprobe"
)

const s16Width = 2

// FFmpegDecoder decodes the first audio stream of any container ffmpeg
// understands. Zero SampleRate or Channels keep the stream's native values.
type FFmpegDecoder struct {
	FFmpegBinary  string
	FFprobeBinary string
	SampleRate    int
	Channels      int
}

// Name identifies the backend in logs.
func (d *FFmpegDecoder) Name() string { return "ffmpeg" }

// Decode probes path and extracts its first audio stream as s16le PCM.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) (*Buffer, error) {
	probe, err := ffprobe.Inspect(ctx, d.FFprobeBinary, path)
	if err != nil {
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "probe", path, err)
	}
	stream, ok := probe.FirstAudioStream()
	if !ok {
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "probe", fmt.Sprintf("%s: no audio stream", path), nil)
	}

	rate := d.SampleRate
	if rate <= 0 {
		rate = stream.SampleRateHz()
	}
	channels := d.Channels
	if channels <= 0 {
		channels = stream.Channels
	}
	if rate <= 0 || channels <= 0 {
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "probe",
			fmt.Sprintf("%s: stream %d reports sample_rate=%q channels=%d", path, stream.Index, stream.SampleRate, stream.Channels), nil)
	}

	data, err := extractPCM(ctx, d.FFmpegBinary, path, stream.Index, rate, channels)
	if err != nil {
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "extract", path, err)
	}
	samples := decodeS16LE(data, channels)
	if len(samples) == 0 {
		detail := fmt.Sprintf("%s: ffmpeg produced no audio for stream %d", path, stream.Index)
		if seconds := probe.DurationSeconds(); seconds > 0 {
			detail += fmt.Sprintf(" (container reports %.3fs)", seconds)
		}
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "extract", detail, nil)
	}
	return &Buffer{
		SampleRate:  rate,
		Channels:    channels,
		SampleWidth: s16Width,
		Samples:     samples,
	}, nil
}

func extractPCM(ctx context.Context, ffmpegBinary, path string, streamIndex, rate, channels int) ([]byte, error) {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", path,
		"-map", fmt.Sprintf("0:%d", streamIndex),
		"-vn", "-sn", "-dn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(rate),
		"-acodec", "pcm_s16le",
		"-f", "s16le",
		"-",
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("ffmpeg pcm extract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// decodeS16LE converts little-endian 16-bit samples, dropping any trailing
// partial frame.
func decodeS16LE(data []byte, channels int) []int32 {
	frameBytes := s16Width * channels
	usable := len(data) - len(data)%frameBytes
	samples := make([]int32, usable/s16Width)
	for i := range samples {
		samples[i] = int32(int16(binary.LittleEndian.Uint16(data[i*s16Width:])))
	}
	return samples
}
