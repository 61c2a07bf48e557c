package pcm

import (
	"context"
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"silencescan/internal/failures"
)

// WAVDecoder reads PCM WAV files directly, for corpora whose audio was
// extracted ahead of time.
type WAVDecoder struct{}

// Name identifies the backend in logs.
func (WAVDecoder) Name() string { return "wav" }

// Decode reads the whole WAV file into memory.
func (WAVDecoder) Decode(ctx context.Context, path string) (*Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "open", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "wav", fmt.Sprintf("%s: not a valid wav file", path), nil)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "wav", path, err)
	}
	if buf == nil || buf.Format == nil {
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "wav", fmt.Sprintf("%s: missing format chunk", path), nil)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 || bitDepth%8 != 0 || bitDepth > 32 {
		return nil, failures.Wrap(failures.ErrDecode, "pcm", "wav", fmt.Sprintf("%s: unsupported bit depth %d", path, bitDepth), nil)
	}
	// 8-bit WAV is unsigned; centre it on zero like the wider formats.
	var offset int
	if bitDepth == 8 {
		offset = 128
	}
	samples := make([]int32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int32(v - offset)
	}
	return &Buffer{
		SampleRate:  buf.Format.SampleRate,
		Channels:    buf.Format.NumChannels,
		SampleWidth: bitDepth / 8,
		Samples:     samples,
	}, nil
}
