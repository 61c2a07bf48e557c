package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = 0x42
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Segment describes a span of constant-amplitude mono audio.
type Segment struct {
	Ms        int
	Amplitude int
}

// Loud returns a segment well above any silence threshold.
func Loud(ms int) Segment {
	return Segment{Ms: ms, Amplitude: 8000}
}

// Silent returns a segment of digital silence.
func Silent(ms int) Segment {
	return Segment{Ms: ms}
}

// SegmentSamples renders segments at the given rate as mono samples. Loud
// segments alternate sign so they carry energy without a DC offset.
func SegmentSamples(rate int, segments ...Segment) []int {
	var out []int
	for _, seg := range segments {
		frames := seg.Ms * rate / 1000
		for i := 0; i < frames; i++ {
			v := seg.Amplitude
			if i%2 == 1 {
				v = -v
			}
			out = append(out, v)
		}
	}
	return out
}

// WriteWAV encodes 16-bit PCM samples (interleaved when channels > 1) to path.
func WriteWAV(t testing.TB, path string, rate, channels int, samples []int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalize %s: %v", path, err)
	}
}
