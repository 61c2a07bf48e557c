package pcm

// Buffer holds decoded, interleaved PCM samples. A Buffer is not modified
// after decoding.
type Buffer struct {
	SampleRate  int
	Channels    int
	SampleWidth int // bytes per sample
	Samples     []int32
}

// Frames returns the number of complete multi-channel frames.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// DurationMs returns the buffer length in whole milliseconds, rounded half up.
func (b *Buffer) DurationMs() int64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	frames := int64(b.Frames())
	rate := int64(b.SampleRate)
	return (frames*1000 + rate/2) / rate
}

// FullScale returns the magnitude of the largest representable sample.
func (b *Buffer) FullScale() float64 {
	if b == nil || b.SampleWidth <= 0 {
		return 0
	}
	return float64(int64(1) << (8*b.SampleWidth - 1))
}
