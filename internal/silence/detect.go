package silence

import (
	"fmt"
	"math"

	"silencescan/internal/failures"
	"silencescan/internal/media/pcm"
)

// DigitalSilenceDBFS is the loudness assigned to windows whose RMS is zero or
// that contain no frames. It sits below anything a 32-bit sample can express.
const DigitalSilenceDBFS = -200.0

// Params controls a detection pass.
type Params struct {
	ThresholdDBFS float64
	MinRunMs      int
	WindowMs      int
}

// Interval is a half-open millisecond range [StartMs, EndMs).
type Interval struct {
	StartMs int64
	EndMs   int64
}

// LengthMs returns EndMs - StartMs.
func (i Interval) LengthMs() int64 {
	return i.EndMs - i.StartMs
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d,%d)ms", i.StartMs, i.EndMs)
}

// Detect returns the silent runs in buf, ordered by start.
func Detect(buf *pcm.Buffer, params Params) ([]Interval, error) {
	if err := validate(buf, params); err != nil {
		return nil, err
	}

	duration := buf.DurationMs()
	frames := int64(buf.Frames())
	rate := int64(buf.SampleRate)
	window := int64(params.WindowMs)
	fullScale := buf.FullScale()

	var (
		out     []Interval
		inRun   bool
		runFrom int64
	)
	closeRun := func(end int64) {
		if end-runFrom >= int64(params.MinRunMs) {
			out = append(out, Interval{StartMs: runFrom, EndMs: end})
		}
		inRun = false
	}

	for start := int64(0); start < duration; start += window {
		end := min(start+window, duration)
		fromFrame, toFrame := windowFrames(start, end, duration, rate, frames)
		quiet := Loudness(buf, int(fromFrame), int(toFrame), fullScale) <= params.ThresholdDBFS
		switch {
		case quiet && !inRun:
			inRun = true
			runFrom = start
		case !quiet && inRun:
			closeRun(start)
		}
	}
	if inRun {
		closeRun(duration)
	}
	return out, nil
}

// windowFrames maps the millisecond window [start, end) onto frames
// [from, to). The last window runs to the final frame, and a window narrower
// than one frame still covers the frame it starts in.
func windowFrames(start, end, duration, rate, frames int64) (int64, int64) {
	from := min(start*rate/1000, frames-1)
	to := min(end*rate/1000, frames)
	if end == duration {
		to = frames
	}
	if to <= from {
		to = from + 1
	}
	return from, to
}

// Loudness returns the RMS level of frames [from, to) in dBFS.
func Loudness(buf *pcm.Buffer, from, to int, fullScale float64) float64 {
	if to <= from || fullScale <= 0 {
		return DigitalSilenceDBFS
	}
	samples := buf.Samples[from*buf.Channels : to*buf.Channels]
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	if sum == 0 {
		return DigitalSilenceDBFS
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	return math.Max(20*math.Log10(rms/fullScale), DigitalSilenceDBFS)
}

func validate(buf *pcm.Buffer, params Params) error {
	invalid := func(message string) error {
		return failures.Wrap(failures.ErrInvalidInput, "silence", "detect", message, nil)
	}
	switch {
	case buf == nil:
		return invalid("nil buffer")
	case buf.SampleRate <= 0:
		return invalid(fmt.Sprintf("sample rate must be positive (got %d)", buf.SampleRate))
	case buf.Channels <= 0:
		return invalid(fmt.Sprintf("channel count must be positive (got %d)", buf.Channels))
	case buf.SampleWidth < 1 || buf.SampleWidth > 4:
		return invalid(fmt.Sprintf("sample width must be 1-4 bytes (got %d)", buf.SampleWidth))
	case len(buf.Samples)%buf.Channels != 0:
		return invalid(fmt.Sprintf("%d samples do not divide into %d channels", len(buf.Samples), buf.Channels))
	case buf.Frames() == 0 || buf.DurationMs() == 0:
		return invalid("empty buffer")
	case params.MinRunMs <= 0:
		return invalid(fmt.Sprintf("minimum run must be positive (got %dms)", params.MinRunMs))
	case params.WindowMs <= 0:
		return invalid(fmt.Sprintf("window must be positive (got %dms)", params.WindowMs))
	case math.IsNaN(params.ThresholdDBFS) || params.ThresholdDBFS > 0:
		return invalid(fmt.Sprintf("threshold must be <= 0 dBFS (got %g)", params.ThresholdDBFS))
	}
	return nil
}
