// Package silence finds silent intervals in decoded audio.
//
// Detect slides fixed windows across a pcm.Buffer, measures each window's RMS
// loudness in dBFS, and merges consecutive windows at or below the threshold
// into runs. Runs shorter than the minimum length are dropped. Trailing then
// answers whether the audio ends in silence: the last run must reach the
// final millisecond exactly.
//
// Both functions are pure. Identical buffers and parameters always yield
// identical intervals.
package silence
