// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Only the fields the decoders need are modelled: stream layout, audio sample
// rate and channel count, and container duration.
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
package ffprobe
