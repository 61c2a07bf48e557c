// Package pcm turns media files into decoded PCM buffers.
//
// Decoder is the single seam between the scanner and the outside world. The
// ffmpeg backend probes the first audio stream with ffprobe and pipes signed
// 16-bit little-endian samples out of ffmpeg; the wav backend reads
// pre-extracted WAV files in-process. Exactly one backend is active per run,
// selected by NewDecoder from configuration.
package pcm
