// Package failures defines the error markers shared by the scanner, the
// decoders, and the batch pipeline.
//
// Errors are wrapped with Wrap so callers can classify them with errors.Is
// against the exported sentinels, or bucket them with Kind when folding
// per-file failures into a batch summary.
package failures
