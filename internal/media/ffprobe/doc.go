// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Video: the per-file descriptor (dimensions, rotation, duration, size)
//     consumed by geometry and the batch driver
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns the parsed Result
//   - Probe: Inspect plus descriptor extraction and degenerate-source
//     rejection
//
// Rotation metadata is read from two sources: the stream "rotate" tag
// and display-matrix side data, preferring the tag when both exist.
package ffprobe
