// Package progress renders per-file encode progress, either as an
// in-place terminal bar or as sampled structured log lines when output
// is redirected.
package progress
