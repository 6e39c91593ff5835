// Package logging wires log/slog for the reframe CLI.
//
// It provides a console handler for human-readable output, a JSON
// handler for machine consumption, attribute helpers shared across the
// codebase, and a progress sampler that keeps encode progress logs
// readable by emitting only on stage changes or percent-bucket
// boundaries.
package logging
