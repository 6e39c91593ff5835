// Package services defines shared utilities consumed by the batch driver and
// external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the run identifier, current file, and
//     lifecycle stage for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification uniform: configuration problems abort the run, everything
//     else is recovered at the file level.
package services
