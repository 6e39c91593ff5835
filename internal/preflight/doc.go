// Package preflight provides startup readiness checks for the paths
// and external binaries a batch run depends on. A failed check aborts
// the run before any file is touched, so a doomed batch never gets
// halfway through a long encode.
package preflight
