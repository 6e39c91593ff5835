// Package history records batch run outcomes in a local SQLite
// database so past runs can be inspected from the CLI. Persistence is
// advisory: a history failure never affects a batch's outcome.
package history
