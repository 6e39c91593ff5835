// Package fileutil provides the small set of filesystem queries the
// batch driver relies on: existence, byte size, and partial-output
// removal.
package fileutil

import (
	"fmt"
	"os"
)

// Exists reports whether path refers to an existing regular file.
// Directories do not count; an output path colliding with a directory
// is handled by the encoder's own failure path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// SizeBytes returns the byte size of path, or 0 with ok=false when the
// file is missing or unreadable. Callers render unknown sizes as "N/A"
// rather than failing.
func SizeBytes(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// RemoveIfExists deletes path when present. Missing files are not an
// error; anything else is.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// EnsureDir creates dir (and parents) when absent.
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
