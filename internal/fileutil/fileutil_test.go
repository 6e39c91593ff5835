package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"reframe/internal/testsupport"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")

	if Exists(path) {
		t.Fatal("missing file should not exist")
	}
	if Exists(dir) {
		t.Fatal("directories must not count as files")
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Fatal("expected file to exist")
	}
}

func TestSizeBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")

	if _, ok := SizeBytes(path); ok {
		t.Fatal("missing file should report unknown size")
	}
	// Larger than one fill chunk so the size really comes from Stat.
	testsupport.WriteFile(t, path, 100_000)
	size, ok := SizeBytes(path)
	if !ok || size != 100_000 {
		t.Fatalf("expected size 100000, got %d ok=%v", size, ok)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.mp4")

	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if Exists(path) {
		t.Fatal("file should be gone")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory, err=%v", err)
	}
	if err := EnsureDir(""); err == nil {
		t.Fatal("empty path must be rejected")
	}
}
