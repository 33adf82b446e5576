package jiratest

import (
	"os"
	"path/filepath"
	"testing"
)

// MustWriteFile writes a fixture file or fails the test, creating parent
// directories if needed. It returns the path for chaining into scenarios.
func MustWriteFile(t *testing.T, path, content string) string {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create directory %q: %v", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %q: %v", path, err)
	}
	return path
}
