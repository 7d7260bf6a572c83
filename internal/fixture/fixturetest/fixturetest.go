// Package fixturetest writes fixture images to per-test temporary files.
package fixturetest

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data to a file in a per-test temporary directory and returns its path.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write fixture %s: %v", path, err)
	}

	return path
}
