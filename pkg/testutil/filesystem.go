package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =====================================
// File System Testing Utilities
// =====================================

// CreateTestFile creates a test file with specified content and permissions
func CreateTestFile(t *testing.T, dir, filename, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

// AssertFileExists verifies that a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists verifies that a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected file to not exist: %s", path)
	}
}

// AssertFileContent verifies file content matches expected
func AssertFileContent(t *testing.T, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, expected, string(content))
}

// FileState is what Snapshot records per path.
type FileState struct {
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
}

// Snapshot records every path under dir with its size, mode and mtime.
// Comparing two snapshots detects any write, create, or delete in between.
func Snapshot(t *testing.T, dir string) map[string]FileState {
	t.Helper()
	state := make(map[string]FileState)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		state[rel] = FileState{Size: info.Size(), Mode: info.Mode(), ModTime: info.ModTime()}
		return nil
	})
	require.NoError(t, err)
	return state
}

// SortedKeys returns the snapshot's paths in order, for readable diffs.
func SortedKeys(state map[string]FileState) []string {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
