//go:build unix

package cmd

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubJpyutil stands in for jpyutil.py when run by /bin/sh. A "fail" file
// in the output directory makes it exit with that code before writing.
const stubJpyutil = `out="$2"
if [ -f "$out/fail" ]; then exit "$(cat "$out/fail")"; fi
echo "jpy.jpyLib = $out/jpy.so" > "$out/jpyconfig.properties"
echo "jvm_dll = None" > "$out/jpyconfig.py"
`

func prepareTarget(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteArchive(t, filepath.Join(dir, "lib", expectedArchive(dir)), "zip", map[string]string{
		shared.DefaultHelperName: stubJpyutil,
		"jpy.so":                 "ELF",
	})
	return dir
}

func TestRunConfiguresTarget(t *testing.T) {
	dir := prepareTarget(t)
	args := quiet(dir, "--runtime-exe", "/bin/sh", "--req-primary", "--req-secondary")

	require.Equal(t, 0, Run(args, io.Discard))
	testutil.AssertFileExists(t, filepath.Join(dir, shared.ExtractionMarker))
	testutil.AssertFileContent(t, filepath.Join(dir, "jpy.so"), "ELF")
	testutil.AssertFileContent(t, filepath.Join(dir, shared.DefaultSecondaryConfig), "jvm_dll = None\n")

	before := testutil.Snapshot(t, dir)
	require.Equal(t, 0, Run(args, io.Discard))
	assert.Equal(t, before, testutil.Snapshot(t, dir), "second run must not touch the target")
}

func TestRunHelperFailure(t *testing.T) {
	tests := []struct {
		name     string
		fail     string
		extra    []string
		wantCode int
	}{
		{name: "required primary", fail: "1", extra: []string{"--req-primary"}, wantCode: 1},
		{name: "optional primary", fail: "1", extra: []string{"--req-secondary"}, wantCode: 0},
		{name: "required secondary", fail: "2", extra: []string{"--req-secondary"}, wantCode: 2},
		{name: "unknown failure", fail: "7", extra: []string{"--req-secondary"}, wantCode: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := prepareTarget(t)
			testutil.CreateTestFile(t, dir, "fail", tt.fail, 0644)

			args := quiet(dir, append([]string{"--runtime-exe", "/bin/sh"}, tt.extra...)...)
			assert.Equal(t, tt.wantCode, Run(args, io.Discard))
		})
	}
}

func TestRunMissingHelper(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, filepath.Join(dir, "lib", expectedArchive(dir)), "zip", map[string]string{"jpy.so": "ELF"})

	assert.Equal(t, 20, Run(quiet(dir, "--runtime-exe", "/bin/sh"), io.Discard))
}
