// cmd/root_test.go

package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bootstrap"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quiet pins the runtime so no interpreter is probed.
func quiet(dir string, extra ...string) []string {
	args := []string{
		"--target-dir", dir,
		"--runtime-version", "3.10",
		"--runtime-bits", "64",
		"--log-level", "ERROR",
	}
	return append(args, extra...)
}

func expectedArchive(dir string) string {
	return bootstrap.DefaultLayout(dir).ArchiveName(platform.Detect("3.10", 64))
}

func TestRunMissingArchive(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "report.yaml")

	code := Run(quiet(dir, "--report", report, "--req-primary"), io.Discard)
	assert.Equal(t, bridge_err.ExitMissingArchive, code)

	content, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(content), "kind: MissingArchiveError")
	assert.Contains(t, string(content), expectedArchive(dir))
	assert.Contains(t, string(content), "code: 10")
}

func TestRunInvalidInvocation(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown log level", args: quiet(dir, "--log-level", "LOUD")},
		{name: "unknown flag", args: quiet(dir, "--bogus")},
		{name: "positional argument", args: quiet(dir, "extra")},
		{name: "unknown archive format", args: quiet(dir, "--archive-format", "rar")},
		{name: "bad runtime version", args: []string{"--target-dir", dir, "--runtime-version", "three"}},
		{name: "bad architecture", args: quiet(dir, "--req-arch", "x86/64")},
		{name: "missing env file", args: quiet(dir, "--env-file", filepath.Join(dir, "nope.env"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, bridge_err.ExitInvalidRequest, Run(tt.args, io.Discard))
		})
	}
	testutil.AssertFileNotExists(t, filepath.Join(dir, ".bridgeconf-extracted"))
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	code := Run(append([]string{"inspect"}, quiet(dir, "--java-home", "/opt/jre", "--req-arch", "sparc64")...), &out)
	require.Equal(t, 0, code)

	yaml := out.String()
	assert.Contains(t, yaml, "name: "+expectedArchive(dir))
	assert.Contains(t, yaml, "exists: false")
	assert.Contains(t, yaml, "runtime_home: /opt/jre")
	assert.Contains(t, yaml, "CompatibilityWarning")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "inspect must not write into the target")
}

func TestInspectReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := testutil.CreateTestFile(t, t.TempDir(), "bridge.env",
		"BRIDGECONF_RUNTIME_VERSION=3.10\nBRIDGECONF_RUNTIME_BITS=64\nBRIDGECONF_LOG_LEVEL=ERROR\n", 0644)
	var out bytes.Buffer

	code := Run([]string{"inspect", "--target-dir", dir, "--env-file", envFile}, &out)
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), expectedArchive(dir))

	_, set := os.LookupEnv("BRIDGECONF_RUNTIME_VERSION")
	assert.False(t, set, "env file must not leak into the process environment")
}

func TestInspectReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	config := testutil.CreateTestFile(t, t.TempDir(), "bridgeconf.yaml",
		"runtime-version: \"3.10\"\nruntime-bits: 64\nlog-level: ERROR\narchive-format: tar.zst\n", 0644)
	var out bytes.Buffer

	code := Run([]string{"inspect", "--target-dir", dir, "--config", config}, &out)
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), "-3.10.tar.zst")
}
