// pkg/bridge_cli/options_test.go

package bridge_cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/archive"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsedCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "bridgeconf"}
	AddPersistentFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadOptionsDefaults(t *testing.T) {
	opts, err := LoadOptions(parsedCommand(t))
	require.NoError(t, err)

	assert.Equal(t, ".", opts.TargetDir)
	assert.Equal(t, "python3", opts.RuntimeExe)
	assert.Equal(t, "INFO", opts.LogLevel)
	assert.Equal(t, "zip", opts.ArchiveFormat)
	assert.Zero(t, opts.HelperTimeout)
	assert.False(t, opts.Force)
}

func TestLoadOptionsPrecedence(t *testing.T) {
	dir := t.TempDir()
	config := testutil.CreateTestFile(t, dir, "bridgeconf.yaml",
		"req-arch: from-config\nruntime-exe: python3.9\nhelper-timeout: 30s\n", 0644)
	envFile := testutil.CreateTestFile(t, dir, ".env",
		"BRIDGECONF_RUNTIME_EXE=python3.11\nBRIDGECONF_FORCE=true\nUNRELATED=1\n", 0644)
	t.Setenv("BRIDGECONF_REQ_ARCH", "from-env")

	opts, err := LoadOptions(parsedCommand(t,
		"--config", config,
		"--env-file", envFile,
		"--java-home", "/opt/jre",
		"--req-secondary"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", opts.RequiredArch, "environment beats config file")
	assert.Equal(t, "python3.11", opts.RuntimeExe, "env file beats config file")
	assert.True(t, opts.Force)
	assert.Equal(t, 30*time.Second, opts.HelperTimeout)
	assert.Equal(t, "/opt/jre", opts.RuntimeHome)
	assert.True(t, opts.RequireSecondary)

	req := opts.Request()
	assert.Equal(t, "from-env", req.RequiredArch)
	assert.True(t, req.Force)
	assert.Equal(t, "/opt/jre", req.RuntimeHome)
}

func TestLoadOptionsRejects(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{name: "log level", args: []string{"--log-level", "CHATTY"}},
		{name: "archive format", args: []string{"--archive-format", "7z"}},
		{name: "runtime bits", args: []string{"--runtime-bits", "16"}},
		{name: "missing config", args: []string{"--config", filepath.Join(dir, "absent.yaml")}},
		{name: "missing env file", args: []string{"--env-file", filepath.Join(dir, "absent.env")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOptions(parsedCommand(t, tt.args...))
			require.Error(t, err)
			assert.Equal(t, bridge_err.ExitInvalidRequest, bridge_err.GetExitCode(err))
		})
	}
}

func TestOptionsLayout(t *testing.T) {
	t.Parallel()

	opts := &Options{TargetDir: "/srv/app", ArchiveFormat: "tgz", MinRuntimeVersion: "3.8"}
	layout := opts.Layout()
	assert.Equal(t, "/srv/app", layout.TargetDir)
	assert.Equal(t, archive.FormatTarGz, layout.ArchiveFormat)
	assert.Equal(t, "3.8", layout.MinRuntimeVersion)
	assert.Equal(t, "/srv/app/lib", layout.LibPath())
}

func TestOptionsContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, OptionsFrom(context.Background()))
	opts := &Options{TargetDir: "x"}
	assert.Same(t, opts, OptionsFrom(WithOptions(context.Background(), opts)))
}

func TestEnvToSettings(t *testing.T) {
	t.Parallel()

	got := envToSettings(map[string]string{
		"BRIDGECONF_REQ_ARCH":   "arm64",
		"BRIDGECONF_TARGET_DIR": "/srv",
		"PATH":                  "/usr/bin",
		"BRIDGECONFX_SOMETHING": "ignored",
	})
	assert.Equal(t, map[string]interface{}{"req-arch": "arm64", "target-dir": "/srv"}, got)
}
