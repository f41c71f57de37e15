//go:build unix

package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHelper records its arguments and search path in the output directory,
// then exits with the code stored in <out>/exit-code, if any.
const stubHelper = `out="$2"
printf '%s\n' "$@" > "$out/args.txt"
printf '%s' "$PYTHONPATH" > "$out/searchpath.txt"
exit "$(cat "$out/exit-code" 2>/dev/null || echo 0)"
`

func TestSubprocessHelperArgs(t *testing.T) {
	t.Parallel()

	h := NewSubprocessHelper("")
	assert.Equal(t, "python3", h.RuntimeExe)

	args := h.Args(GenerateRequest{
		HelperPath:       "/t/jpyutil.py",
		OutDir:           "/t",
		RuntimeHome:      "/jre",
		RequirePrimary:   true,
		RequireSecondary: true,
	})
	assert.Equal(t, []string{"/t/jpyutil.py", "--out", "/t", "--java_home", "/jre", "--req_java", "--req_py"}, args)

	args = h.Args(GenerateRequest{HelperPath: "/t/jpyutil.py", OutDir: "/t"})
	assert.Equal(t, []string{"/t/jpyutil.py", "--out", "/t"}, args)
}

func TestSubprocessHelperGenerate(t *testing.T) {
	dir := t.TempDir()
	script := testutil.CreateTestFile(t, dir, "jpyutil.py", stubHelper, 0644)
	t.Setenv("PYTHONPATH", "/already/there")

	h := NewSubprocessHelper("/bin/sh")
	rc := testutil.NewTestContext(t)

	code, err := h.Generate(rc, GenerateRequest{
		HelperPath:     script,
		OutDir:         dir,
		SearchPath:     dir,
		RuntimeHome:    "/opt/jre",
		RequirePrimary: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"--out", dir, "--java_home", "/opt/jre", "--req_java"},
		strings.Split(strings.TrimSpace(string(args)), "\n"))

	searchPath, err := os.ReadFile(filepath.Join(dir, "searchpath.txt"))
	require.NoError(t, err)
	assert.Equal(t, dir+string(filepath.ListSeparator)+"/already/there", string(searchPath))

	// the tool's own environment is untouched
	assert.Equal(t, "/already/there", os.Getenv("PYTHONPATH"))
}

func TestSubprocessHelperExitCode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := testutil.CreateTestFile(t, dir, "jpyutil.py", stubHelper, 0644)
	testutil.CreateTestFile(t, dir, "exit-code", "2", 0644)

	code, err := NewSubprocessHelper("/bin/sh").Generate(testutil.NewTestContext(t), GenerateRequest{
		HelperPath: script,
		OutDir:     dir,
		SearchPath: dir,
	})
	require.NoError(t, err)
	assert.Equal(t, HelperSecondaryFailed, code)
}

func TestSubprocessHelperMissingRuntime(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewSubprocessHelper(filepath.Join(dir, "no-such-python")).Generate(testutil.NewTestContext(t), GenerateRequest{
		HelperPath: filepath.Join(dir, "jpyutil.py"),
		OutDir:     dir,
	})
	assert.Error(t, err)
}
