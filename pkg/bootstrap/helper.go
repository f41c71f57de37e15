// pkg/bootstrap/helper.go

package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_io"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Exit status bits reported by the configuration helper.
const (
	HelperPrimaryFailed   = 1
	HelperSecondaryFailed = 2
)

// GenerateRequest is passed to the helper for one generation run.
type GenerateRequest struct {
	HelperPath string
	// OutDir receives both configuration files.
	OutDir string
	// SearchPath must be importable by the helper; it is handed to the child
	// process only.
	SearchPath       string
	RuntimeHome      string
	RequirePrimary   bool
	RequireSecondary bool
}

// Helper generates the configuration files. It returns the helper's exit
// status; err is reserved for a helper that could not be run at all.
type Helper interface {
	Generate(rc *bridge_io.RuntimeContext, req GenerateRequest) (code int, err error)
}

// HelperFlags are the command-line spellings the helper script accepts.
type HelperFlags struct {
	Out              string
	RuntimeHome      string
	RequirePrimary   string
	RequireSecondary string
}

// DefaultHelperFlags matches jpyutil.py.
var DefaultHelperFlags = HelperFlags{
	Out:              "--out",
	RuntimeHome:      "--java_home",
	RequirePrimary:   "--req_java",
	RequireSecondary: "--req_py",
}

// SubprocessHelper runs the helper script with the scripting runtime.
type SubprocessHelper struct {
	RuntimeExe    string
	SearchPathEnv string
	Flags         HelperFlags
	// Timeout of zero lets the helper run until it exits.
	Timeout time.Duration
}

func NewSubprocessHelper(runtimeExe string) *SubprocessHelper {
	if runtimeExe == "" {
		runtimeExe = shared.DefaultRuntimeExe
	}
	return &SubprocessHelper{
		RuntimeExe:    runtimeExe,
		SearchPathEnv: shared.DefaultSearchPathEnv,
		Flags:         DefaultHelperFlags,
	}
}

// Args builds the helper command line after the runtime executable.
func (h *SubprocessHelper) Args(req GenerateRequest) []string {
	args := []string{req.HelperPath, h.Flags.Out, req.OutDir}
	if req.RuntimeHome != "" {
		args = append(args, h.Flags.RuntimeHome, req.RuntimeHome)
	}
	if req.RequirePrimary {
		args = append(args, h.Flags.RequirePrimary)
	}
	if req.RequireSecondary {
		args = append(args, h.Flags.RequireSecondary)
	}
	return args
}

// Env prepends the search path to whatever the tool itself was started with.
func (h *SubprocessHelper) Env(req GenerateRequest) []string {
	if h.SearchPathEnv == "" || req.SearchPath == "" {
		return nil
	}
	value := req.SearchPath
	if existing := os.Getenv(h.SearchPathEnv); existing != "" {
		value += string(filepath.ListSeparator) + existing
	}
	return []string{h.SearchPathEnv + "=" + value}
}

func (h *SubprocessHelper) Generate(rc *bridge_io.RuntimeContext, req GenerateRequest) (int, error) {
	logger := otelzap.Ctx(rc.Ctx)

	args := h.Args(req)
	logger.Info("Generating configuration files",
		zap.String("helper", req.HelperPath),
		zap.String("out", req.OutDir),
		zap.String("runtime_home", req.RuntimeHome))

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: h.RuntimeExe,
		Args:    args,
		Dir:     req.OutDir,
		Env:     h.Env(req),
		Timeout: h.Timeout,
		Logger:  rc.Log,
	})
	if out = strings.TrimSpace(out); out != "" {
		logger.Debug("Helper output", zap.String("output", out))
	}
	if err == nil {
		return 0, nil
	}

	code, exited := execute.ExitCode(err)
	if !exited {
		return -1, cerr.Wrapf(err, "failed to start configuration helper with %s", h.RuntimeExe)
	}
	if code < 0 {
		// killed by a signal or by the timeout
		return code, cerr.Wrap(err, "configuration helper did not exit normally")
	}
	return code, nil
}
