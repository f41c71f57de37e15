// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options describes one subprocess invocation. No shell is involved; Args
// are passed to the program verbatim.
type Options struct {
	Command string
	Args    []string
	Dir     string
	// Env is appended to the current environment for the child only.
	Env []string
	// Timeout of zero means the call runs until the child exits.
	Timeout time.Duration
	// Stream, when set, receives the child's combined output as it is produced.
	Stream io.Writer
	Logger *zap.Logger
}

// Run executes a command and returns its combined output. A non-zero exit
// is returned as an error wrapping *exec.ExitError; use ExitCode to read it.
func Run(ctx context.Context, opts Options) (string, error) {
	cmdStr := buildCommandString(opts.Command, opts.Args...)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ctx, span := telemetry.Start(ctx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)

	logger.Debug("Starting execution", zap.String("command", cmdStr), zap.String("dir", opts.Dir))

	cmd := exec.CommandContext(ctx, opts.Command, opts.Args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if opts.Stream != nil {
		out = io.MultiWriter(opts.Stream, &buf)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	output := buf.String()

	if err != nil {
		span.RecordError(err)
		code, _ := ExitCode(err)
		logger.Debug("Execution failed",
			zap.String("command", cmdStr),
			zap.Int("exit_code", code),
			zap.String("output", strings.TrimSpace(output)),
			zap.Error(err))
		return output, cerr.Wrapf(err, "command %q failed", opts.Command)
	}

	logger.Debug("Execution succeeded",
		zap.String("command", cmdStr),
		zap.String("output", strings.TrimSpace(output)))
	return output, nil
}

// ExitCode returns the child's exit status when err came from a process
// that started and exited. ok is false for failures to start at all.
func ExitCode(err error) (code int, ok bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return -1, false
}
