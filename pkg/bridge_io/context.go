// pkg/bridge_io/context.go

package bridge_io

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	RunID      string
	Command    string
	Attributes map[string]string
}

// NewContext sets up tracing and a logger scoped to one command invocation.
func NewContext(parent context.Context, cmdName string) *RuntimeContext {
	runID := uuid.New().String()
	ctx, span := telemetry.Start(parent, cmdName, attribute.String("run_id", runID))

	log := logger.GetLogger().With(
		zap.String("command", cmdName),
		zap.String("run_id", runID),
	)

	return &RuntimeContext{
		Ctx:        ctx,
		Span:       span,
		Log:        log,
		Timestamp:  time.Now(),
		RunID:      runID,
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an unhandled failure.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = bridge_err.NewUnhandledFailure(cerr.AssertionFailedf("panic: %v", r))
		rc.Log.Error("Panic recovered", zap.Any("panic", r), zap.Stack("stack"))
	}
}

// End logs outcome, records it on the command span, and flushes.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	duration := time.Since(rc.Timestamp)
	var err error
	if errPtr != nil {
		err = *errPtr
	}

	if err == nil {
		rc.Log.Debug("Command completed", zap.Duration("duration", duration))
	} else {
		rc.Log.Debug("Command failed",
			zap.Duration("duration", duration),
			zap.String("category", bridge_err.CategoryOf(err).String()),
			zap.Int("exit_code", bridge_err.GetExitCode(err)),
			zap.Error(err))
		rc.Span.RecordError(err)
		rc.Span.SetStatus(codes.Error, bridge_err.CategoryOf(err).String())
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.Int("exit_code", bridge_err.GetExitCode(err)),
		attribute.String("os", runtime.GOOS),
		attribute.String("args", strings.Join(os.Args[1:], " ")),
		attribute.String("version", shared.Version),
	}
	for k, v := range rc.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	rc.Span.SetAttributes(attrs...)
}
