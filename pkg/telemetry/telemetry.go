// pkg/telemetry/telemetry.go
package telemetry

import (
	"context"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
)

const (
	// EnvEnabled turns span export on when set to "1".
	EnvEnabled = shared.EnvPrefix + "_TELEMETRY"
	// EnvFile overrides where spans are written.
	EnvFile = shared.EnvPrefix + "_TELEMETRY_FILE"
)

var tracer trace.Tracer = noop.NewTracerProvider().Tracer(shared.BridgeconfID)

// ShutdownFunc flushes and closes the exporter.
type ShutdownFunc func(context.Context) error

// Init configures OpenTelemetry; call this once flags are parsed.
// Spans go to a JSONL file only when BRIDGECONF_TELEMETRY=1.
func Init(service string) (ShutdownFunc, error) {
	if !IsEnabled() {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(service)
		return func(context.Context) error { return nil }, nil
	}

	path := telemetryFile()
	if err := os.MkdirAll(filepath.Dir(path), shared.DirPermStandard); err != nil {
		return nil, cerr.Wrap(err, "failed to create telemetry directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, shared.FilePermStandard)
	if err != nil {
		return nil, cerr.Wrap(err, "failed to open telemetry file")
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		_ = file.Close()
		return nil, cerr.Wrap(err, "failed to create file exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exp),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", service),
			attribute.String("service.version", shared.Version),
			attribute.String("host.name", hostname()),
		)),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(service)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		return err
	}, nil
}

// Start a telemetry span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// IsEnabled reports whether span export was requested.
func IsEnabled() bool {
	return os.Getenv(EnvEnabled) == "1"
}

func telemetryFile() string {
	if path := os.Getenv(EnvFile); path != "" {
		return path
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, shared.BridgeconfID, "telemetry.jsonl")
	}
	return filepath.Join(os.TempDir(), shared.BridgeconfID, "telemetry.jsonl")
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
