package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitDisabledUsesNoop(t *testing.T) {
	t.Setenv(EnvEnabled, "")

	shutdown, err := Init("bridgeconf-test")
	require.NoError(t, err)

	_, span := Start(context.Background(), "noop", attribute.String("k", "v"))
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitEnabledWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans", "telemetry.jsonl")
	t.Setenv(EnvEnabled, "1")
	t.Setenv(EnvFile, path)

	shutdown, err := Init("bridgeconf-test")
	require.NoError(t, err)

	_, span := Start(context.Background(), "bootstrap.extract", attribute.String("archive", "jpy.zip"))
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bootstrap.extract")
	assert.Contains(t, string(data), "jpy.zip")

	// leave the package tracer in a usable state for other tests
	t.Setenv(EnvEnabled, "")
	_, err = Init("bridgeconf-test")
	require.NoError(t, err)
}
