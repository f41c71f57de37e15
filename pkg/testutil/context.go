package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_io"
	"go.uber.org/zap/zaptest"
)

// NewTestContext creates a RuntimeContext suitable for testing
func NewTestContext(t *testing.T) *bridge_io.RuntimeContext {
	t.Helper()
	return &bridge_io.RuntimeContext{
		Ctx:        context.Background(),
		Log:        zaptest.NewLogger(t),
		Timestamp:  time.Now(),
		Command:    t.Name(),
		Attributes: make(map[string]string),
	}
}
