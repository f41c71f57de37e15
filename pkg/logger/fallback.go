/* pkg/logger/fallback.go */

package logger

import (
	"os"

	"go.uber.org/zap"
)

// NewFallbackLogger logs INFO and above to stderr. It is used until flags
// have been parsed, and whenever the configured logger cannot be built.
func NewFallbackLogger() *zap.Logger {
	l, _, err := New(Options{Level: os.Getenv("LOG_LEVEL")}, os.Stderr)
	if err != nil {
		l, _, _ = New(Options{}, os.Stderr)
	}
	return l
}

// InitFallback installs the fallback logger unless one is already present.
func InitFallback() {
	if L() != nil {
		return
	}
	SetLogger(NewFallbackLogger())
}

// GetLogger returns the process logger, installing the fallback on first use.
func GetLogger() *zap.Logger {
	InitFallback()
	return L()
}
