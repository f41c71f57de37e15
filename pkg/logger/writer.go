// pkg/logger/writer.go

package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
	"go.uber.org/zap/zapcore"
)

// GetLogFileWriter opens path for appending, creating parent directories.
func GetLogFileWriter(path string) (zapcore.WriteSyncer, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), shared.DirPermStandard); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, shared.FilePermStandard)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return zapcore.AddSync(file), file.Close, nil
}
