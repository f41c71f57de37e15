/* pkg/bridge_io/yaml.go */

package bridge_io

import (
	"context"
	"fmt"
	"io"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/fileops"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// WriteYAML marshals in and writes it atomically to filePath.
func WriteYAML(ctx context.Context, filePath string, in interface{}) error {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Writing YAML file", zap.String("path", filePath))

	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := fileops.WriteFileAtomic(filePath, data, shared.FilePermStandard); err != nil {
		logger.Error("Failed to write YAML file",
			zap.String("path", filePath),
			zap.Error(err))
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	logger.Debug("YAML file written",
		zap.String("path", filePath),
		zap.Int("size", len(data)))
	return nil
}

// EncodeYAML writes in to w as a YAML document.
func EncodeYAML(w io.Writer, in interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
