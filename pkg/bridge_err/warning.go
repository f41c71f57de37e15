// pkg/bridge_err/warning.go

package bridge_err

import "fmt"

// WarningKind groups advisory conditions. Warnings never abort a run.
type WarningKind string

const (
	// WarningCompatibility covers architecture and runtime version mismatches.
	WarningCompatibility WarningKind = "CompatibilityWarning"
	// WarningOptionalGeneration is a failed sub-configuration nobody required.
	WarningOptionalGeneration WarningKind = "DelegatedGenerationFailure"
)

type Warning struct {
	Kind    WarningKind `yaml:"kind" json:"kind"`
	Message string      `yaml:"message" json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// NewCompatibilityWarning formats an advisory compatibility message.
func NewCompatibilityWarning(format string, args ...any) Warning {
	return Warning{Kind: WarningCompatibility, Message: fmt.Sprintf(format, args...)}
}

// NewOptionalGenerationWarning records a failed sub-configuration that was not required.
func NewOptionalGenerationWarning(subConfig string, code int) Warning {
	return Warning{
		Kind:    WarningOptionalGeneration,
		Message: fmt.Sprintf("optional %s configuration could not be generated (helper exit code %d)", subConfig, code),
	}
}
