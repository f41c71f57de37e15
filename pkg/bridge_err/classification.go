// pkg/bridge_err/classification.go
//
// Error classification with the process exit codes the CLI reports.

package bridge_err

import (
	"errors"
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategoryUnhandled - anything we did not anticipate (exit 100)
	CategoryUnhandled ErrorCategory = iota
	// CategoryValidation - invalid flags, env or config file (exit 2)
	CategoryValidation
	// CategoryMissingArchive - no bridge archive for this platform (exit 10)
	CategoryMissingArchive
	// CategoryMissingHelper - extracted archive lacks the generation helper (exit 20)
	CategoryMissingHelper
	// CategoryDelegatedGeneration - a required sub-configuration failed (helper exit code)
	CategoryDelegatedGeneration
)

const (
	ExitSuccess        = 0
	ExitInvalidRequest = 2
	ExitMissingArchive = 10
	ExitMissingHelper  = 20
	ExitUnhandled      = 100
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryValidation:
		return "InvalidRequest"
	case CategoryMissingArchive:
		return "MissingArchiveError"
	case CategoryMissingHelper:
		return "MissingHelperError"
	case CategoryDelegatedGeneration:
		return "DelegatedGenerationFailure"
	default:
		return "UnhandledFailure"
	}
}

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Path        string
	Code        int
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return ExitInvalidRequest
	case CategoryMissingArchive:
		return ExitMissingArchive
	case CategoryMissingHelper:
		return ExitMissingHelper
	case CategoryDelegatedGeneration:
		if e.Code != 0 {
			return e.Code
		}
		return ExitUnhandled
	default:
		return ExitUnhandled
	}
}

// GetExitCode extracts exit code from any error.
// Returns 0 for nil, the category code for classified errors, 100 for others.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}
	return ExitUnhandled
}

// CategoryOf reports the category of err, CategoryUnhandled when it was never classified.
func CategoryOf(err error) ErrorCategory {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}
	return CategoryUnhandled
}

// Is reports whether err carries the given category anywhere in its chain.
func Is(err error, category ErrorCategory) bool {
	return err != nil && CategoryOf(err) == category
}

func withHints(err *ClassifiedError) error {
	var out error = err
	for _, hint := range err.Remediation {
		out = cerr.WithHint(out, hint)
	}
	return out
}

// NewMissingArchiveError reports that the platform archive is not in the library directory.
func NewMissingArchiveError(path string) error {
	return withHints(&ClassifiedError{
		Category: CategoryMissingArchive,
		Message:  fmt.Sprintf("bridge archive not found: %s", path),
		Path:     path,
		Remediation: []string{
			"Copy the archive built for this platform and runtime version into the library directory",
			"Check --req-arch and --runtime-exe if the expected name looks wrong",
		},
	})
}

// NewMissingHelperError reports that the configuration helper was not extracted.
func NewMissingHelperError(path string) error {
	return withHints(&ClassifiedError{
		Category: CategoryMissingHelper,
		Message:  fmt.Sprintf("configuration helper not found: %s", path),
		Path:     path,
		Remediation: []string{
			"The extracted archive looks incomplete",
			"Re-run with --force to extract it again",
		},
	})
}

// NewDelegatedGenerationFailure reports that a required sub-configuration could not be generated.
func NewDelegatedGenerationFailure(subConfig string, code int) error {
	return withHints(&ClassifiedError{
		Category:    CategoryDelegatedGeneration,
		Message:     fmt.Sprintf("required %s configuration could not be generated (helper exit code %d)", subConfig, code),
		Code:        code,
		Remediation: []string{"Run with --log-level DEBUG to see the helper output"},
	})
}

// NewInvalidRequest reports bad invocation parameters.
func NewInvalidRequest(message string, cause error) error {
	return withHints(&ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Cause:       cause,
		Remediation: []string{"Review the flags with: bridgeconf --help"},
	})
}

// NewUnhandledFailure maps an unexpected error onto the catch-all category.
// Errors that are already classified are returned as is.
func NewUnhandledFailure(cause error) error {
	if cause == nil {
		return nil
	}
	var classified *ClassifiedError
	if errors.As(cause, &classified) {
		return cause
	}
	return &ClassifiedError{
		Category: CategoryUnhandled,
		Message:  "unhandled failure",
		Cause:    cause,
	}
}
