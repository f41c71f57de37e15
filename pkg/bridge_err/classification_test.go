package bridge_err

import (
	"errors"
	"fmt"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: ExitSuccess},
		{name: "missing archive", err: NewMissingArchiveError("/opt/lib/jpy.zip"), want: ExitMissingArchive},
		{name: "missing helper", err: NewMissingHelperError("/opt/jpyutil.py"), want: ExitMissingHelper},
		{name: "delegated failure keeps helper code", err: NewDelegatedGenerationFailure("primary", 3), want: 3},
		{name: "delegated failure without code", err: NewDelegatedGenerationFailure("primary", 0), want: ExitUnhandled},
		{name: "invalid request", err: NewInvalidRequest("bad log level", nil), want: ExitInvalidRequest},
		{name: "plain error", err: errors.New("boom"), want: ExitUnhandled},
		{name: "wrapped classified error", err: fmt.Errorf("outer: %w", NewMissingHelperError("x")), want: ExitMissingHelper},
		{name: "stacked classified error", err: cerr.WithStack(NewMissingArchiveError("x")), want: ExitMissingArchive},
		{name: "inside multierror", err: multierror.Append(nil, NewMissingArchiveError("x")), want: ExitMissingArchive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestMissingArchiveErrorCarriesPath(t *testing.T) {
	t.Parallel()

	err := NewMissingArchiveError("/srv/snap/lib/jpy-linux-x86_64-3.10.zip")

	var classified *ClassifiedError
	assert.True(t, errors.As(err, &classified))
	assert.Equal(t, "/srv/snap/lib/jpy-linux-x86_64-3.10.zip", classified.Path)
	assert.Contains(t, err.Error(), "jpy-linux-x86_64-3.10.zip")
	assert.NotEmpty(t, cerr.GetAllHints(err))
	assert.True(t, Is(err, CategoryMissingArchive))
	assert.False(t, Is(err, CategoryMissingHelper))
}

func TestNewUnhandledFailure(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewUnhandledFailure(nil))

	cause := errors.New("disk full")
	err := NewUnhandledFailure(cause)
	assert.Equal(t, CategoryUnhandled, CategoryOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")

	classified := NewMissingHelperError("x")
	assert.Same(t, classified, NewUnhandledFailure(classified))
}

func TestCategoryString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "MissingArchiveError", CategoryMissingArchive.String())
	assert.Equal(t, "MissingHelperError", CategoryMissingHelper.String())
	assert.Equal(t, "DelegatedGenerationFailure", CategoryDelegatedGeneration.String())
	assert.Equal(t, "UnhandledFailure", CategoryUnhandled.String())
}

func TestWarnings(t *testing.T) {
	t.Parallel()

	w := NewCompatibilityWarning("requested %q, detected %q", "amd64", "arm64")
	assert.Equal(t, WarningCompatibility, w.Kind)
	assert.Contains(t, w.String(), "amd64")
	assert.Contains(t, w.String(), "arm64")

	o := NewOptionalGenerationWarning("secondary", 2)
	assert.Equal(t, WarningOptionalGeneration, o.Kind)
	assert.Contains(t, o.Message, "exit code 2")
}
