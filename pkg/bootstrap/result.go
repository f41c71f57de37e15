// pkg/bootstrap/result.go

package bootstrap

import (
	"errors"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/hashicorp/go-multierror"
)

// Result is the outcome of one Resolve call. It is complete when returned
// and exposes copies only.
type Result struct {
	code     int
	warnings []bridge_err.Warning
	errs     []error
	steps    []StepResult
}

// Code is the process exit code for this outcome.
func (r *Result) Code() int { return r.code }

// Success is true when no error was recorded.
func (r *Result) Success() bool { return len(r.errs) == 0 }

func (r *Result) Warnings() []bridge_err.Warning {
	return append([]bridge_err.Warning(nil), r.warnings...)
}

func (r *Result) Errors() []error {
	return append([]error(nil), r.errs...)
}

func (r *Result) Steps() []StepResult {
	return append([]StepResult(nil), r.steps...)
}

// Step returns the outcome recorded for name, if the step was reached.
func (r *Result) Step(name string) (StepResult, bool) {
	for _, s := range r.steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Err folds every recorded error into one, nil on success. The exit code
// of the first error wins.
func (r *Result) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	if len(r.errs) == 1 {
		return r.errs[0]
	}
	var merr *multierror.Error
	for _, err := range r.errs {
		merr = multierror.Append(merr, err)
	}
	return merr
}

type resultDocument struct {
	Code     int                  `yaml:"code"`
	Success  bool                 `yaml:"success"`
	Warnings []bridge_err.Warning `yaml:"warnings,omitempty"`
	Errors   []errorDocument      `yaml:"errors,omitempty"`
	Steps    []StepResult         `yaml:"steps"`
}

type errorDocument struct {
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
	Path    string `yaml:"path,omitempty"`
}

// MarshalYAML renders the result for --report.
func (r *Result) MarshalYAML() (interface{}, error) {
	doc := resultDocument{
		Code:     r.code,
		Success:  r.Success(),
		Warnings: r.warnings,
		Steps:    r.steps,
	}
	for _, err := range r.errs {
		ed := errorDocument{
			Kind:    bridge_err.CategoryOf(err).String(),
			Message: err.Error(),
		}
		var classified *bridge_err.ClassifiedError
		if errors.As(err, &classified) {
			ed.Path = classified.Path
		}
		doc.Errors = append(doc.Errors, ed)
	}
	return doc, nil
}

// resultBuilder accumulates outcomes while Resolve runs.
type resultBuilder struct {
	warnings []bridge_err.Warning
	errs     []error
	steps    []StepResult
}

func (b *resultBuilder) warn(w bridge_err.Warning) {
	b.warnings = append(b.warnings, w)
}

// fail records err, flattening aggregated errors so each keeps its own category.
func (b *resultBuilder) fail(err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		b.errs = append(b.errs, merr.Errors...)
		return
	}
	b.errs = append(b.errs, err)
}

func (b *resultBuilder) step(name string, status StepStatus, detail string) {
	b.steps = append(b.steps, StepResult{Name: name, Status: status, Detail: detail})
}

func (b *resultBuilder) build() *Result {
	r := &Result{
		warnings: append([]bridge_err.Warning(nil), b.warnings...),
		errs:     append([]error(nil), b.errs...),
		steps:    append([]StepResult(nil), b.steps...),
	}
	if len(r.errs) > 0 {
		r.code = bridge_err.GetExitCode(r.errs[0])
	}
	return r
}
