// pkg/bootstrap/resolver.go
//
// The resolver decides which of the two setup steps still need to run for
// a target directory, runs them, and reports one aggregated result. Both
// steps are guarded by marker files so a second run without force changes
// nothing on disk.

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/archive"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_io"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/fileops"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/python"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Resolver prepares one target directory for one platform.
type Resolver struct {
	Platform platform.Descriptor
	Layout   Layout
	Helper   Helper
	// WorkDir anchors the runtime home probe. Empty means the process
	// working directory.
	WorkDir string
}

func NewResolver(desc platform.Descriptor, layout Layout, helper Helper) *Resolver {
	return &Resolver{Platform: desc, Layout: layout, Helper: helper}
}

// markerRecord is the extraction marker's content. Only its presence matters
// to the resolver.
type markerRecord struct {
	Archive     string    `yaml:"archive"`
	Digest      string    `yaml:"blake3"`
	Files       int       `yaml:"files"`
	ExtractedAt time.Time `yaml:"extracted_at"`
}

// Resolve runs the compatibility check, extraction and configuration
// generation in that order. Fatal conditions stop the run; warnings
// accumulate. A panic is reported as an unhandled failure.
func (r *Resolver) Resolve(rc *bridge_io.RuntimeContext, req Request) (result *Result) {
	logger := otelzap.Ctx(rc.Ctx)
	b := &resultBuilder{}

	defer func() {
		if p := recover(); p != nil {
			logger.Error("Resolver panicked", zap.Any("panic", p), zap.Stack("stack"))
			b.fail(bridge_err.NewUnhandledFailure(cerr.AssertionFailedf("panic during resolve: %v", p)))
			result = b.build()
		}
	}()

	logger.Info("Resolving bridge setup",
		zap.String("platform", r.Platform.String()),
		zap.String("target", r.Layout.TargetDir),
		zap.Bool("force", req.Force))

	for _, w := range r.compatibilityWarnings(req) {
		logger.Warn(w.Message)
		b.warn(w)
	}
	b.step(StepCompatibility, StepRan, "")

	proceed, err := r.extract(rc, req, b)
	if err != nil {
		b.step(StepExtract, StepFailed, err.Error())
		b.fail(bridge_err.NewUnhandledFailure(err))
		return b.build()
	}
	if !proceed {
		return b.build()
	}

	if err := r.configure(rc, req, b); err != nil {
		b.step(StepConfigure, StepFailed, err.Error())
		b.fail(bridge_err.NewUnhandledFailure(err))
		return b.build()
	}

	return b.build()
}

// compatibilityWarnings never blocks; it only explains why the chosen
// archive may not load.
func (r *Resolver) compatibilityWarnings(req Request) []bridge_err.Warning {
	var warnings []bridge_err.Warning

	if req.RequiredArch != "" {
		if !strings.EqualFold(req.RequiredArch, r.Platform.Arch) {
			warnings = append(warnings, bridge_err.NewCompatibilityWarning(
				"required architecture %q does not match detected architecture %q",
				req.RequiredArch, r.Platform.Arch))
		}
		if r.Platform.Is64Bit() && !platform.Is64BitAlias(req.RequiredArch) {
			warnings = append(warnings, bridge_err.NewCompatibilityWarning(
				"scripting runtime is 64-bit but required architecture %q is not a known 64-bit architecture (%s)",
				req.RequiredArch, strings.Join(platform.Known64BitArchitectures, ", ")))
		}
	}

	if r.Layout.MinRuntimeVersion != "" {
		minimum, err := python.ParseVersion(r.Layout.MinRuntimeVersion)
		if err != nil {
			warnings = append(warnings, bridge_err.NewCompatibilityWarning(
				"ignoring unparsable minimum runtime version %q", r.Layout.MinRuntimeVersion))
		} else if current, err := python.ParseVersion(r.Platform.RuntimeVersion); err == nil && current.LessThan(minimum) {
			warnings = append(warnings, bridge_err.NewCompatibilityWarning(
				"scripting runtime %s is older than the minimum supported %s",
				r.Platform.RuntimeVersion, r.Layout.MinRuntimeVersion))
		}
	}

	return warnings
}

// ArchiveReference locates the archive for this platform in the library directory.
func (r *Resolver) ArchiveReference() (ArchiveReference, error) {
	name := r.Layout.ArchiveName(r.Platform)
	ref := ArchiveReference{Name: name, Path: filepath.Join(r.Layout.LibPath(), name)}

	exists, err := fileops.Exists(ref.Path)
	if err != nil {
		return ref, err
	}
	ref.Exists = exists
	return ref, nil
}

// extract reports false when the run must stop because the archive is missing.
func (r *Resolver) extract(rc *bridge_io.RuntimeContext, req Request, b *resultBuilder) (bool, error) {
	ctx, span := telemetry.Start(rc.Ctx, "bootstrap.extract")
	defer span.End()
	logger := otelzap.Ctx(ctx)

	extracted, err := fileops.Exists(r.Layout.MarkerPath())
	if err != nil {
		return false, err
	}
	if extracted && !req.Force {
		logger.Debug("Archive already extracted", zap.String("marker", r.Layout.MarkerPath()))
		b.step(StepExtract, StepSkipped, "marker present")
		return true, nil
	}

	ref, err := r.ArchiveReference()
	if err != nil {
		return false, err
	}
	span.SetAttributes(attribute.String("archive", ref.Path))
	if !ref.Exists {
		missing := bridge_err.NewMissingArchiveError(ref.Path)
		logger.Error("Bridge archive not found", zap.String("path", ref.Path))
		b.step(StepExtract, StepFailed, missing.Error())
		b.fail(missing)
		return false, nil
	}

	logger.Info("Extracting bridge archive",
		zap.String("archive", ref.Path),
		zap.String("target", r.Layout.TargetDir))

	summary, err := archive.Extract(ctx, ref.Path, r.Layout.TargetDir, r.Layout.ArchiveFormat)
	if err != nil {
		return false, cerr.Wrapf(err, "failed to extract %s", ref.Name)
	}

	if err := bridge_io.WriteYAML(ctx, r.Layout.MarkerPath(), markerRecord{
		Archive:     ref.Name,
		Digest:      summary.Digest.String(),
		Files:       summary.Files,
		ExtractedAt: time.Now().UTC(),
	}); err != nil {
		return false, cerr.Wrap(err, "failed to write extraction marker")
	}

	logger.Info("Archive extracted",
		zap.Int("files", summary.Files),
		zap.Int("links", summary.Links),
		zap.Int("skipped", summary.Skipped),
		zap.String("blake3", summary.Digest.String()))
	b.step(StepExtract, StepRan, ref.Name)
	return true, nil
}

func (r *Resolver) configure(rc *bridge_io.RuntimeContext, req Request, b *resultBuilder) error {
	ctx, span := telemetry.Start(rc.Ctx, "bootstrap.configure")
	defer span.End()
	logger := otelzap.Ctx(ctx)

	primary, err := fileops.Exists(r.Layout.PrimaryPath())
	if err != nil {
		return err
	}
	secondary, err := fileops.Exists(r.Layout.SecondaryPath())
	if err != nil {
		return err
	}
	if primary && secondary && !req.Force {
		logger.Debug("Configuration files already present")
		b.step(StepConfigure, StepSkipped, "configuration files present")
		return nil
	}

	helperPresent, err := fileops.Exists(r.Layout.HelperPath())
	if err != nil {
		return err
	}
	if !helperPresent {
		missing := bridge_err.NewMissingHelperError(r.Layout.HelperPath())
		logger.Error("Configuration helper not found", zap.String("path", r.Layout.HelperPath()))
		b.step(StepConfigure, StepFailed, missing.Error())
		b.fail(missing)
		return nil
	}

	target, err := filepath.Abs(r.Layout.TargetDir)
	if err != nil {
		return cerr.Wrap(err, "failed to resolve target directory")
	}
	runtimeHome, err := r.EffectiveRuntimeHome(req)
	if err != nil {
		return err
	}

	hrc := *rc
	hrc.Ctx = ctx
	code, err := r.Helper.Generate(&hrc, GenerateRequest{
		HelperPath:       filepath.Join(target, r.Layout.HelperName),
		OutDir:           target,
		SearchPath:       target,
		RuntimeHome:      runtimeHome,
		RequirePrimary:   req.RequirePrimary,
		RequireSecondary: req.RequireSecondary,
	})
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("helper.exit_code", code))

	if code == 0 {
		logger.Info("Configuration files generated",
			zap.String("primary", r.Layout.PrimaryPath()),
			zap.String("secondary", r.Layout.SecondaryPath()))
		b.step(StepConfigure, StepRan, "")
		return nil
	}

	fatal := r.classifyHelperExit(ctx, code, req, b)
	if fatal != nil {
		b.step(StepConfigure, StepFailed, fatal.Error())
		b.fail(fatal)
		return nil
	}
	b.step(StepConfigure, StepRan, "completed with warnings")
	return nil
}

// classifyHelperExit applies the helper's exit contract: bit 1 is the
// primary file, bit 2 the secondary one, anything else counts against
// both. Required failures are returned, optional ones become warnings.
func (r *Resolver) classifyHelperExit(ctx context.Context, code int, req Request, b *resultBuilder) error {
	logger := otelzap.Ctx(ctx)

	primaryFailed := code&HelperPrimaryFailed != 0
	secondaryFailed := code&HelperSecondaryFailed != 0
	if code&^(HelperPrimaryFailed|HelperSecondaryFailed) != 0 {
		primaryFailed, secondaryFailed = true, true
	}

	var fatal *multierror.Error
	check := func(failed, required bool, name string) {
		if !failed {
			return
		}
		if required {
			logger.Error("Required configuration could not be generated",
				zap.String("config", name), zap.Int("exit_code", code))
			fatal = multierror.Append(fatal, bridge_err.NewDelegatedGenerationFailure(name, code))
			return
		}
		w := bridge_err.NewOptionalGenerationWarning(name, code)
		logger.Warn(w.Message)
		b.warn(w)
	}
	check(primaryFailed, req.RequirePrimary, r.Layout.PrimaryConfig)
	check(secondaryFailed, req.RequireSecondary, r.Layout.SecondaryConfig)

	return fatal.ErrorOrNil()
}

// EffectiveRuntimeHome is the request's runtime home, or the conventional
// location relative to the working directory when that exists. Relative
// values resolve against the working directory, not the target.
func (r *Resolver) EffectiveRuntimeHome(req Request) (string, error) {
	base, err := r.workDir()
	if err != nil {
		return "", err
	}

	if req.RuntimeHome != "" {
		home := fileops.ExpandPath(req.RuntimeHome)
		if !filepath.IsAbs(home) {
			home = filepath.Join(base, home)
		}
		return filepath.Clean(home), nil
	}
	if r.Layout.RuntimeHomeProbe == "" {
		return "", nil
	}

	probe := filepath.Clean(filepath.Join(base, r.Layout.RuntimeHomeProbe))
	if fileops.DirExists(probe) {
		return probe, nil
	}
	return "", nil
}

func (r *Resolver) workDir() (string, error) {
	if r.WorkDir != "" {
		return filepath.Abs(r.WorkDir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", cerr.Wrap(err, "failed to determine working directory")
	}
	return wd, nil
}

// Inspect reports what Resolve would do without touching the filesystem.
func (r *Resolver) Inspect(req Request) (*Plan, error) {
	ref, err := r.ArchiveReference()
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Platform:         r.Platform,
		TargetDir:        r.Layout.TargetDir,
		Archive:          ref,
		Extracted:        fileops.FileExists(r.Layout.MarkerPath()),
		PrimaryPresent:   fileops.FileExists(r.Layout.PrimaryPath()),
		SecondaryPresent: fileops.FileExists(r.Layout.SecondaryPath()),
		HelperPresent:    fileops.FileExists(r.Layout.HelperPath()),
		Warnings:         r.compatibilityWarnings(req),
	}
	if plan.RuntimeHome, err = r.EffectiveRuntimeHome(req); err != nil {
		return nil, err
	}

	plan.Steps = append(plan.Steps, StepResult{Name: StepCompatibility, Status: StepPending})

	switch {
	case plan.Extracted && !req.Force:
		plan.Steps = append(plan.Steps, StepResult{Name: StepExtract, Status: StepSkipped, Detail: "marker present"})
	case !ref.Exists:
		plan.Steps = append(plan.Steps, StepResult{Name: StepExtract, Status: StepFailed, Detail: "archive missing: " + ref.Path})
		return plan, nil
	default:
		plan.Steps = append(plan.Steps, StepResult{Name: StepExtract, Status: StepPending, Detail: ref.Name})
	}

	if plan.PrimaryPresent && plan.SecondaryPresent && !req.Force {
		plan.Steps = append(plan.Steps, StepResult{Name: StepConfigure, Status: StepSkipped, Detail: "configuration files present"})
	} else {
		plan.Steps = append(plan.Steps, StepResult{Name: StepConfigure, Status: StepPending})
	}
	return plan, nil
}
