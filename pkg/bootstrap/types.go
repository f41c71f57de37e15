// pkg/bootstrap/types.go

package bootstrap

import (
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/archive"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
	"github.com/go-playground/validator/v10"
)

// Request is what the caller asks the resolver to do.
type Request struct {
	// RuntimeHome overrides the probed host runtime home when set.
	RuntimeHome string `yaml:"runtime_home,omitempty"`
	// RequiredArch is compared against the detected architecture; empty skips the check.
	RequiredArch     string `yaml:"required_arch,omitempty" validate:"omitempty,printascii,max=32,excludesall=/"`
	Force            bool   `yaml:"force"`
	RequirePrimary   bool   `yaml:"require_primary"`
	RequireSecondary bool   `yaml:"require_secondary"`
}

// Layout names every path the resolver touches, relative to TargetDir.
type Layout struct {
	TargetDir       string         `yaml:"target_dir" validate:"required"`
	LibDir          string         `yaml:"lib_dir" validate:"required"`
	BridgeName      string         `yaml:"bridge_name" validate:"required,excludesall=/"`
	ArchiveFormat   archive.Format `yaml:"archive_format" validate:"required,oneof=zip tar.gz tar.zst"`
	HelperName      string         `yaml:"helper_name" validate:"required"`
	PrimaryConfig   string         `yaml:"primary_config" validate:"required"`
	SecondaryConfig string         `yaml:"secondary_config" validate:"required,nefield=PrimaryConfig"`
	// RuntimeHomeProbe is tried relative to the working directory when
	// the request carries no runtime home.
	RuntimeHomeProbe string `yaml:"runtime_home_probe,omitempty"`
	// MinRuntimeVersion, when set, raises a compatibility warning for older runtimes.
	MinRuntimeVersion string `yaml:"min_runtime_version,omitempty"`
}

// DefaultLayout returns the standard jpy layout rooted at targetDir.
func DefaultLayout(targetDir string) Layout {
	if targetDir == "" {
		targetDir = shared.DefaultTargetDir
	}
	return Layout{
		TargetDir:        targetDir,
		LibDir:           shared.DefaultLibDir,
		BridgeName:       shared.DefaultBridgeName,
		ArchiveFormat:    archive.Format(shared.DefaultArchiveFormat),
		HelperName:       shared.DefaultHelperName,
		PrimaryConfig:    shared.DefaultPrimaryConfig,
		SecondaryConfig:  shared.DefaultSecondaryConfig,
		RuntimeHomeProbe: shared.DefaultRuntimeHomeProbe,
	}
}

func (l Layout) LibPath() string       { return filepath.Join(l.TargetDir, l.LibDir) }
func (l Layout) MarkerPath() string    { return filepath.Join(l.TargetDir, shared.ExtractionMarker) }
func (l Layout) HelperPath() string    { return filepath.Join(l.TargetDir, l.HelperName) }
func (l Layout) PrimaryPath() string   { return filepath.Join(l.TargetDir, l.PrimaryConfig) }
func (l Layout) SecondaryPath() string { return filepath.Join(l.TargetDir, l.SecondaryConfig) }

// ArchiveName is "<bridge>-<os>-<arch>-<major.minor>.<ext>".
func (l Layout) ArchiveName(desc platform.Descriptor) string {
	return l.BridgeName + "-" + desc.PlatformTag() + "-" + desc.RuntimeVersion + "." + l.ArchiveFormat.Extension()
}

var validate = validator.New()

// Validate checks the request and the layout together.
func Validate(req Request, layout Layout) error {
	if err := validate.Struct(req); err != nil {
		return bridge_err.NewInvalidRequest("invalid bootstrap request", err)
	}
	if err := validate.Struct(layout); err != nil {
		return bridge_err.NewInvalidRequest("invalid target layout", err)
	}
	return nil
}

// ArchiveReference is the platform archive the resolver looks for.
type ArchiveReference struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Exists bool   `yaml:"exists"`
}

type StepStatus string

const (
	StepRan     StepStatus = "ran"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
	// StepPending only appears in inspection plans.
	StepPending StepStatus = "pending"
)

const (
	StepCompatibility = "compatibility"
	StepExtract       = "extract"
	StepConfigure     = "configure"
)

type StepResult struct {
	Name   string     `yaml:"name"`
	Status StepStatus `yaml:"status"`
	Detail string     `yaml:"detail,omitempty"`
}

// Plan is what Inspect reports: the resolver's decisions without side effects.
type Plan struct {
	Platform         platform.Descriptor  `yaml:"platform"`
	TargetDir        string               `yaml:"target_dir"`
	Archive          ArchiveReference     `yaml:"archive"`
	Extracted        bool                 `yaml:"extracted"`
	PrimaryPresent   bool                 `yaml:"primary_present"`
	SecondaryPresent bool                 `yaml:"secondary_present"`
	HelperPresent    bool                 `yaml:"helper_present"`
	RuntimeHome      string               `yaml:"runtime_home,omitempty"`
	Warnings         []bridge_err.Warning `yaml:"warnings,omitempty"`
	Steps            []StepResult         `yaml:"steps"`
}
