// pkg/bridge_cli/setup.go

package bridge_cli

import (
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bootstrap"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_io"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/platform"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/python"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DetectPlatform describes this host and the scripting runtime. An explicit
// --runtime-version skips running the runtime.
func DetectPlatform(rc *bridge_io.RuntimeContext, opts *Options) (platform.Descriptor, error) {
	logger := otelzap.Ctx(rc.Ctx)

	if opts.RuntimeVersion != "" {
		v, err := python.ParseVersion(opts.RuntimeVersion)
		if err != nil {
			return platform.Descriptor{}, bridge_err.NewInvalidRequest("invalid --"+FlagRuntimeVersion, err)
		}
		desc := platform.Detect(python.VersionTag(v), opts.RuntimeBits)
		logger.Debug("Using runtime version override", zap.String("platform", desc.String()))
		return desc, nil
	}

	info, err := python.Probe(rc, opts.RuntimeExe)
	if err != nil {
		return platform.Descriptor{}, cerr.WithHint(err,
			"Pass --runtime-exe for a different interpreter, or --runtime-version to skip probing")
	}
	desc := platform.Detect(info.VersionTag(), info.Bits)
	logger.Debug("Platform detected", zap.String("platform", desc.String()))
	return desc, nil
}

// NewResolver assembles a resolver that runs the jpy helper with the
// configured scripting runtime.
func NewResolver(desc platform.Descriptor, opts *Options) *bootstrap.Resolver {
	helper := bootstrap.NewSubprocessHelper(opts.RuntimeExe)
	helper.Timeout = opts.HelperTimeout
	return bootstrap.NewResolver(desc, opts.Layout(), helper)
}
