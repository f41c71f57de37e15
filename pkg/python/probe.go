// Package python finds out which scripting runtime the bridge will be
// configured for: its version tag and pointer width.
package python

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_io"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/execute"
	"github.com/hashicorp/go-version"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// probeScript prints "<major>.<minor>.<micro> <pointer bits>".
const probeScript = `import sys, struct; print("%d.%d.%d %d" % (sys.version_info[0], sys.version_info[1], sys.version_info[2], struct.calcsize("P") * 8))`

// Info describes a scripting runtime installation.
type Info struct {
	Executable string
	Version    *version.Version
	Bits       int
}

// VersionTag is the "major.minor" form used in archive names.
func (i *Info) VersionTag() string {
	return VersionTag(i.Version)
}

// VersionTag renders v as "major.minor".
func VersionTag(v *version.Version) string {
	if v == nil {
		return ""
	}
	segments := v.Segments()
	for len(segments) < 2 {
		segments = append(segments, 0)
	}
	return fmt.Sprintf("%d.%d", segments[0], segments[1])
}

// ParseVersion accepts "3", "3.10" or "3.10.12".
func ParseVersion(s string) (*version.Version, error) {
	v, err := version.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid runtime version %q: %w", s, err)
	}
	return v, nil
}

// Probe runs exe once and reads back its version and pointer width.
func Probe(rc *bridge_io.RuntimeContext, exe string) (*Info, error) {
	logger := otelzap.Ctx(rc.Ctx)

	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: exe,
		Args:    []string{"-c", probeScript},
		Logger:  rc.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to probe scripting runtime %s: %w", exe, err)
	}

	info, err := parseProbeOutput(out)
	if err != nil {
		return nil, err
	}
	info.Executable = exe

	logger.Debug("Scripting runtime detected",
		zap.String("executable", exe),
		zap.String("version", info.Version.String()),
		zap.Int("bits", info.Bits))
	return info, nil
}

func parseProbeOutput(out string) (*Info, error) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return nil, fmt.Errorf("unexpected runtime probe output %q", strings.TrimSpace(out))
	}

	v, err := ParseVersion(fields[0])
	if err != nil {
		return nil, err
	}

	bits, err := strconv.Atoi(fields[1])
	if err != nil || (bits != 32 && bits != 64) {
		return nil, fmt.Errorf("unexpected pointer width %q in runtime probe output", fields[1])
	}

	return &Info{Version: v, Bits: bits}, nil
}
