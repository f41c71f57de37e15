/* pkg/platform/context.go */

package platform

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

//
//---------------------------- OPERATING SYSTEMS ---------------------------- //
//

// GetOSPlatform returns a string representing the OS platform.
func GetOSPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		return "macos"
	case "linux":
		return "linux"
	case "windows":
		return "windows"
	default:
		return runtime.GOOS
	}
}

//
//------------------------------- DESCRIPTOR -------------------------------- //
//

// Descriptor captures the facts that select a bridge archive. It is built
// once at startup and never modified.
type Descriptor struct {
	OS   string `yaml:"os"`
	Arch string `yaml:"arch"`
	// RuntimeVersion is the scripting runtime's "major.minor" tag.
	RuntimeVersion string `yaml:"runtime_version"`
	// RuntimeBits is the runtime's pointer width, 32 or 64.
	RuntimeBits int `yaml:"runtime_bits"`
}

// Detect combines host facts with what is known about the scripting runtime.
// A bits value of zero falls back to this binary's own word size.
func Detect(runtimeVersion string, bits int) Descriptor {
	if bits == 0 {
		bits = strconv.IntSize
	}
	return Descriptor{
		OS:             GetOSPlatform(),
		Arch:           MachineArch(),
		RuntimeVersion: runtimeVersion,
		RuntimeBits:    bits,
	}
}

// PlatformTag is "<os>-<arch>" in lower case, e.g. "linux-x86_64".
func (d Descriptor) PlatformTag() string {
	return strings.ToLower(d.OS + "-" + d.Arch)
}

// Is64Bit reports whether the scripting runtime is a 64-bit build.
func (d Descriptor) Is64Bit() bool {
	return d.RuntimeBits == 64
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s (runtime %s, %d-bit)", d.PlatformTag(), d.RuntimeVersion, d.RuntimeBits)
}

//
//------------------------------ ARCHITECTURE ------------------------------- //
//

// Known64BitArchitectures are the spellings accepted for a 64-bit target
// without raising a compatibility warning.
var Known64BitArchitectures = []string{"amd64", "ia64", "x64", "x86_64", "arm64", "aarch64"}

// Is64BitAlias reports whether arch names a 64-bit architecture.
func Is64BitAlias(arch string) bool {
	arch = strings.ToLower(strings.TrimSpace(arch))
	for _, known := range Known64BitArchitectures {
		if arch == known {
			return true
		}
	}
	return false
}

// MachineArch returns the processor architecture as the kernel reports it
// (uname -m), or runtime.GOARCH where that is not available.
func MachineArch() string {
	if arch := unameMachine(); arch != "" {
		return arch
	}
	return runtime.GOARCH
}
