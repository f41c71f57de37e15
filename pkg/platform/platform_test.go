package platform

import (
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOSPlatform(t *testing.T) {
	t.Parallel()

	expected := map[string]string{
		"darwin":  "macos",
		"linux":   "linux",
		"windows": "windows",
	}[runtime.GOOS]
	if expected == "" {
		expected = runtime.GOOS
	}
	assert.Equal(t, expected, GetOSPlatform())
}

func TestDetect(t *testing.T) {
	t.Parallel()

	d := Detect("3.10", 0)
	assert.Equal(t, GetOSPlatform(), d.OS)
	assert.NotEmpty(t, d.Arch)
	assert.Equal(t, "3.10", d.RuntimeVersion)
	assert.Equal(t, strconv.IntSize, d.RuntimeBits)

	assert.Equal(t, 32, Detect("2.7", 32).RuntimeBits)
}

func TestDescriptorTags(t *testing.T) {
	t.Parallel()

	d := Descriptor{OS: "Linux", Arch: "X86_64", RuntimeVersion: "3.10", RuntimeBits: 64}
	assert.Equal(t, "linux-x86_64", d.PlatformTag())
	assert.True(t, d.Is64Bit())
	assert.Equal(t, "linux-x86_64 (runtime 3.10, 64-bit)", d.String())

	d.RuntimeBits = 32
	assert.False(t, d.Is64Bit())
}

func TestIs64BitAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arch string
		want bool
	}{
		{arch: "amd64", want: true},
		{arch: "AMD64", want: true},
		{arch: "x86_64", want: true},
		{arch: " x64 ", want: true},
		{arch: "ia64", want: true},
		{arch: "aarch64", want: true},
		{arch: "i386", want: false},
		{arch: "x86", want: false},
		{arch: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.arch, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Is64BitAlias(tt.arch))
		})
	}
}

func TestMachineArchNotEmpty(t *testing.T) {
	t.Parallel()
	assert.NotEmpty(t, MachineArch())
}
