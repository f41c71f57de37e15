// pkg/archive/format.go

package archive

import "fmt"

// Format identifies how a bridge archive is packed.
type Format string

const (
	FormatZip    Format = "zip"
	FormatTarGz  Format = "tar.gz"
	FormatTarZst Format = "tar.zst"
)

// SupportedFormats lists every format Extract understands.
var SupportedFormats = []Format{FormatZip, FormatTarGz, FormatTarZst}

// ParseFormat parses a format from its file-extension spelling.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatZip, FormatTarGz, FormatTarZst:
		return Format(name), nil
	case "tgz":
		return FormatTarGz, nil
	case "tzst":
		return FormatTarZst, nil
	default:
		return "", fmt.Errorf("unknown archive format: %q", name)
	}
}

// Extension is the file name suffix, without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

func (f Format) String() string {
	return string(f)
}
