// pkg/shared/constants.go

package shared

const (
	BridgeconfID = "bridgeconf"
	// EnvPrefix is the prefix viper uses when reading flags from the environment.
	EnvPrefix = "BRIDGECONF"
)

// Defaults for the jpy bridge layout shipped with the host application.
const (
	DefaultTargetDir        = "."
	DefaultLibDir           = "lib"
	DefaultBridgeName       = "jpy"
	DefaultArchiveFormat    = "zip"
	DefaultHelperName       = "jpyutil.py"
	DefaultPrimaryConfig    = "jpyconfig.properties"
	DefaultSecondaryConfig  = "jpyconfig.py"
	DefaultRuntimeExe       = "python3"
	DefaultSearchPathEnv    = "PYTHONPATH"
	DefaultRuntimeHomeProbe = "../../../jre"
	DefaultLogLevel         = "INFO"

	// ExtractionMarker is written into the target directory after the last
	// archive entry has been moved into place.
	ExtractionMarker = ".bridgeconf-extracted"
)

const (
	// Permission modes (in octal)
	DirPermStandard  = 0755
	FilePermStandard = 0644
)
