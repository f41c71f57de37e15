// pkg/bridge_cli/options.go

package bridge_cli

import (
	"context"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/archive"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bootstrap"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/fileops"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag names shared by every command.
const (
	FlagTargetDir         = "target-dir"
	FlagRequiredArch      = "req-arch"
	FlagRuntimeHome       = "runtime-home"
	FlagForce             = "force"
	FlagRequirePrimary    = "req-primary"
	FlagRequireSecondary  = "req-secondary"
	FlagLogFile           = "log-file"
	FlagLogLevel          = "log-level"
	FlagRuntimeExe        = "runtime-exe"
	FlagRuntimeVersion    = "runtime-version"
	FlagRuntimeBits       = "runtime-bits"
	FlagArchiveFormat     = "archive-format"
	FlagMinRuntimeVersion = "min-runtime-version"
	FlagHelperTimeout     = "helper-timeout"
	FlagConfig            = "config"
	FlagEnvFile           = "env-file"
	FlagReport            = "report"
)

// FlagAliases are accepted spellings for flags renamed over time.
var FlagAliases = map[string]string{
	"java-home": FlagRuntimeHome,
}

// Options is the merged view of flags, BRIDGECONF_* variables, the
// --env-file and the --config file, in that order of precedence.
type Options struct {
	TargetDir         string        `mapstructure:"target-dir" validate:"required"`
	RequiredArch      string        `mapstructure:"req-arch"`
	RuntimeHome       string        `mapstructure:"runtime-home"`
	Force             bool          `mapstructure:"force"`
	RequirePrimary    bool          `mapstructure:"req-primary"`
	RequireSecondary  bool          `mapstructure:"req-secondary"`
	LogFile           string        `mapstructure:"log-file"`
	LogLevel          string        `mapstructure:"log-level" validate:"omitempty,oneof=DEBUG INFO WARNING WARN ERROR debug info warning warn error"`
	RuntimeExe        string        `mapstructure:"runtime-exe" validate:"required"`
	RuntimeVersion    string        `mapstructure:"runtime-version"`
	RuntimeBits       int           `mapstructure:"runtime-bits" validate:"omitempty,oneof=32 64"`
	ArchiveFormat     string        `mapstructure:"archive-format" validate:"required"`
	MinRuntimeVersion string        `mapstructure:"min-runtime-version"`
	HelperTimeout     time.Duration `mapstructure:"helper-timeout" validate:"gte=0"`
	Report            string        `mapstructure:"report"`
}

// AddPersistentFlags declares every option on cmd so subcommands inherit them.
func AddPersistentFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.String(FlagTargetDir, shared.DefaultTargetDir, "Directory to prepare")
	fs.String(FlagRequiredArch, "", "Required processor architecture; a mismatch only warns")
	fs.String(FlagRuntimeHome, "", "Host runtime home passed to the configuration helper (alias --java-home)")
	fs.Bool(FlagForce, false, "Extract and regenerate even when markers are present")
	fs.Bool(FlagRequirePrimary, false, "Fail when the host-side configuration cannot be generated")
	fs.Bool(FlagRequireSecondary, false, "Fail when the client-side configuration cannot be generated")
	fs.String(FlagLogFile, "", "Also write JSON logs to this file")
	fs.String(FlagLogLevel, shared.DefaultLogLevel, "Log threshold: DEBUG, INFO, WARNING or ERROR")
	fs.String(FlagRuntimeExe, shared.DefaultRuntimeExe, "Scripting runtime executable")
	fs.String(FlagRuntimeVersion, "", "Scripting runtime version (major.minor); skips probing")
	fs.Int(FlagRuntimeBits, 0, "Scripting runtime pointer width when --runtime-version is given")
	fs.String(FlagArchiveFormat, shared.DefaultArchiveFormat, "Bridge archive format: zip, tar.gz or tar.zst")
	fs.String(FlagMinRuntimeVersion, "", "Warn when the scripting runtime is older than this")
	fs.Duration(FlagHelperTimeout, 0, "Abort the configuration helper after this long (0 = no limit)")
	fs.String(FlagConfig, "", "YAML, TOML or JSON file with option defaults")
	fs.String(FlagEnvFile, "", "dotenv file with BRIDGECONF_* settings")
	fs.String(FlagReport, "", "Write the result as YAML to this path")
	cmd.SetGlobalNormalizationFunc(AliasNormalizer(FlagAliases))
}

var validate = validator.New()

// LoadOptions merges every configuration source visible to cmd.
func LoadOptions(cmd *cobra.Command) (*Options, error) {
	v := viper.New()
	SetViperEnvPrefix(v, shared.EnvPrefix)
	if err := BindFlagsToViper(cmd, v); err != nil {
		return nil, bridge_err.NewInvalidRequest("failed to bind flags", err)
	}

	if path := v.GetString(FlagConfig); path != "" {
		v.SetConfigFile(fileops.ExpandPath(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, bridge_err.NewInvalidRequest("failed to read config file "+path, err)
		}
	}

	if path := v.GetString(FlagEnvFile); path != "" {
		env, err := godotenv.Read(fileops.ExpandPath(path))
		if err != nil {
			return nil, bridge_err.NewInvalidRequest("failed to read env file "+path, err)
		}
		if err := v.MergeConfigMap(envToSettings(env)); err != nil {
			return nil, bridge_err.NewInvalidRequest("failed to merge env file "+path, err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, bridge_err.NewInvalidRequest("invalid option value", err)
	}
	if err := validate.Struct(&opts); err != nil {
		return nil, bridge_err.NewInvalidRequest("invalid options", err)
	}
	if _, err := archive.ParseFormat(opts.ArchiveFormat); err != nil {
		return nil, bridge_err.NewInvalidRequest("invalid --"+FlagArchiveFormat, err)
	}
	return &opts, nil
}

// envToSettings turns BRIDGECONF_REQ_ARCH=x into req-arch: x. Keys without
// the prefix are ignored.
func envToSettings(env map[string]string) map[string]interface{} {
	prefix := shared.EnvPrefix + "_"
	out := make(map[string]interface{}, len(env))
	for k, val := range env {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(k, prefix), "_", "-"))
		out[key] = val
	}
	return out
}

func (o *Options) Logger() logger.Options {
	return logger.Options{Level: o.LogLevel, File: o.LogFile}
}

func (o *Options) Request() bootstrap.Request {
	return bootstrap.Request{
		RuntimeHome:      o.RuntimeHome,
		RequiredArch:     o.RequiredArch,
		Force:            o.Force,
		RequirePrimary:   o.RequirePrimary,
		RequireSecondary: o.RequireSecondary,
	}
}

func (o *Options) Layout() bootstrap.Layout {
	layout := bootstrap.DefaultLayout(fileops.ExpandPath(o.TargetDir))
	if format, err := archive.ParseFormat(o.ArchiveFormat); err == nil {
		layout.ArchiveFormat = format
	}
	layout.MinRuntimeVersion = o.MinRuntimeVersion
	return layout
}

type optionsKey struct{}

// WithOptions stores opts for the command body.
func WithOptions(ctx context.Context, opts *Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// OptionsFrom returns what WithOptions stored, or nil.
func OptionsFrom(ctx context.Context) *Options {
	opts, _ := ctx.Value(optionsKey{}).(*Options)
	return opts
}
