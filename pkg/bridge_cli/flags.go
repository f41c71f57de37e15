// pkg/bridge_cli/flags.go

package bridge_cli

import (
	"strings"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BindFlagsToViper binds every flag visible to cmd, inherited persistent
// flags included, to a Viper instance.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			result = multierror.Append(result, err)
		}
	}
	cmd.InheritedFlags().VisitAll(bind)
	cmd.Flags().VisitAll(bind)
	return result
}

// SetViperEnvPrefix lets Viper read PREFIX_FLAG_NAME for every key.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// AliasNormalizer maps alternative flag spellings onto their canonical names.
func AliasNormalizer(aliases map[string]string) func(*pflag.FlagSet, string) pflag.NormalizedName {
	return func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		return pflag.NormalizedName(name)
	}
}

// NoArgs rejects positional arguments as an invalid request.
func NoArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return bridge_err.NewInvalidRequest("unexpected arguments", err)
	}
	return nil
}

// FlagError classifies flag parsing failures as invalid requests.
func FlagError(_ *cobra.Command, err error) error {
	return bridge_err.NewInvalidRequest("invalid flags", err)
}
