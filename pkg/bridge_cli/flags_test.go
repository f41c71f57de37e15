// pkg/bridge_cli/flags_test.go

package bridge_cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand() (*cobra.Command, *cobra.Command) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().String("log-level", "INFO", "")
	child := &cobra.Command{Use: "child", RunE: func(*cobra.Command, []string) error { return nil }}
	child.Flags().String("req-arch", "", "")
	child.Flags().Bool("force", false, "")
	root.AddCommand(child)
	return root, child
}

func TestBindFlagsToViper(t *testing.T) {
	_, child := newTestCommand()
	v := viper.New()

	require.NoError(t, BindFlagsToViper(child, v))
	require.NoError(t, child.Flags().Set("req-arch", "arm64"))

	assert.Equal(t, "arm64", v.GetString("req-arch"))
	assert.Equal(t, "INFO", v.GetString("log-level"), "inherited persistent flags are bound too")
	assert.False(t, v.GetBool("force"))
}

func TestSetViperEnvPrefix(t *testing.T) {
	t.Setenv("BRIDGECONF_REQ_ARCH", "aarch64")
	t.Setenv("BRIDGECONF_FORCE", "true")

	_, child := newTestCommand()
	v := viper.New()
	SetViperEnvPrefix(v, "BRIDGECONF")
	require.NoError(t, BindFlagsToViper(child, v))

	assert.Equal(t, "aarch64", v.GetString("req-arch"))
	assert.True(t, v.GetBool("force"))

	require.NoError(t, child.Flags().Set("req-arch", "x86_64"))
	assert.Equal(t, "x86_64", v.GetString("req-arch"), "explicit flags beat the environment")
}

func TestAliasNormalizer(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().String("runtime-home", "", "")
	cmd.Flags().SetNormalizeFunc(AliasNormalizer(map[string]string{"java-home": "runtime-home"}))

	require.NoError(t, cmd.Flags().Parse([]string{"--java-home", "/opt/jre"}))
	got, err := cmd.Flags().GetString("runtime-home")
	require.NoError(t, err)
	assert.Equal(t, "/opt/jre", got)
}
