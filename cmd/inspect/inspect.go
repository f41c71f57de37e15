// cmd/inspect/inspect.go

package inspect

import (
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bootstrap"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_cli"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// NewInspectCmd reports the resolver's plan as YAML without changing anything.
func NewInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "inspect",
		Short:   "Show which archive would be used and which steps would run",
		Long:    `Inspect detects the platform, names the expected bridge archive and reports the marker states. Nothing is extracted or generated.`,
		Aliases: []string{"plan"},
		Args:    bridge_cli.NoArgs,
		RunE:    bridge_cli.Wrap(runInspect),
	}
}

func runInspect(rc *bridge_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	opts := bridge_cli.OptionsFrom(rc.Ctx)
	if opts == nil {
		return cerr.AssertionFailedf("options were not loaded")
	}

	req := opts.Request()
	if err := bootstrap.Validate(req, opts.Layout()); err != nil {
		return err
	}

	desc, err := bridge_cli.DetectPlatform(rc, opts)
	if err != nil {
		return err
	}

	plan, err := bridge_cli.NewResolver(desc, opts).Inspect(req)
	if err != nil {
		return err
	}
	return bridge_io.EncodeYAML(cmd.OutOrStdout(), plan)
}
