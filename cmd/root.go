/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/cmd/inspect"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bootstrap"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_cli"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_io"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// app holds what must be torn down after the command tree has run.
type app struct {
	root     *cobra.Command
	shutdown telemetry.ShutdownFunc
}

// NewRootCmd builds a fresh command tree; flags never leak between runs.
func NewRootCmd() *cobra.Command {
	return newApp().root
}

func newApp() *app {
	a := &app{}
	a.root = &cobra.Command{
		Use:   shared.BridgeconfID,
		Short: "Unpack and configure the jpy bridge for this platform",
		Long: `bridgeconf extracts the jpy bridge archive built for this operating system,
architecture and Python version into the target directory, then runs the
bundled jpyutil.py helper to write jpyconfig.properties and jpyconfig.py.

Both steps are skipped when their marker files already exist; use --force to
run them again.`,
		Version:           shared.Version,
		Args:              bridge_cli.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              bridge_cli.Wrap(runConfigure),
	}
	a.root.SetFlagErrorFunc(bridge_cli.FlagError)
	bridge_cli.AddPersistentFlags(a.root)
	a.root.AddCommand(inspect.NewInspectCmd())
	return a
}

// setup runs before every command: options, logging, then tracing.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	opts, err := bridge_cli.LoadOptions(cmd)
	if err != nil {
		return err
	}
	if err := logger.Initialize(opts.Logger()); err != nil {
		return bridge_err.NewInvalidRequest("failed to initialize logging", err)
	}

	shutdown, err := telemetry.Init(shared.BridgeconfID)
	if err != nil {
		logger.L().Warn("Tracing disabled", zap.Error(err))
	} else {
		a.shutdown = shutdown
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	cmd.SetContext(bridge_cli.WithOptions(parent, opts))
	return nil
}

func runConfigure(rc *bridge_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)
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
	rc.Attributes["platform"] = desc.PlatformTag()

	result := bridge_cli.NewResolver(desc, opts).Resolve(rc, req)

	if opts.Report != "" {
		if err := bridge_io.WriteYAML(rc.Ctx, opts.Report, result); err != nil {
			logger.Error("Failed to write report", zap.String("path", opts.Report), zap.Error(err))
			if result.Success() {
				return err
			}
		}
	}

	if result.Success() {
		logger.Info("Bridge is configured",
			zap.String("target", opts.TargetDir),
			zap.Int("warnings", len(result.Warnings())))
	}
	return result.Err()
}

// Run executes the command tree with args and returns the process exit code.
func Run(args []string, stdout io.Writer) int {
	a := newApp()
	a.root.SetArgs(args)
	a.root.SetOut(stdout)

	err := a.root.Execute()
	code := bridge_err.GetExitCode(err)
	if err != nil {
		log := logger.GetLogger()
		log.Error(err.Error(), zap.Int("exit_code", code))
		for _, hint := range cerr.GetAllHints(err) {
			log.Info(hint)
		}
	}

	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush traces: %v\n", err)
		}
		cancel()
	}
	if err := logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
	}
	return code
}

// Execute runs the CLI with the process arguments and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout))
}
