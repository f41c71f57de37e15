// pkg/bridge_cli/wrap.go

package bridge_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_err"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/bridge_io"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/bridgeconf/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunFunc is a command body that receives a prepared runtime context.
type RunFunc func(rc *bridge_io.RuntimeContext, cmd *cobra.Command, args []string) error

// Wrap ensures panic recovery, tracing and logging around a command body.
// Errors that carry no classification leave as unhandled failures.
func Wrap(fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		rc := bridge_io.NewContext(parent, cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		rc.Log.Debug("Command started",
			zap.String("path", cmd.CommandPath()),
			zap.Strings("args", args),
			zap.String("version", shared.Version))

		err = fn(rc, cmd, args)
		if err != nil && bridge_err.CategoryOf(err) == bridge_err.CategoryUnhandled {
			err = bridge_err.NewUnhandledFailure(cerr.WithStack(err))
		}
		return err
	}
}
