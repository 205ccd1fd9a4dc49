// pkg/retire_cli/wrap.go

package retire_cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Wrap adapts fn into a cobra RunE. The runtime context is cancelled on
// SIGINT or SIGTERM, panics come back as assertion failures, and the root
// span is closed with the final error.
func Wrap(fn func(rc *retire_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		rc := retire_io.NewContext(ctx, cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		retire_io.LogRuntimeExecutionContext(rc)

		err = fn(rc, cmd, args)
		if err != nil {
			err = cerr.WithStack(err)
		}
		return err
	}
}
