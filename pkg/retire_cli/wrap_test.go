package retire_cli

import (
	"context"
	"testing"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_io"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newCmd(fn func(rc *retire_io.RuntimeContext, cmd *cobra.Command, args []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "probe",
		RunE:          Wrap(fn),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetArgs([]string{})
	return cmd
}

func TestWrapPassesRuntimeContext(t *testing.T) {
	logger.SetLogger(zaptest.NewLogger(t))

	var seen *retire_io.RuntimeContext
	cmd := newCmd(func(rc *retire_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		seen = rc
		return nil
	})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.NotNil(t, seen)
	assert.Equal(t, "probe", seen.Command)
	assert.NotNil(t, seen.Ctx)
	assert.NotNil(t, seen.Log)
}

func TestWrapKeepsErrorClassification(t *testing.T) {
	logger.SetLogger(zaptest.NewLogger(t))

	cmd := newCmd(func(*retire_io.RuntimeContext, *cobra.Command, []string) error {
		return retire_err.NewErasureFailedError("s1", []string{"disk3"})
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, retire_err.ExitFailed, retire_err.GetExitCode(err))
}

func TestWrapRecoversPanic(t *testing.T) {
	logger.SetLogger(zaptest.NewLogger(t))

	cmd := newCmd(func(*retire_io.RuntimeContext, *cobra.Command, []string) error {
		panic("boom")
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, retire_err.ExitInternal, retire_err.GetExitCode(err))
}

func TestWrapContextCancelsWithParent(t *testing.T) {
	logger.SetLogger(zaptest.NewLogger(t))

	parent, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newCmd(func(rc *retire_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return rc.Ctx.Err()
	})

	err := cmd.ExecuteContext(parent)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
