/* cmd/root.go */

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/cmd/check"
	"github.com/CodeMonkeyCybersecurity/retire/cmd/erase"
	"github.com/CodeMonkeyCybersecurity/retire/cmd/inspect"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/config"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/logger"
)

// RootCmd is the base command for retire.
var RootCmd = &cobra.Command{
	Use:   "retire",
	Short: "Securely erase the internal disks of a Mac before it is surplussed",
	Long: `retire dismantles CoreStorage volume groups, zero-fills every internal
whole disk with escalating remediation, verifies the result and records a
completion report. It refuses to run when a firmware password is set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	RootCmd.PersistentFlags().String(config.FlagConfig, "", "YAML config file (default "+config.DefaultConfigFile+")")
	RootCmd.PersistentFlags().String(config.FlagEnvFile, "", "dotenv file with secrets (default "+config.DefaultEnvFile+")")

	for _, sub := range []*cobra.Command{
		erase.EraseCmd,
		inspect.InspectCmd,
		check.CheckCmd,
	} {
		RootCmd.AddCommand(sub)
	}
}

// Execute runs the command tree and returns the first error for the caller
// to map onto an exit code.
func Execute(ctx context.Context) error {
	logger.L().Debug("retire starting")
	err := RootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.L().Debug("retire finished with error", zap.Error(err))
	}
	return err
}
