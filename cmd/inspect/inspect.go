// cmd/inspect/inspect.go

package inspect

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/config"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/execute"
)

// InspectCmd groups the read-only commands.
var InspectCmd = &cobra.Command{
	Use:     "inspect",
	Short:   "Inspect disks, firmware password status and past sessions",
	Aliases: []string{"read", "list", "ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	InspectCmd.AddCommand(InspectDisksCmd)
	InspectCmd.AddCommand(InspectFirmwareCmd)
	InspectCmd.AddCommand(InspectJournalCmd)
}

// readOnlyProvider builds a live runner; inspection issues no destructive commands.
func readOnlyProvider(cfg *config.Config) (execute.Runner, diskutil.Provider) {
	runner := execute.NewRunner(false)
	return runner, diskutil.NewCommandProvider(runner, cfg.Diskutil())
}
