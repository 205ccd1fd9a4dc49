// cmd/check/check.go

package check

import (
	"github.com/spf13/cobra"
)

// CheckCmd groups standalone verification commands.
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run verification checks without erasing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	CheckCmd.AddCommand(CheckErasureCmd)
}
