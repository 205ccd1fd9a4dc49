package inspect

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/config"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/corestorage"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/inventory"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/report"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_io"
)

var InspectDisksCmd = &cobra.Command{
	Use:   "disks",
	Short: "List whole disks with their internal flag and CoreStorage group",
	Args:  cobra.NoArgs,
	RunE: retire_cli.Wrap(func(rc *retire_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadForCommand(cmd)
		if err != nil {
			return err
		}
		_, provider := readOnlyProvider(cfg)

		disks, err := inventory.New(provider, corestorage.NewInspector(provider)).Snapshot(rc.Ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), report.RenderDisks(disks))
		return err
	}),
}
