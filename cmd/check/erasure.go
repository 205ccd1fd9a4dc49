package check

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/config"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/report"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_io"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/verification"
)

var CheckErasureCmd = &cobra.Command{
	Use:     "erasure <disk>",
	Short:   "Verify that a disk carries no filesystem, partitions or volumes",
	Example: "  retire check erasure disk2",
	Args:    cobra.ExactArgs(1),
	RunE: retire_cli.Wrap(func(rc *retire_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadForCommand(cmd)
		if err != nil {
			return err
		}
		provider := diskutil.NewCommandProvider(execute.NewRunner(false), cfg.Diskutil())

		res := verification.NewVerifier(provider).Verify(rc.Ctx, args[0])
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), report.RenderVerification(res)); err != nil {
			return err
		}
		if !res.Overall {
			return retire_err.VerificationMismatch(res.DiskID, res.Failed())
		}
		return nil
	}),
}
