package inspect

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/config"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/firmware"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_io"
)

var InspectFirmwareCmd = &cobra.Command{
	Use:   "firmware",
	Short: "Show whether a firmware password is set",
	Args:  cobra.NoArgs,
	RunE: retire_cli.Wrap(func(rc *retire_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadForCommand(cmd)
		if err != nil {
			return err
		}
		runner, _ := readOnlyProvider(cfg)

		status, err := firmware.NewCommandChecker(runner, cfg.FirmwarepasswdPath, cfg.MetadataTimeout).Status(rc.Ctx)
		if err != nil {
			rc.Log.Warn("Firmware password status could not be determined", zap.Error(err))
			status = firmware.StatusUnavailable
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Firmware password: %s\n", status)
		return err
	}),
}
