package inspect

import (
	"fmt"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/config"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/report"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_io"
)

var InspectJournalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List completion records, newest first",
	Long: `Lists every completion record in the journal directory. Records whose
checksum no longer matches their contents are reported and make the command
exit non-zero.`,
	Args: cobra.NoArgs,
	RunE: retire_cli.Wrap(func(rc *retire_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadForCommand(cmd)
		if err != nil {
			return err
		}
		journal, err := report.NewJournalReporter(cfg.JournalDir)
		if err != nil {
			return err
		}

		entries, errs := journal.List()
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), report.RenderJournal(entries)); err != nil {
			return err
		}
		for _, e := range errs {
			rc.Log.Warn("Journal entry rejected", zap.Error(e))
		}
		if len(errs) > 0 {
			return cerr.Newf("%d journal entries in %s failed verification", len(errs), journal.Dir())
		}
		return nil
	}),
}

func init() {
	cli.AddStringFlag(InspectJournalCmd, "journal-dir", "", report.DefaultJournalDir, "Directory holding completion records")
}
