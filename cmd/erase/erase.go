// cmd/erase/erase.go

package erase

import (
	"os"

	"github.com/juju/clock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/config"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/corestorage"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	eraser "github.com/CodeMonkeyCybersecurity/retire/pkg/erase"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/firmware"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/inventory"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/notify"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/privilege_check"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/report"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_io"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/session"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/verification"
)

var EraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase and verify every internal disk",
	Long: `Runs a full decommissioning session:

  1. refuses to continue without root or with a firmware password set
  2. lists the internal disks and CoreStorage volume groups it will destroy
  3. waits out a cooldown during which Ctrl-C aborts with nothing modified
  4. dismantles CoreStorage volume groups, unmounting every member disk
  5. zero-fills each internal disk, escalating through up to three tiers
  6. verifies each disk and sends exactly one notification

Once the cooldown has elapsed the session can no longer be interrupted.`,
	Args: cobra.NoArgs,
	RunE: retire_cli.Wrap(runErase),
}

func init() {
	cli.AddBoolFlag(EraseCmd, "dry-run", "", false, "Log destructive diskutil commands instead of running them")
	cli.AddDurationFlag(EraseCmd, "cooldown", session.DefaultCooldownPeriod, "Abort window between the disk list and the first erase")
	cli.AddStringFlag(EraseCmd, "webhook-url", "", "", "Slack-compatible webhook for the completion notice")
	cli.AddStringFlag(EraseCmd, "journal-dir", "", report.DefaultJournalDir, "Directory for completion records")
}

func runErase(rc *retire_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadForCommand(cmd)
	if err != nil {
		return err
	}
	if cfg.DryRun {
		rc.Log.Warn("Dry run: destructive commands are logged, not executed. Verification will report the disks as not erased.")
	}
	rc.Attributes["dry_run"] = boolString(cfg.DryRun)

	deps, err := buildDeps(rc, cfg)
	if err != nil {
		return err
	}

	hostname, _ := os.Hostname()
	s, err := session.New(deps, cfg.Session(hostname))
	if err != nil {
		return err
	}

	res, err := s.Run(rc.Ctx)
	if res != nil {
		rc.Attributes["session_id"] = res.SessionID
	}
	if err != nil {
		return err
	}
	if !res.Overall {
		return retire_err.NewErasureFailedError(res.SessionID, res.FailedDisks())
	}
	rc.Log.Info("All internal disks erased and verified",
		zap.String("session_id", res.SessionID),
		zap.Int("disks", len(res.Disks)))
	return nil
}

// buildDeps is the composition root for a live session.
func buildDeps(rc *retire_io.RuntimeContext, cfg *config.Config) (session.Deps, error) {
	runner := execute.NewRunner(cfg.DryRun)
	provider := diskutil.NewCommandProvider(runner, cfg.Diskutil())
	inspector := corestorage.NewInspector(provider)

	journal, err := report.NewJournalReporter(cfg.JournalDir)
	if err != nil {
		return session.Deps{}, retire_err.NewValidationError("journal directory unusable", err,
			"set journal_dir to a writable directory")
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		return session.Deps{}, err
	}

	deps := session.Deps{
		Privileges: privilege_check.ProcessChecker{},
		Firmware:   firmware.NewCommandChecker(runner, cfg.FirmwarepasswdPath, cfg.MetadataTimeout),
		Inventory:  inventory.New(provider, inspector),
		Demolisher: corestorage.NewDemolisher(provider, inspector),
		Eraser:     eraser.NewExecutor(provider),
		Verifier:   verification.NewVerifier(provider),
		Cooldown:   interaction.NewCooldown(clock.WallClock),
		Gate:       newGate(os.Stdin),
		Announcer:  &interaction.TerminalAnnouncer{Out: os.Stderr},
		Notifier:   notifier,
		Reporter: report.Multi{
			journal,
			&report.TerminalReporter{Out: os.Stdout},
		},
	}
	if deps.Gate == nil {
		rc.Log.Info("stdin is not a terminal; sessions that need confirmation will abort")
	}
	return deps, nil
}

// newGate returns a nil interface, not a typed nil, when in is not a
// terminal so the session sees the gate as absent.
func newGate(in *os.File) session.ConfirmationGate {
	if !interaction.IsInteractive(in) {
		return nil
	}
	return &interaction.TerminalGate{In: in, Out: os.Stderr}
}

func newNotifier(cfg *config.Config) (session.NotificationSink, error) {
	if cfg.WebhookURL == "" {
		return notify.LogSink{}, nil
	}
	sink, err := notify.NewWebhookSink(notify.WebhookConfig{
		URL:  cfg.WebhookURL,
		Rate: cfg.NotifyRate,
	})
	if err != nil {
		return nil, retire_err.NewValidationError("webhook unusable", err)
	}
	return sink, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
