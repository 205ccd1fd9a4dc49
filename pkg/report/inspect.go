package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/verification"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })
}

// RenderDisks formats an inventory snapshot.
func RenderDisks(disks []diskutil.Disk) string {
	tbl := newTable("DISK", "INTERNAL", "CORESTORAGE GROUP")
	for _, d := range disks {
		group := "-"
		if d.IsCoreStorageMember() {
			group = d.CoreStorageGroupID
		}
		tbl.Row(d.ID, mark(d.Internal), group)
	}
	return tbl.String()
}

// RenderVerification formats the checks for a single disk.
func RenderVerification(res verification.Result) string {
	tbl := newTable("CHECK", "PASSED")
	for _, name := range verification.AllChecks {
		tbl.Row(string(name), mark(res.Checks[name]))
	}

	verdict := failStyle.Render("NOT ERASED")
	if res.Overall {
		verdict = passStyle.Render("ERASED")
	}
	return titleStyle.Render("Verification of "+res.DiskID) + "\n" + tbl.String() + "\n" + "Result: " + verdict
}

// RenderJournal lists journal entries, one row per session.
func RenderJournal(entries []*Entry) string {
	tbl := newTable("SESSION", "HOST", "STARTED", "DURATION", "DISKS", "OVERALL")
	for _, e := range entries {
		ids := make([]string, 0, len(e.Record.Disks))
		for _, d := range e.Record.Disks {
			ids = append(ids, d.ID)
		}
		overall := failStyle.Render("FAILED")
		if e.Record.Overall {
			overall = passStyle.Render("PASSED")
		}
		tbl.Row(
			e.Record.SessionID,
			e.Record.Host,
			e.Record.StartedAt.UTC().Format(time.RFC3339),
			e.Record.FinishedAt.Sub(e.Record.StartedAt).Round(time.Second).String(),
			strings.Join(ids, ","),
			overall,
		)
	}
	return fmt.Sprintf("%s\n%s", titleStyle.Render(fmt.Sprintf("%d recorded sessions", len(entries))), tbl.String())
}
