package interaction

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	diskStyle    = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("203"))
	hintStyle    = lipgloss.NewStyle().Faint(true)
)

// TerminalAnnouncer prints the disks about to be destroyed.
type TerminalAnnouncer struct {
	Out io.Writer
}

func (a *TerminalAnnouncer) Announce(_ context.Context, disks []diskutil.Disk, cooldown time.Duration) {
	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("The following %d internal disk(s) will be ERASED:", len(disks))))
	b.WriteString("\n")
	var groups []string
	seen := map[string]bool{}
	for _, d := range disks {
		line := "/dev/" + d.ID
		if d.IsCoreStorageMember() {
			line += " (CoreStorage " + d.CoreStorageGroupID + ")"
			if !seen[d.CoreStorageGroupID] {
				seen[d.CoreStorageGroupID] = true
				groups = append(groups, d.CoreStorageGroupID)
			}
		}
		b.WriteString(diskStyle.Render(line))
		b.WriteString("\n")
	}
	if len(groups) > 0 {
		b.WriteString(headingStyle.Render(fmt.Sprintf("The following %d CoreStorage volume group(s) will be DELETED:", len(groups))))
		b.WriteString("\n")
		for _, g := range groups {
			b.WriteString(diskStyle.Render(g))
			b.WriteString("\n")
		}
	}
	if cooldown > 0 {
		b.WriteString(hintStyle.Render(fmt.Sprintf("Erasure starts in %s. Press Ctrl-C to abort.", cooldown)))
		b.WriteString("\n")
	}
	_, _ = fmt.Fprint(a.Out, b.String())
}
