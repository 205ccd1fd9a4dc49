package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/session"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/verification"
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// TerminalReporter renders a per-disk summary table.
type TerminalReporter struct {
	Out io.Writer
}

func (t *TerminalReporter) Report(_ context.Context, rec session.Record) error {
	_, err := fmt.Fprintln(t.Out, Render(rec))
	return err
}

// Render formats rec as a titled table followed by the overall verdict.
func Render(rec session.Record) string {
	upper := cases.Upper(language.Und)
	headers := []string{"DISK", "ERASED", "TIER", "ATTEMPTS"}
	for _, name := range verification.AllChecks {
		headers = append(headers, upper.String(string(name)))
	}
	headers = append(headers, "VERIFIED")

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })

	for _, d := range rec.Disks {
		tier := "-"
		if d.SucceededTier > 0 {
			tier = strconv.Itoa(d.SucceededTier)
		}
		row := []string{d.ID, mark(d.Erased), tier, strconv.Itoa(len(d.Attempts))}
		for _, name := range verification.AllChecks {
			row = append(row, mark(d.Verification.Checks[name]))
		}
		row = append(row, mark(d.Verification.Overall))
		tbl.Row(row...)
	}

	verdict := failStyle.Render("FAILED")
	if rec.Overall {
		verdict = passStyle.Render("PASSED")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Erasure session %s on %s", rec.SessionID, rec.Host)))
	b.WriteString("\n")
	b.WriteString(tbl.String())
	b.WriteString("\n")
	b.WriteString("Overall: " + verdict)
	return b.String()
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
