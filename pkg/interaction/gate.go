package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var warningStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("196")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("196")).
	Padding(0, 1)

// TerminalGate asks the operator a yes/no question. Anything other than an
// explicit yes is a refusal.
type TerminalGate struct {
	In  io.Reader
	Out io.Writer
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func (g *TerminalGate) Confirm(ctx context.Context, message string) (bool, error) {
	logger := otelzap.Ctx(ctx)

	// ASSESS
	logger.Info("Requesting operator confirmation")

	// INTERVENE
	_, _ = fmt.Fprintln(g.Out, warningStyle.Render(message))
	answer, err := ReadLine(ctx, bufio.NewReader(g.In), g.Out, "Type yes to continue (yes/no)")
	if err != nil {
		return false, err
	}

	// EVALUATE
	confirmed, valid := NormalizeYesNoInput(answer)
	logger.Info("Operator confirmation result",
		zap.Bool("confirmed", confirmed),
		zap.Bool("valid_answer", valid))
	return confirmed, nil
}
