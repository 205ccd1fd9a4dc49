// pkg/interaction/reader.go

package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ReadLine writes label to out and returns one trimmed line from reader. It
// returns early with ctx.Err() if ctx ends first; the pending read is abandoned.
func ReadLine(ctx context.Context, reader *bufio.Reader, out io.Writer, label string) (string, error) {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Prompting user for input", zap.String("label", label))

	// Prompts go to stderr-like writers so stdout stays clean for automation.
	_, _ = fmt.Fprint(out, label+": ")

	type line struct {
		text string
		err  error
	}
	ch := make(chan line, 1)
	go func() {
		text, err := reader.ReadString('\n')
		ch <- line{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(out)
		return "", ctx.Err()
	case l := <-ch:
		if l.err != nil && (l.err != io.EOF || l.text == "") {
			logger.Warn("Failed to read user input", zap.Error(l.err))
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// NormalizeYesNoInput maps y/yes/n/no (any case). valid is false otherwise.
func NormalizeYesNoInput(input string) (yes bool, valid bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}
