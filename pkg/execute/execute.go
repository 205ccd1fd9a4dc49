// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options describes a single external command invocation. Commands are always
// executed directly, never through a shell.
type Options struct {
	Command string
	Args    []string

	// Timeout bounds the run. Zero leaves the command unbounded.
	Timeout time.Duration

	// Destructive commands are skipped when the runner is in dry-run mode.
	Destructive bool
}

// Runner executes external commands. On success the returned string is the
// command's stdout; on failure it is stdout followed by stderr.
type Runner interface {
	Run(ctx context.Context, opts Options) (string, error)
}

// CommandRunner runs commands with os/exec.
type CommandRunner struct {
	DryRun bool
}

// NewRunner returns a Runner backed by os/exec.
func NewRunner(dryRun bool) *CommandRunner {
	return &CommandRunner{DryRun: dryRun}
}

// Run executes opts and logs the outcome against the span carried by ctx.
func (r *CommandRunner) Run(ctx context.Context, opts Options) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := otelzap.Ctx(ctx)
	cmdStr := buildCommandString(opts.Command, opts.Args...)

	ctx, span := telemetry.Start(ctx, "execute.Run",
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
		attribute.Bool("destructive", opts.Destructive),
	)
	defer span.End()

	if opts.Command == "" {
		return "", cerr.AssertionFailedf("execute: empty command")
	}

	if r.DryRun && opts.Destructive {
		logger.Info("Dry run mode - command not executed", zap.String("command", cmdStr))
		return "", nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	logger.Debug("Starting execution",
		zap.String("command", cmdStr),
		zap.Duration("timeout", opts.Timeout))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, opts.Command, opts.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err == nil {
		logger.Debug("Execution succeeded",
			zap.String("command", cmdStr),
			zap.Duration("duration", duration))
		return stdout.String(), nil
	}

	output := stdout.String() + stderr.String()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = cerr.WithSecondaryError(err, ctxErr)
	}
	span.RecordError(err)
	logger.Warn("Execution failed",
		zap.String("command", cmdStr),
		zap.Duration("duration", duration),
		zap.String("summary", retire_err.ExtractSummary(output, 2)),
		zap.Error(err))

	return output, cerr.Wrapf(err, "%s", cmdStr)
}

func buildCommandString(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}
