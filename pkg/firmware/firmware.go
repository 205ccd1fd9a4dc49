// Package firmware reports whether a firmware (EFI) password protects the host.
package firmware

import (
	"context"
	"os"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/execute"
)

const (
	DefaultFirmwarepasswdPath = "/usr/sbin/firmwarepasswd"
	DefaultTimeout            = 30 * time.Second
)

type Status int

const (
	StatusDisabled Status = iota
	StatusEnabled
	// StatusUnavailable means the platform cannot report the password state.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	case StatusEnabled:
		return "enabled"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Checker queries the firmware password state.
type Checker interface {
	Status(ctx context.Context) (Status, error)
}

// CommandChecker runs firmwarepasswd -check. Hosts without the binary, such as
// Apple silicon machines, report StatusUnavailable.
type CommandChecker struct {
	Runner  execute.Runner
	Path    string
	Timeout time.Duration
}

func NewCommandChecker(runner execute.Runner, path string, timeout time.Duration) *CommandChecker {
	if path == "" {
		path = DefaultFirmwarepasswdPath
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CommandChecker{Runner: runner, Path: path, Timeout: timeout}
}

func (c *CommandChecker) Status(ctx context.Context) (Status, error) {
	logger := otelzap.Ctx(ctx)

	if _, err := os.Stat(c.Path); err != nil {
		if os.IsNotExist(err) {
			logger.Info("Firmware password utility not present", zap.String("path", c.Path))
			return StatusUnavailable, nil
		}
		return StatusUnavailable, cerr.Wrapf(err, "stat %s", c.Path)
	}

	out, err := c.Runner.Run(ctx, execute.Options{
		Command: c.Path,
		Args:    []string{"-check"},
		Timeout: c.Timeout,
	})
	if err != nil {
		return StatusUnavailable, cerr.Wrap(err, "firmwarepasswd -check")
	}

	status, ok := parseStatus(out)
	if !ok {
		logger.Warn("Unrecognised firmwarepasswd output", zap.String("output", strings.TrimSpace(out)))
		return StatusUnavailable, nil
	}
	return status, nil
}

// parseStatus reads "Password Enabled: Yes|No".
func parseStatus(out string) (Status, bool) {
	for _, line := range strings.Split(out, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "Password Enabled") {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "yes":
			return StatusEnabled, true
		case "no":
			return StatusDisabled, true
		}
	}
	return StatusUnavailable, false
}

// StaticChecker always reports the same status. Used for rehearsal and tests.
type StaticChecker struct {
	Value Status
	Err   error
}

func (s StaticChecker) Status(context.Context) (Status, error) {
	return s.Value, s.Err
}
