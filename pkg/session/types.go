package session

import (
	"context"
	"time"

	"github.com/juju/clock"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/erase"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/firmware"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/verification"
)

type State string

const (
	StateInit              State = "init"
	StatePreconditionCheck State = "precondition_check"
	StateInventory         State = "inventory"
	StateTopologyCleanup   State = "topology_cleanup"
	StateReInventory       State = "re_inventory"
	StateCooldown          State = "cooldown"
	StatePerDiskErase      State = "per_disk_erase"
	StateVerification      State = "verification"
	StateReport            State = "report"
	StateCompleted         State = "completed"
	StateAborted           State = "aborted"
)

type PrivilegeChecker interface {
	RequireRoot(ctx context.Context) error
}

// NotificationSink receives exactly one terminal message per completed session.
type NotificationSink interface {
	Send(ctx context.Context, message string) error
}

type CompletionReporter interface {
	Report(ctx context.Context, rec Record) error
}

// ConfirmationGate asks an operator to approve erasing a host whose firmware
// password state cannot be read.
type ConfirmationGate interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Cooldown waits d or until ctx is cancelled.
type Cooldown interface {
	Wait(ctx context.Context, d time.Duration) error
}

// Announcer presents the disks about to be destroyed.
type Announcer interface {
	Announce(ctx context.Context, disks []diskutil.Disk, cooldown time.Duration)
}

type DiskInventory interface {
	Snapshot(ctx context.Context) ([]diskutil.Disk, error)
}

type Demolisher interface {
	Dismantle(ctx context.Context, id string) error
}

type EraseExecutor interface {
	Erase(ctx context.Context, id string) erase.Outcome
}

type EraseVerifier interface {
	Verify(ctx context.Context, id string) verification.Result
}

// Deps are the collaborators of a session. Gate, Announcer, Notifier and
// Reporter may be nil; a nil Gate fails closed.
type Deps struct {
	Privileges PrivilegeChecker
	Firmware   firmware.Checker
	Inventory  DiskInventory
	Demolisher Demolisher
	Eraser     EraseExecutor
	Verifier   EraseVerifier
	Cooldown   Cooldown

	Gate      ConfirmationGate
	Announcer Announcer
	Notifier  NotificationSink
	Reporter  CompletionReporter

	// Clock stamps session start and finish. Defaults to the wall clock.
	Clock clock.Clock
	// NewID generates session ids. Defaults to random UUIDs.
	NewID func() string
}

type Config struct {
	CooldownPeriod time.Duration
	SuccessMessage string
	FailureMessage string
	Hostname       string
}

const (
	DefaultCooldownPeriod = 10 * time.Second
	DefaultSuccessMessage = "Secure erase completed and verified on all internal disks."
	DefaultFailureMessage = "Secure erase FAILED on one or more internal disks. Do not surplus this machine."
)

// DefaultConfig returns the stock cooldown and notification messages.
func DefaultConfig() Config {
	return Config{
		CooldownPeriod: DefaultCooldownPeriod,
		SuccessMessage: DefaultSuccessMessage,
		FailureMessage: DefaultFailureMessage,
	}
}
