// Package session drives one erasure run from precondition checks to the
// final verdict.
package session

import (
	"context"
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/firmware"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/inventory"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/telemetry"
)

// maxCleanupPasses bounds how often topology cleanup is repeated when a
// re-inventory surfaces a logical volume group that was not yet torn down.
const maxCleanupPasses = 3

type Session struct {
	deps Deps
	cfg  Config
}

// New validates deps and fills config defaults.
func New(deps Deps, cfg Config) (*Session, error) {
	missing := []string{}
	if deps.Privileges == nil {
		missing = append(missing, "privileges")
	}
	if deps.Firmware == nil {
		missing = append(missing, "firmware")
	}
	if deps.Inventory == nil {
		missing = append(missing, "inventory")
	}
	if deps.Demolisher == nil {
		missing = append(missing, "demolisher")
	}
	if deps.Eraser == nil {
		missing = append(missing, "eraser")
	}
	if deps.Verifier == nil {
		missing = append(missing, "verifier")
	}
	if deps.Cooldown == nil {
		missing = append(missing, "cooldown")
	}
	if len(missing) > 0 {
		return nil, cerr.AssertionFailedf("session: missing dependencies: %s", strings.Join(missing, ", "))
	}

	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if cfg.CooldownPeriod < 0 {
		cfg.CooldownPeriod = 0
	}
	if cfg.SuccessMessage == "" {
		cfg.SuccessMessage = DefaultSuccessMessage
	}
	if cfg.FailureMessage == "" {
		cfg.FailureMessage = DefaultFailureMessage
	}
	if cfg.Hostname == "" {
		if h, err := os.Hostname(); err == nil {
			cfg.Hostname = h
		}
	}
	return &Session{deps: deps, cfg: cfg}, nil
}

// run carries the mutable state of one Run call.
type run struct {
	*Session
	result *Result
}

// Run executes the whole session. The returned error is non-nil only when
// the session aborted; a failed verdict is reported through Result.Overall.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	r := &run{Session: s, result: newResult(s.deps.NewID(), s.deps.Clock.Now())}

	ctx, span := telemetry.Start(ctx, "session.Run", attribute.String("session_id", r.result.SessionID))
	defer span.End()
	logger := otelzap.Ctx(ctx)
	logger.Info("Erasure session starting", zap.String("session_id", r.result.SessionID))

	r.transition(ctx, StateInit)

	// ASSESS
	r.transition(ctx, StatePreconditionCheck)
	if err := r.checkPreconditions(ctx); err != nil {
		return r.abort(ctx, err)
	}

	r.transition(ctx, StateInventory)
	disks, err := s.deps.Inventory.Snapshot(ctx)
	if err != nil {
		return r.abort(ctx, retire_err.Discovery(err, "initial inventory"))
	}
	scheduled := inventory.Internal(disks)
	if len(scheduled) == 0 {
		return r.abort(ctx, retire_err.Discovery(cerr.New("no internal disks found"), "initial inventory"))
	}

	// Nothing has been written yet; the cooldown precedes CoreStorage teardown.
	r.transition(ctx, StateCooldown)
	if s.deps.Announcer != nil {
		s.deps.Announcer.Announce(ctx, scheduled, s.cfg.CooldownPeriod)
	}
	logger.Warn("Disks scheduled for destruction",
		zap.Strings("disks", diskIDs(scheduled)),
		zap.Strings("lvgs", groupIDs(scheduled)),
		zap.Duration("cooldown", s.cfg.CooldownPeriod))
	if err := s.deps.Cooldown.Wait(ctx, s.cfg.CooldownPeriod); err != nil {
		return r.abort(ctx, cerr.Mark(
			cerr.WithHint(cerr.Wrap(err, "cancelled by operator during cooldown"), "no disk was modified"),
			retire_err.ErrPrecondition))
	}

	// INTERVENE
	// From here on the run is all-or-nothing and ignores cancellation.
	destructive := context.WithoutCancel(ctx)
	targets, err := r.cleanTopology(destructive, disks)
	if err != nil {
		return r.abort(destructive, err)
	}
	r.result.Disks = targets
	for _, disk := range targets {
		r.processDisk(destructive, disk)
	}

	// EVALUATE
	r.report(destructive)
	span.SetAttributes(attribute.Bool("overall", r.result.Overall))
	return r.result, nil
}

func (r *run) checkPreconditions(ctx context.Context) error {
	logger := otelzap.Ctx(ctx)

	if err := r.deps.Privileges.RequireRoot(ctx); err != nil {
		if !cerr.Is(err, retire_err.ErrPrecondition) {
			err = cerr.Mark(cerr.Wrap(err, "privilege check"), retire_err.ErrPrecondition)
		}
		return err
	}

	status, err := r.deps.Firmware.Status(ctx)
	if err != nil {
		logger.Warn("Firmware password check failed, treating status as unavailable", zap.Error(err))
		status = firmware.StatusUnavailable
	}
	logger.Info("Firmware password status", zap.Stringer("status", status))

	switch status {
	case firmware.StatusDisabled:
		return nil
	case firmware.StatusEnabled:
		return retire_err.Precondition(
			"remove the firmware password before decommissioning this machine",
			"firmware password is enabled")
	}

	if r.deps.Gate == nil {
		return retire_err.Precondition(
			"run interactively so an operator can confirm",
			"firmware password status is unavailable and no confirmation is possible")
	}
	ok, err := r.deps.Gate.Confirm(ctx,
		"The firmware password status of this machine cannot be checked. "+
			"Confirm that no firmware password is set and that every internal disk may be destroyed.")
	if err != nil {
		return cerr.Mark(cerr.Wrap(err, "confirmation failed"), retire_err.ErrPrecondition)
	}
	if !ok {
		return retire_err.Precondition("", "operator declined erasure confirmation")
	}
	return nil
}

// cleanTopology tears down CoreStorage groups found in disks and returns a
// freshly enumerated set of internal disks.
func (r *run) cleanTopology(ctx context.Context, disks []diskutil.Disk) ([]diskutil.Disk, error) {
	logger := otelzap.Ctx(ctx)

	// Every member disk is unmounted and dismantled, including later members
	// of a group that an earlier member already deleted.
	type member struct{ disk, lvg string }
	dismantled := map[member]bool{}
	groups := map[string]bool{}
	for pass := 1; ; pass++ {
		r.transition(ctx, StateTopologyCleanup)
		for _, d := range inventory.Internal(disks) {
			m := member{disk: d.ID, lvg: d.CoreStorageGroupID}
			if !d.IsCoreStorageMember() || dismantled[m] {
				continue
			}
			dismantled[m] = true
			groups[d.CoreStorageGroupID] = true
			if err := r.deps.Demolisher.Dismantle(ctx, d.ID); err != nil {
				r.result.Recovered = append(r.result.Recovered, err)
				logger.Warn("CoreStorage teardown failed, disk will still be erased",
					zap.String("disk", d.ID),
					zap.String("lvg", d.CoreStorageGroupID),
					zap.Error(err))
			}
		}

		// Identifiers may have shifted; nothing from the previous snapshot is reused.
		r.transition(ctx, StateReInventory)
		var err error
		disks, err = r.deps.Inventory.Snapshot(ctx)
		if err != nil {
			return nil, retire_err.Discovery(err, "re-inventory after topology cleanup")
		}

		if pass >= maxCleanupPasses || !hasPendingGroup(disks, groups) {
			break
		}
		logger.Info("Re-inventory found new CoreStorage groups, repeating cleanup", zap.Int("pass", pass))
	}

	targets := inventory.Internal(disks)
	if len(targets) == 0 {
		return nil, retire_err.Discovery(cerr.New("no internal disks found"), "re-inventory after topology cleanup")
	}
	for _, d := range targets {
		if d.IsCoreStorageMember() {
			logger.Warn("Disk is still a CoreStorage member after cleanup, erasing anyway",
				zap.String("disk", d.ID),
				zap.String("lvg", d.CoreStorageGroupID))
		}
	}
	return targets, nil
}

func (r *run) processDisk(ctx context.Context, disk diskutil.Disk) {
	ctx, span := telemetry.Start(ctx, "session.disk", attribute.String("disk", disk.ID))
	defer span.End()

	r.transition(ctx, StatePerDiskErase)
	outcome := r.deps.Eraser.Erase(ctx, disk.ID)
	r.result.Attempts[disk.ID] = outcome.Attempts
	r.result.Erased[disk.ID] = outcome.Succeeded
	if !outcome.Succeeded {
		r.fail(disk.ID, retire_err.EraseTierExhausted(disk.ID, len(outcome.Attempts)))
	}

	r.transition(ctx, StateVerification)
	verdict := r.deps.Verifier.Verify(ctx, disk.ID)
	r.result.Verdicts[disk.ID] = verdict
	if !verdict.Overall {
		r.fail(disk.ID, retire_err.VerificationMismatch(disk.ID, verdict.Failed()))
	}

	span.SetAttributes(
		attribute.Bool("erased", outcome.Succeeded),
		attribute.Bool("verified", verdict.Overall))
}

func (r *run) report(ctx context.Context) {
	logger := otelzap.Ctx(ctx)
	r.transition(ctx, StateReport)

	overall := len(r.result.Disks) > 0
	for _, d := range r.result.Disks {
		overall = overall && r.result.Erased[d.ID] && r.result.Verdicts[d.ID].Overall
	}
	r.result.Overall = overall
	r.result.FinishedAt = r.deps.Clock.Now()
	telemetry.M().SessionFinished(ctx, overall)

	message := r.cfg.FailureMessage
	if overall {
		message = r.cfg.SuccessMessage
	}
	if r.deps.Notifier != nil {
		if err := r.deps.Notifier.Send(ctx, message); err != nil {
			logger.Error("Failed to send completion notification", zap.Error(err))
		}
	}
	if r.deps.Reporter != nil {
		if err := r.deps.Reporter.Report(ctx, r.result.Record(r.cfg.Hostname)); err != nil {
			logger.Error("Failed to record completion", zap.Error(err))
		}
	}

	r.transition(ctx, StateCompleted)
	fields := []zap.Field{
		zap.String("session_id", r.result.SessionID),
		zap.Bool("overall", overall),
		zap.Int("disks", len(r.result.Disks)),
		zap.Int("attempts", r.result.AttemptCount()),
	}
	if overall {
		logger.Info("Erasure session completed", fields...)
	} else {
		logger.Error("Erasure session failed", append(fields, zap.Strings("failed_disks", r.result.FailedDisks()))...)
	}
}

func (r *run) abort(ctx context.Context, reason error) (*Result, error) {
	r.result.AbortReason = reason
	r.result.FinishedAt = r.deps.Clock.Now()
	r.transition(ctx, StateAborted)
	otelzap.Ctx(ctx).Error("Erasure session aborted",
		zap.String("session_id", r.result.SessionID),
		zap.Int("exit_code", retire_err.GetExitCode(reason)),
		zap.Error(reason))
	return r.result, reason
}

func (r *run) fail(id string, err error) {
	r.result.Failures[id] = append(r.result.Failures[id], err)
}

func (r *run) transition(ctx context.Context, next State) {
	r.result.State = next
	r.result.States = append(r.result.States, next)
	otelzap.Ctx(ctx).Debug("Session state", zap.String("state", string(next)))
}

func hasPendingGroup(disks []diskutil.Disk, groups map[string]bool) bool {
	for _, d := range inventory.Internal(disks) {
		if d.IsCoreStorageMember() && !groups[d.CoreStorageGroupID] {
			return true
		}
	}
	return false
}

func groupIDs(disks []diskutil.Disk) []string {
	var ids []string
	seen := map[string]bool{}
	for _, d := range disks {
		if d.IsCoreStorageMember() && !seen[d.CoreStorageGroupID] {
			seen[d.CoreStorageGroupID] = true
			ids = append(ids, d.CoreStorageGroupID)
		}
	}
	return ids
}

func diskIDs(disks []diskutil.Disk) []string {
	ids := make([]string, 0, len(disks))
	for _, d := range disks {
		ids = append(ids, d.ID)
	}
	return ids
}
