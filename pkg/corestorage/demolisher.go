package corestorage

import (
	"context"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/telemetry"
)

// Demolisher removes the logical volume group on top of a whole disk so the
// disk can be erased directly.
type Demolisher struct {
	provider  diskutil.Provider
	inspector *Inspector
}

func NewDemolisher(p diskutil.Provider, inspector *Inspector) *Demolisher {
	if inspector == nil {
		inspector = NewInspector(p)
	}
	return &Demolisher{provider: p, inspector: inspector}
}

// Dismantle force-unmounts id and deletes its logical volume group. The
// unmount is best effort. Errors are tagged ErrCoreStorage; callers log them
// and still erase the disk.
func (d *Demolisher) Dismantle(ctx context.Context, id string) error {
	ctx, span := telemetry.Start(ctx, "corestorage.Dismantle", attribute.String("disk", id))
	defer span.End()
	logger := otelzap.Ctx(ctx)

	// ASSESS
	logger.Info("Dismantling CoreStorage volume group", zap.String("disk", id))

	unmountErr := d.provider.Unmount(ctx, id, true)
	if unmountErr != nil {
		logger.Warn("Force unmount failed, continuing with group deletion",
			zap.String("disk", id),
			zap.Error(unmountErr))
	}

	lvg, ok, err := d.inspector.GetLVGID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return retire_err.CoreStorage(combine(err, unmountErr), "resolve logical volume group of %s", id)
	}
	if !ok {
		if unmountErr != nil {
			return retire_err.CoreStorage(unmountErr, "unmount %s and no logical volume group to delete", id)
		}
		logger.Info("Disk is no longer a CoreStorage member", zap.String("disk", id))
		return nil
	}

	// INTERVENE
	if err := d.provider.DeleteLVG(ctx, lvg); err != nil {
		span.RecordError(err)
		return retire_err.CoreStorage(combine(err, unmountErr), "delete logical volume group %s on %s", lvg, id)
	}

	// EVALUATE
	logger.Info("CoreStorage volume group deleted",
		zap.String("disk", id),
		zap.String("lvg", lvg),
		zap.Bool("unmount_failed", unmountErr != nil))
	return nil
}

func combine(primary, secondary error) error {
	if secondary == nil {
		return primary
	}
	return cerr.WithSecondaryError(primary, secondary)
}
