// Package inventory enumerates whole disks and separates internal from
// external media.
package inventory

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/telemetry"
)

// GroupResolver maps a disk to its CoreStorage logical volume group.
type GroupResolver interface {
	GetLVGID(ctx context.Context, id string) (string, bool, error)
}

type Inventory struct {
	provider diskutil.Provider
	resolver GroupResolver
}

// New builds an Inventory. resolver may be nil, in which case Snapshot leaves
// CoreStorageGroupID empty.
func New(p diskutil.Provider, resolver GroupResolver) *Inventory {
	return &Inventory{provider: p, resolver: resolver}
}

// ListWholeDisks returns every whole disk identifier on the host.
func (inv *Inventory) ListWholeDisks(ctx context.Context) ([]string, error) {
	list, err := inv.provider.List(ctx)
	if err != nil {
		return nil, retire_err.Discovery(err, "list whole disks")
	}
	return append([]string(nil), list.WholeDisks...), nil
}

// ClassifyInternal reports whether id is internally attached.
func (inv *Inventory) ClassifyInternal(ctx context.Context, id string) (bool, error) {
	info, err := inv.provider.Info(ctx, id)
	if err != nil {
		return false, retire_err.Discovery(err, "classify %s", id)
	}
	return info.Internal, nil
}

// FindInternalDisks keeps the internal disks of ids, in input order.
func (inv *Inventory) FindInternalDisks(ctx context.Context, ids []string) ([]string, error) {
	internal := make([]string, 0, len(ids))
	for _, id := range ids {
		ok, err := inv.ClassifyInternal(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			internal = append(internal, id)
		}
	}
	return internal, nil
}

// Snapshot returns a fresh typed view of every whole disk. Internal disks
// carry their CoreStorage group id when they have one.
func (inv *Inventory) Snapshot(ctx context.Context) ([]diskutil.Disk, error) {
	ctx, span := telemetry.Start(ctx, "inventory.Snapshot")
	defer span.End()
	logger := otelzap.Ctx(ctx)

	ids, err := inv.ListWholeDisks(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	disks := make([]diskutil.Disk, 0, len(ids))
	for _, id := range ids {
		internal, err := inv.ClassifyInternal(ctx, id)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		disk := diskutil.Disk{ID: id, Internal: internal}

		if internal && inv.resolver != nil {
			lvg, ok, err := inv.resolver.GetLVGID(ctx, id)
			if err != nil {
				span.RecordError(err)
				return nil, retire_err.Discovery(err, "snapshot %s", id)
			}
			if ok {
				disk.CoreStorageGroupID = lvg
			}
		}
		disks = append(disks, disk)
	}

	logger.Info("Disk inventory taken",
		zap.Int("whole_disks", len(disks)),
		zap.Strings("internal", InternalIDs(disks)))
	return disks, nil
}

// Internal filters disks to the internally attached ones, preserving order.
func Internal(disks []diskutil.Disk) []diskutil.Disk {
	var out []diskutil.Disk
	for _, d := range disks {
		if d.Internal {
			out = append(out, d)
		}
	}
	return out
}

// InternalIDs returns the identifiers of the internal disks, preserving order.
func InternalIDs(disks []diskutil.Disk) []string {
	var ids []string
	for _, d := range Internal(disks) {
		ids = append(ids, d.ID)
	}
	return ids
}
