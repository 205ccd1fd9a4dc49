// Package corestorage inspects and dismantles CoreStorage logical volume groups.
package corestorage

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
)

// Inspector answers topology questions about a single whole disk.
type Inspector struct {
	provider diskutil.Provider
}

func NewInspector(p diskutil.Provider) *Inspector {
	return &Inspector{provider: p}
}

// IsCoreStorageMember reports whether id backs a logical volume group.
func (i *Inspector) IsCoreStorageMember(ctx context.Context, id string) (bool, error) {
	_, ok, err := i.GetLVGID(ctx, id)
	return ok, err
}

// GetLVGID returns the UUID of the group id belongs to. ok is false when the
// disk is not a member. Utility failures other than diskutil's "not a
// CoreStorage disk" are discovery errors.
func (i *Inspector) GetLVGID(ctx context.Context, id string) (string, bool, error) {
	info, err := i.provider.CoreStorageInfo(ctx, id)
	if err != nil {
		if diskutil.IsNotCoreStorage(err) {
			return "", false, nil
		}
		return "", false, retire_err.Discovery(err, "inspect corestorage membership of %s", id)
	}

	lvg := info.MemberOfCoreStorageLogicalVolumeGroup
	if lvg == "" {
		return "", false, nil
	}
	otelzap.Ctx(ctx).Debug("Disk is a CoreStorage member",
		zap.String("disk", id),
		zap.String("lvg", lvg))
	return lvg, true, nil
}
