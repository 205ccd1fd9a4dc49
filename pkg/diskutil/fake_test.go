package diskutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeProviderEraseClearsState(t *testing.T) {
	ctx := context.Background()
	f := NewFakeProvider(FakeDisk{
		ID:           "disk2",
		Internal:     true,
		Content:      "GUID_partition_scheme",
		Partitions:   []string{"disk2s1", "disk2s2"},
		Volumes:      []string{"Data"},
		VerifyOutput: HealthyVerifyOutput,
	})
	f.EraseFailures["disk2"] = 1

	require.Error(t, f.ZeroErase(ctx, "disk2"))
	require.NoError(t, f.ZeroErase(ctx, "disk2"))

	list, err := f.ListDisk(ctx, "disk2")
	require.NoError(t, err)
	assert.Equal(t, []string{"disk2"}, list.AllDisks)
	assert.Empty(t, list.VolumesFromDisks)

	info, err := f.Info(ctx, "disk2")
	require.NoError(t, err)
	assert.Empty(t, info.Content)

	out, err := f.VerifyDisk(ctx, "disk2")
	require.NoError(t, err)
	assert.Equal(t, ErasedVerifyOutput, out)
	assert.Equal(t, []string{"disk2", "disk2"}, f.CallsFor(OpZeroErase))
}

func TestFakeProviderCoreStorage(t *testing.T) {
	ctx := context.Background()
	f := NewFakeProvider(
		FakeDisk{ID: "disk0", Internal: true, CoreStorageGroup: "LVG-1"},
		FakeDisk{ID: "disk1", Internal: true},
	)
	f.AfterDelete["LVG-1"] = []FakeDisk{{ID: "disk3", Internal: true}}

	cs, err := f.CoreStorageInfo(ctx, "disk0")
	require.NoError(t, err)
	assert.Equal(t, "LVG-1", cs.MemberOfCoreStorageLogicalVolumeGroup)

	_, err = f.CoreStorageInfo(ctx, "disk1")
	assert.True(t, IsNotCoreStorage(err))

	require.NoError(t, f.DeleteLVG(ctx, "LVG-1"))
	list, err := f.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"disk1", "disk3"}, list.WholeDisks)

	assert.Error(t, f.DeleteLVG(ctx, "LVG-1"))
}

func TestFakeProviderDeleteWithoutScriptStripsGroup(t *testing.T) {
	ctx := context.Background()
	f := NewFakeProvider(FakeDisk{ID: "disk0", Internal: true, CoreStorageGroup: "LVG-1", Volumes: []string{"Macintosh HD"}})

	require.NoError(t, f.DeleteLVG(ctx, "LVG-1"))
	d, ok := f.Disk("disk0")
	require.True(t, ok)
	assert.Empty(t, d.CoreStorageGroup)
	assert.Empty(t, d.Volumes)
}

func TestFakeProviderUnknownDisk(t *testing.T) {
	f := NewFakeProvider()
	_, err := f.Info(context.Background(), "disk9")
	require.Error(t, err)
	out, ok := OutputOf(err)
	assert.True(t, ok)
	assert.Contains(t, out, "Could not find disk")
}
