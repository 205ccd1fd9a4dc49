package diskutil

import (
	"context"
	"testing"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/execute"
)

const listPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>AllDisks</key>
	<array>
		<string>disk0</string>
		<string>disk0s1</string>
		<string>disk0s2</string>
		<string>disk2</string>
	</array>
	<key>VolumesFromDisks</key>
	<array>
		<string>Macintosh HD</string>
	</array>
	<key>WholeDisks</key>
	<array>
		<string>disk0</string>
		<string>disk2</string>
	</array>
</dict>
</plist>
`

const infoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>Content</key>
	<string>GUID_partition_scheme</string>
	<key>DeviceIdentifier</key>
	<string>disk0</string>
	<key>Internal</key>
	<true/>
	<key>Size</key>
	<integer>500277790720</integer>
	<key>WholeDisk</key>
	<true/>
</dict>
</plist>
`

const csInfoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>CoreStorageRole</key>
	<string>PV</string>
	<key>CoreStorageUUID</key>
	<string>5A6C7E1B-0000-4000-8000-000000000001</string>
	<key>MemberOfCoreStorageLogicalVolumeGroup</key>
	<string>C1F0A2B3-0000-4000-8000-0000000000AA</string>
</dict>
</plist>
`

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, opts execute.Options) (string, error) {
	args := m.Called(ctx, opts)
	return args.String(0), args.Error(1)
}

func withArgs(args ...string) interface{} {
	return mock.MatchedBy(func(opts execute.Options) bool {
		return assert.ObjectsAreEqual(args, opts.Args)
	})
}

func TestCommandProviderParsesList(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, withArgs("list", "-plist")).Return(listPlist, nil)

	p := NewCommandProvider(r, ProviderConfig{})
	list, err := p.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"disk0", "disk2"}, list.WholeDisks)
	assert.Len(t, list.AllDisks, 4)
	assert.Equal(t, []string{"Macintosh HD"}, list.VolumesFromDisks)
	r.AssertExpectations(t)
}

func TestCommandProviderParsesInfoAndCoreStorage(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, withArgs("info", "-plist", "disk0")).Return(infoPlist, nil)
	r.On("Run", mock.Anything, withArgs("cs", "info", "-plist", "disk0")).Return(csInfoPlist, nil)

	p := NewCommandProvider(r, ProviderConfig{})
	info, err := p.Info(context.Background(), "disk0")
	require.NoError(t, err)
	assert.True(t, info.Internal)
	assert.Equal(t, "GUID_partition_scheme", info.Content)

	cs, err := p.CoreStorageInfo(context.Background(), "disk0")
	require.NoError(t, err)
	assert.Equal(t, "C1F0A2B3-0000-4000-8000-0000000000AA", cs.MemberOfCoreStorageLogicalVolumeGroup)
}

func TestCommandProviderRejectsGarbage(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, withArgs("list", "-plist")).Return("not a plist <<<", nil).Once()
	r.On("Run", mock.Anything, withArgs("info", "-plist", "disk9")).Return("", nil).Once()

	p := NewCommandProvider(r, ProviderConfig{})
	_, err := p.List(context.Background())
	assert.Error(t, err)

	_, err = p.Info(context.Background(), "disk9")
	assert.Error(t, err)
}

func TestCommandProviderTimeoutsAndDestructiveFlags(t *testing.T) {
	r := &mockRunner{}
	var seen []execute.Options
	r.On("Run", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { seen = append(seen, args.Get(1).(execute.Options)) }).
		Return(listPlist, nil)

	p := NewCommandProvider(r, ProviderConfig{DiskutilPath: "/opt/diskutil", MetadataTimeout: 5 * time.Second})
	ctx := context.Background()

	_, _ = p.List(ctx)
	_, _ = p.VerifyDisk(ctx, "disk2")
	_ = p.Unmount(ctx, "disk2", true)
	_ = p.RepairVolume(ctx, "disk2")
	_ = p.DeleteLVG(ctx, "LVG")
	_ = p.ZeroErase(ctx, "disk2")

	require.Len(t, seen, 6)
	for _, opts := range seen {
		assert.Equal(t, "/opt/diskutil", opts.Command)
	}

	assert.Equal(t, 5*time.Second, seen[0].Timeout)
	assert.False(t, seen[0].Destructive)

	assert.Zero(t, seen[1].Timeout)
	assert.False(t, seen[1].Destructive)

	assert.Equal(t, []string{"unmountDisk", "force", "disk2"}, seen[2].Args)
	assert.Equal(t, []string{"repairVolume", "disk2"}, seen[3].Args)
	assert.Equal(t, []string{"cs", "delete", "LVG"}, seen[4].Args)
	assert.Equal(t, []string{"secureErase", "0", "disk2"}, seen[5].Args)
	for _, opts := range seen[2:] {
		assert.Zero(t, opts.Timeout)
		assert.True(t, opts.Destructive)
	}
}

func TestZeroEraseIgnoresCancellation(t *testing.T) {
	r := &mockRunner{}
	var ctxErr error
	r.On("Run", mock.Anything, withArgs("secureErase", "0", "disk2")).
		Run(func(args mock.Arguments) { ctxErr = args.Get(0).(context.Context).Err() }).
		Return("", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, NewCommandProvider(r, ProviderConfig{}).ZeroErase(ctx, "disk2"))
	assert.NoError(t, ctxErr)
}

func TestCommandErrorCarriesOutput(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, withArgs("cs", "info", "-plist", "disk0")).
		Return("Error: disk0 is not a CoreStorage disk\n", cerr.New("exit status 1"))

	_, err := NewCommandProvider(r, ProviderConfig{}).CoreStorageInfo(context.Background(), "disk0")
	require.Error(t, err)
	assert.True(t, IsNotCoreStorage(err))
	assert.Contains(t, err.Error(), "diskutil cs info -plist disk0")

	out, ok := OutputOf(cerr.Wrap(err, "wrapped"))
	assert.True(t, ok)
	assert.Contains(t, out, "not a CoreStorage disk")

	assert.False(t, IsNotCoreStorage(cerr.New("plain")))
	assert.False(t, IsNotCoreStorage(&CommandError{Command: "diskutil cs info", Output: "timeout", Err: cerr.New("killed")}))
}
