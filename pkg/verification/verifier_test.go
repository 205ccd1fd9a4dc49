package verification

import (
	"context"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap/zaptest"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
)

func setupLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t))))
}

func erased(id string) diskutil.FakeDisk {
	return diskutil.FakeDisk{ID: id, Internal: true, VerifyOutput: diskutil.ErasedVerifyOutput}
}

func TestVerifyErasedDisk(t *testing.T) {
	setupLogger(t)
	v := NewVerifier(diskutil.NewFakeProvider(erased("disk2")))

	r := v.Verify(context.Background(), "disk2")
	assert.True(t, r.Overall)
	assert.Empty(t, r.Failed())
	for _, name := range AllChecks {
		assert.True(t, r.Checks[name], name)
	}
}

func TestEachCheckForcedFalseFailsOverall(t *testing.T) {
	setupLogger(t)

	mutate := map[CheckName]func(d *diskutil.FakeDisk){
		CheckVerifyDisk:         func(d *diskutil.FakeDisk) { d.VerifyOutput = diskutil.HealthyVerifyOutput },
		CheckContentType:        func(d *diskutil.FakeDisk) { d.Content = "GUID_partition_scheme" },
		CheckWholeDiskPartition: func(d *diskutil.FakeDisk) { d.Partitions = []string{"disk2s1"} },
		CheckMountedVolumes:     func(d *diskutil.FakeDisk) { d.Volumes = []string{"Data"} },
	}

	for name, fn := range mutate {
		t.Run(string(name), func(t *testing.T) {
			d := erased("disk2")
			fn(&d)
			r := NewVerifier(diskutil.NewFakeProvider(d)).Verify(context.Background(), "disk2")
			assert.False(t, r.Checks[name])
			assert.False(t, r.Overall)
			assert.Equal(t, []string{string(name)}, r.Failed())
		})
	}
}

func TestNewResultIsConjunction(t *testing.T) {
	for mask := 0; mask < 1<<len(AllChecks); mask++ {
		checks := map[CheckName]bool{}
		want := true
		for i, name := range AllChecks {
			passed := mask&(1<<i) != 0
			checks[name] = passed
			want = want && passed
		}
		r := NewResult("disk2", checks)
		assert.Equal(t, want, r.Overall, "mask %04b", mask)
	}

	assert.False(t, NewResult("disk2", map[CheckName]bool{
		CheckVerifyDisk:  true,
		CheckContentType: true,
	}).Overall, "missing checks count as failed")
}

func TestVerifyDiskAnyOfMarkers(t *testing.T) {
	setupLogger(t)
	for _, out := range []string{
		"Error: Nonexistent partition map scheme",
		"Error: unknown partition map scheme",
		"Error: damaged partition map scheme",
		"Started partition map verification on disk2\nError: -69802: Nonexistent, unknown, or damaged Partition Map Scheme\n",
	} {
		d := erased("disk2")
		d.VerifyOutput = out
		r := NewVerifier(diskutil.NewFakeProvider(d)).Verify(context.Background(), "disk2")
		assert.True(t, r.Checks[CheckVerifyDisk], out)
	}
}

func TestVerifyDiskIgnoresMarkersOutsideSchemeLine(t *testing.T) {
	setupLogger(t)
	for _, out := range []string{
		"Started partition map verification on disk2\nError: unknown error (-69877)\n",
		"Unable to verify disk2: device is damaged or busy\n",
		"Nonexistent device\n",
		"",
	} {
		d := erased("disk2")
		d.VerifyOutput = out
		r := NewVerifier(diskutil.NewFakeProvider(d)).Verify(context.Background(), "disk2")
		assert.False(t, r.Checks[CheckVerifyDisk], out)
		assert.False(t, r.Overall, out)
	}
}

func TestSchemeLine(t *testing.T) {
	line, ok := schemeLine(diskutil.ErasedVerifyOutput)
	require.True(t, ok)
	assert.Equal(t, []string{"Nonexistent", "unknown", "damaged"}, matchedMarkers(line))

	line, ok = schemeLine(diskutil.HealthyVerifyOutput)
	assert.False(t, ok)
	assert.Empty(t, matchedMarkers(line))
}

type verifyErrProvider struct {
	*diskutil.FakeProvider
	err error
}

func (p verifyErrProvider) VerifyDisk(context.Context, string) (string, error) {
	return "", p.err
}

func TestVerifyDiskUsesErrorOutput(t *testing.T) {
	setupLogger(t)
	fake := diskutil.NewFakeProvider(erased("disk2"))

	withOutput := verifyErrProvider{FakeProvider: fake, err: &diskutil.CommandError{
		Command: "diskutil verifyDisk disk2",
		Output:  diskutil.ErasedVerifyOutput,
		Err:     cerr.New("exit status 1"),
	}}
	assert.True(t, NewVerifier(withOutput).Verify(context.Background(), "disk2").Checks[CheckVerifyDisk])

	noOutput := verifyErrProvider{FakeProvider: fake, err: cerr.New("fork/exec: no such file")}
	assert.False(t, NewVerifier(noOutput).Verify(context.Background(), "disk2").Checks[CheckVerifyDisk])
}

func TestFailedQueriesCountAsFalse(t *testing.T) {
	setupLogger(t)
	r := NewVerifier(diskutil.NewFakeProvider()).Verify(context.Background(), "disk9")
	assert.False(t, r.Overall)
	assert.Len(t, r.Failed(), len(AllChecks))
}

func TestVerifyIsIdempotent(t *testing.T) {
	setupLogger(t)
	d := erased("disk2")
	d.Volumes = []string{"Data"}
	v := NewVerifier(diskutil.NewFakeProvider(d))

	first := v.Verify(context.Background(), "disk2")
	second := v.Verify(context.Background(), "disk2")
	require.Equal(t, first, second)
}
