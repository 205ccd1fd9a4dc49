package privilege_check

import (
	"context"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
)

func withEUID(t *testing.T, uid int) {
	t.Helper()
	prev := geteuid
	geteuid = func() int { return uid }
	t.Cleanup(func() { geteuid = prev })
}

func TestRequireRootRejectsRegularUser(t *testing.T) {
	withEUID(t, 501)

	err := ProcessChecker{}.RequireRoot(context.Background())
	require.Error(t, err)
	assert.True(t, cerr.Is(err, retire_err.ErrPrecondition))
	assert.Contains(t, cerr.FlattenHints(err), "sudo")
	assert.Equal(t, retire_err.ExitPrecondition, retire_err.GetExitCode(err))
}

func TestRequireRootAcceptsRoot(t *testing.T) {
	withEUID(t, 0)
	assert.NoError(t, ProcessChecker{}.RequireRoot(context.Background()))
}

func TestCheckPrivilegesLevel(t *testing.T) {
	withEUID(t, 0)
	check, err := CheckPrivileges(context.Background())
	require.NoError(t, err)
	assert.True(t, check.IsRoot)
	assert.Equal(t, PrivilegeLevelRoot, check.Level)

	withEUID(t, 1000)
	check, err = CheckPrivileges(context.Background())
	require.NoError(t, err)
	assert.False(t, check.IsRoot)
	assert.Equal(t, PrivilegeLevelRegular, check.Level)
}
