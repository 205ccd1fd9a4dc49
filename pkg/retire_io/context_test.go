package retire_io

import (
	"context"
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestContext(t *testing.T) *RuntimeContext {
	t.Helper()
	logger.SetLogger(zaptest.NewLogger(t))
	return NewContext(context.Background(), "probe")
}

func TestNewContext(t *testing.T) {
	rc := newTestContext(t)
	require.NotNil(t, rc.Ctx)
	require.NotNil(t, rc.Log)
	assert.Equal(t, "probe", rc.Command)
	assert.Equal(t, "retire_io", rc.Component)
	assert.NotNil(t, rc.Attributes)
	assert.False(t, rc.Timestamp.IsZero())
}

func TestHandlePanicConvertsToAssertion(t *testing.T) {
	rc := newTestContext(t)

	run := func() (err error) {
		defer rc.HandlePanic(&err)
		panic("boom")
	}

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestEndAcceptsNilAndError(t *testing.T) {
	rc := newTestContext(t)
	rc.Attributes["session_id"] = "abc"

	var ok error
	assert.NotPanics(t, func() { rc.End(&ok) })

	rc = newTestContext(t)
	failed := errors.New("failed")
	assert.NotPanics(t, func() { rc.End(&failed) })
	assert.NotPanics(t, func() { newTestContext(t).End(nil) })
}
