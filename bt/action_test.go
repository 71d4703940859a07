package bt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionLifecycle(t *testing.T) {
	var started, terminated int
	calls := 0
	a := NewAction("dig",
		func() { started++ },
		func(dt float32) bool {
			calls++
			return calls >= 2
		},
		func() { terminated++ },
	)

	require.Equal(t, ActionInactive, a.State())

	require.NoError(t, a.Start())
	assert.Equal(t, 1, started)
	assert.Equal(t, ActionRunning, a.State())

	assert.Equal(t, ActionRunning, a.Update(0.1))
	assert.Equal(t, ActionFinished, a.Update(0.1))
	assert.Equal(t, 0, terminated, "Update must not call onTerminate, only Terminate does")

	require.NoError(t, a.Reset())
	assert.Equal(t, ActionInactive, a.State())
}

func TestActionPreconditionViolations(t *testing.T) {
	a := NewAction("noop", nil, func(float32) bool { return false }, nil)

	var treeErr *TreeError
	require.ErrorAs(t, a.Terminate(), &treeErr)
	assert.Equal(t, KindInvalidState, treeErr.Kind)

	require.ErrorAs(t, a.Pause(), &treeErr)
	require.ErrorAs(t, a.Resume(), &treeErr)
	require.ErrorAs(t, a.Reset(), &treeErr)

	require.NoError(t, a.Start())
	require.ErrorAs(t, a.Start(), &treeErr)
}

func TestActionPauseResume(t *testing.T) {
	a := NewAction("wait", nil, func(float32) bool { return false }, nil)
	require.NoError(t, a.Start())
	require.NoError(t, a.Pause())
	assert.Equal(t, ActionPaused, a.State())

	assert.Equal(t, ActionPaused, a.Update(0.1), "Update must be a no-op while paused")

	require.NoError(t, a.Resume())
	assert.Equal(t, ActionRunning, a.State())
}

func TestNewActionRequiresOnUpdate(t *testing.T) {
	assert.Panics(t, func() {
		NewAction("broken", nil, nil, nil)
	})
}
