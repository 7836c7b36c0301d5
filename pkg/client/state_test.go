package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestState(t *testing.T) *State {
	t.Helper()
	state, err := OpenState(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { state.Close() })
	return state
}

func TestStateRoundTrip(t *testing.T) {
	state := openTestState(t)

	assert.Empty(t, state.GetLastUsername())
	require.NoError(t, state.SetLastUsername("alice"))
	assert.Equal(t, "alice", state.GetLastUsername())

	require.NoError(t, state.SetLastServer("chat.example.com:9000"))
	assert.Equal(t, "chat.example.com:9000", state.GetLastServer())

	assert.Equal(t, ModeSpartan, state.GetLastMode())
	require.NoError(t, state.SetLastMode(ModeGravemind))
	assert.Equal(t, ModeGravemind, state.GetLastMode())
}

func TestStateFirstRun(t *testing.T) {
	state := openTestState(t)

	assert.True(t, state.GetFirstRun())
	require.NoError(t, state.SetFirstRunComplete())
	assert.False(t, state.GetFirstRun())
}

func TestStatePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	state, err := OpenState(path)
	require.NoError(t, err)
	require.NoError(t, state.SetLastUsername("bob"))
	require.NoError(t, state.SaveSuccessfulConnection("chat.example.com:8080"))
	require.NoError(t, state.Close())

	state, err = OpenState(path)
	require.NoError(t, err)
	defer state.Close()
	assert.Equal(t, "bob", state.GetLastUsername())
}

func TestStateCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "state.db")
	state, err := OpenState(path)
	require.NoError(t, err)
	defer state.Close()
	assert.Equal(t, filepath.Dir(path), state.GetStateDir())
}
