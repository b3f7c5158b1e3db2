// pkg/session/persist_test.go
package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penkit-sh/penkit/pkg/engine"
)

// runOnce drives the current session of m through one module execution.
func runOnce(t *testing.T, m *Manager) {
	t.Helper()
	if m.Current().Active() == nil {
		_, err := m.Use("fake_scanner")
		require.NoError(t, err)
		require.NoError(t, m.Current().SetOption("target", "10.0.0.5"))
	}
	_, err := m.Run(context.Background())
	require.NoError(t, err)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	reg, _ := testRegistry(t, nil)
	m := NewManager(reg, nil)
	m.Current().Vars["domain"] = "lab.local"
	runOnce(t, m)

	st := NewStore(t.TempDir())
	require.NoError(t, st.Save(m.Current()))

	loaded, err := st.Load(DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionID, loaded.ID)
	assert.WithinDuration(t, m.Current().CreatedAt, loaded.CreatedAt, time.Second)
	assert.Equal(t, map[string]string{"domain": "lab.local"}, loaded.Vars)

	history := loaded.History()
	require.Len(t, history, 1)
	assert.Equal(t, "fake_scanner", history[0].Tool)
	assert.Equal(t, 0, history[0].ExitCode)
	assert.True(t, history[0].Success)
	assert.NotNil(t, history[0].Parsed)

	// Module selection is runtime state and does not survive a reload.
	assert.Equal(t, StateIdle, loaded.State())
	assert.Nil(t, loaded.Active())
}

func TestStore_SaveAppendsWithoutDuplicating(t *testing.T) {
	reg, _ := testRegistry(t, nil)
	m := NewManager(reg, nil)
	runOnce(t, m)

	st := NewStore(t.TempDir())
	require.NoError(t, st.Save(m.Current()))
	require.NoError(t, st.Save(m.Current()))

	runOnce(t, m)
	require.NoError(t, st.Save(m.Current()))

	files, err := os.ReadDir(filepath.Join(st.Root(), DefaultSessionID, resultsDir))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	loaded, err := st.Load(DefaultSessionID)
	require.NoError(t, err)
	history := loaded.History()
	require.Len(t, history, 2)
	assert.NotEqual(t, history[0].ID, history[1].ID)
}

func TestStore_LoadUnknownSession(t *testing.T) {
	st := NewStore(t.TempDir())
	_, err := st.Load("ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrNotFound))
}

func TestStore_RestoreSkipsMalformedDirs(t *testing.T) {
	reg, _ := testRegistry(t, nil)
	root := t.TempDir()
	st := NewStore(root)

	src := NewManager(reg, nil)
	_, err := src.Create("recon")
	require.NoError(t, err)
	src.Current().Vars["scope"] = "10.0.0.0/24"
	runOnce(t, src)
	require.NoError(t, st.Save(src.Current()))

	// A directory without metadata and one with garbage metadata.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "corrupt"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "corrupt", metadataFile), []byte("[not yaml"), 0o600))

	dst := NewManager(reg, nil)
	n := st.Restore(dst)
	assert.Equal(t, 1, n)

	restored, err := dst.Get("recon")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/24", restored.Vars["scope"])
	assert.Len(t, restored.History(), 1)
	assert.Equal(t, DefaultSessionID, dst.Current().ID, "restore must not steal the current session")
}

func TestStore_SaveAll(t *testing.T) {
	reg, _ := testRegistry(t, nil)
	m := NewManager(reg, nil)
	_, err := m.Create("recon")
	require.NoError(t, err)
	runOnce(t, m)

	st := NewStore(t.TempDir())
	require.NoError(t, st.SaveAll(m))

	for _, id := range []string{DefaultSessionID, "recon"} {
		_, err := st.Load(id)
		require.NoError(t, err, "session %s should be on disk", id)
	}
}
