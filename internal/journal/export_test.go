package journal

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
)

func TestStore_ExportAndRead(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	started := time.Date(2026, 5, 4, 14, 0, 0, 0, time.UTC)

	busy := newSession("busy", started)
	require.NoError(t, store.BeginSession(ctx, busy))
	require.NoError(t, store.Record(ctx, busy.ID, core.PhaseChange{
		Previous: core.PhasePause, Phase: core.PhaseWork, Wait: busy.Work, Completed: 1, At: started,
	}))
	idle := newSession("idle", started.Add(time.Hour))
	require.NoError(t, store.BeginSession(ctx, idle))

	path := filepath.Join(t.TempDir(), "out", "journal.json")
	snap, err := store.Export(ctx, path, 0)
	require.NoError(t, err)
	require.Len(t, snap.Sessions, 2)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Contains(t, generic, "sessions")

	exp, err := ReadExport(path)
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, exp.Version)
	require.Len(t, exp.Sessions, 2)
	assert.Equal(t, "idle", exp.Sessions[0].Task)
	assert.NotNil(t, exp.Sessions[0].Changes)
	assert.Empty(t, exp.Sessions[0].Changes)
	assert.Equal(t, "busy", exp.Sessions[1].Task)
	require.Len(t, exp.Sessions[1].Changes, 1)
	assert.Equal(t, core.PhaseWork, exp.Sessions[1].Changes[0].Phase)
}

func TestStore_ExportLimit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.BeginSession(ctx, newSession("t", time.Now().Add(time.Duration(i)*time.Minute))))
	}

	snap, err := store.Export(ctx, filepath.Join(t.TempDir(), "x.json"), 1)
	require.NoError(t, err)
	assert.Len(t, snap.Sessions, 1)
}

func TestReadExport_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadExport(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{"), 0o600))
	_, err = ReadExport(garbage)
	assert.Error(t, err)

	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"version":99,"sessions":[]}`), 0o600))
	_, err = ReadExport(future)
	assert.True(t, core.IsCategory(err, core.ErrCatValidation))
}
