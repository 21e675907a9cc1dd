package journal

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newSession(task string, started time.Time) core.Session {
	return core.Session{
		ID:        NewSessionID(),
		Task:      task,
		Work:      25 * time.Minute,
		Break:     5 * time.Minute,
		StartedAt: started,
	}
}

func TestStore_SessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	started := time.Date(2026, 3, 2, 9, 0, 0, 123, time.UTC)

	session := newSession("write report", started)
	require.NoError(t, store.BeginSession(ctx, session))

	changes := []core.PhaseChange{
		{Previous: core.PhasePause, Phase: core.PhaseWork, Wait: 25 * time.Minute, Completed: 1, At: started},
		{Previous: core.PhaseWork, Phase: core.PhaseShortBreak, Wait: 5 * time.Minute, Completed: 1, At: started.Add(25 * time.Minute)},
		{Previous: core.PhaseShortBreak, Phase: core.PhaseWork, Wait: 25 * time.Minute, Completed: 2, At: started.Add(30 * time.Minute)},
	}
	for _, c := range changes {
		require.NoError(t, store.Record(ctx, session.ID, c))
	}
	ended := started.Add(40 * time.Minute)
	require.NoError(t, store.EndSession(ctx, session.ID, ended))

	sessions, err := store.Sessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	got := sessions[0]
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "write report", got.Task)
	assert.Equal(t, 25*time.Minute, got.Work)
	assert.Equal(t, 5*time.Minute, got.Break)
	assert.True(t, started.Equal(got.StartedAt))
	require.NotNil(t, got.EndedAt)
	assert.True(t, ended.Equal(*got.EndedAt))
	assert.Equal(t, 2, got.Completed)
	assert.Equal(t, 3, got.Changes)

	stored, err := store.Changes(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, stored, len(changes))
	for i := range changes {
		assert.Equal(t, changes[i].Previous, stored[i].Previous)
		assert.Equal(t, changes[i].Phase, stored[i].Phase)
		assert.Equal(t, changes[i].Wait, stored[i].Wait)
		assert.Equal(t, changes[i].Completed, stored[i].Completed)
		assert.True(t, changes[i].At.Equal(stored[i].At))
	}
}

func TestStore_SessionsNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	for i, task := range []string{"first", "second", "third"} {
		require.NoError(t, store.BeginSession(ctx, newSession(task, base.Add(time.Duration(i)*time.Hour))))
	}

	sessions, err := store.Sessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "third", sessions[0].Task)
	assert.Equal(t, "second", sessions[1].Task)
	assert.Nil(t, sessions[0].EndedAt)
	assert.Zero(t, sessions[0].Changes)
}

func TestStore_BeginSessionValidation(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	err := store.BeginSession(ctx, core.Session{Task: "x"})
	assert.True(t, core.IsCategory(err, core.ErrCatValidation))

	err = store.BeginSession(ctx, core.Session{ID: "not-a-uuid", Task: "x"})
	assert.True(t, core.IsCategory(err, core.ErrCatValidation))

	session := newSession("dup", time.Now())
	require.NoError(t, store.BeginSession(ctx, session))
	err = store.BeginSession(ctx, session)
	assert.True(t, core.HasCode(err, core.CodeJournalFailed))
}

func TestStore_RecordUnknownSession(t *testing.T) {
	store := openTestStore(t)

	err := store.Record(context.Background(), NewSessionID(), core.PhaseChange{
		Previous: core.PhasePause, Phase: core.PhaseWork, Completed: 1,
	})
	assert.True(t, core.HasCode(err, core.CodeJournalFailed), "foreign key should reject orphan changes: %v", err)
}

func TestStore_EndSessionNotFound(t *testing.T) {
	store := openTestStore(t)

	err := store.EndSession(context.Background(), NewSessionID(), time.Now())
	assert.True(t, core.IsCategory(err, core.ErrCatNotFound))
}

func TestStore_ChangesNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Changes(context.Background(), NewSessionID())
	assert.True(t, core.IsCategory(err, core.ErrCatNotFound))
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	store, err := Open(path)
	require.NoError(t, err)
	session := newSession("persist", time.Now())
	require.NoError(t, store.BeginSession(ctx, session))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	sessions, err := reopened.Sessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, session.ID, sessions[0].ID)
	assert.Equal(t, path, reopened.Path())
}

func TestStore_ConcurrentRecordsKeepSequence(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	session := newSession("busy", time.Now())
	require.NoError(t, store.BeginSession(ctx, session))

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, store.Record(ctx, session.ID, core.PhaseChange{
				Previous: core.PhaseShortBreak, Phase: core.PhaseWork, Completed: n, At: time.Now(),
			}))
		}(i)
	}
	wg.Wait()

	changes, err := store.Changes(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, changes, 8)
}

type failingJournal struct {
	calls int
}

func (f *failingJournal) BeginSession(context.Context, core.Session) error { return nil }
func (f *failingJournal) EndSession(context.Context, string, time.Time) error {
	return nil
}
func (f *failingJournal) Record(context.Context, string, core.PhaseChange) error {
	f.calls++
	return errors.New("disk full")
}

func TestRecorder_WritesChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := openTestStore(t)
	session := newSession("observed", time.Now())
	require.NoError(t, store.BeginSession(ctx, session))

	rec := NewRecorder(ctx, store, session.ID, nil)
	rec.OnPhaseChange(core.PhaseChange{Previous: core.PhasePause, Phase: core.PhaseWork, Completed: 1})
	cancel()
	rec.OnPhaseChange(core.PhaseChange{Previous: core.PhaseWork, Phase: core.PhaseStop, Completed: 1})

	require.NoError(t, rec.Err())
	changes, err := store.Changes(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, core.PhaseStop, changes[1].Phase)
	assert.False(t, changes[0].At.IsZero())
}

func TestRecorder_KeepsFirstError(t *testing.T) {
	j := &failingJournal{}
	rec := NewRecorder(context.Background(), j, "s", nil)

	rec.OnPhaseChange(core.PhaseChange{Phase: core.PhaseWork})
	rec.OnPhaseChange(core.PhaseChange{Phase: core.PhaseShortBreak})

	assert.Equal(t, 2, j.calls)
	assert.EqualError(t, rec.Err(), "disk full")
}
