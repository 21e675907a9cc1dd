package sequencer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
)

// recordingWaiter returns immediately and remembers every requested wait.
type recordingWaiter struct {
	waits []time.Duration
	err   error
}

func (w *recordingWaiter) Wait(_ context.Context, d time.Duration) error {
	w.waits = append(w.waits, d)
	return w.err
}

type recordingObserver struct {
	changes []core.PhaseChange
}

func (o *recordingObserver) OnPhaseChange(change core.PhaseChange) {
	o.changes = append(o.changes, change)
}

func newTestSequencer(t *testing.T, work, brk time.Duration, opts ...Option) (*Sequencer, *recordingWaiter, *recordingObserver) {
	t.Helper()
	waiter := &recordingWaiter{}
	observer := &recordingObserver{}
	opts = append([]Option{WithWaiter(waiter), WithObserver(observer)}, opts...)
	seq, err := New(work, brk, opts...)
	require.NoError(t, err)
	return seq, waiter, observer
}

func TestNew_InitialState(t *testing.T) {
	seq, _, _ := newTestSequencer(t, 25*time.Minute, 5*time.Minute)

	assert.Equal(t, core.PhasePause, seq.Current())
	assert.Equal(t, core.PhasePause, seq.Previous())
	assert.Equal(t, 0, seq.Completed())
	assert.False(t, seq.Started())
}

func TestNew_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		work time.Duration
		brk  time.Duration
		opts []Option
		code string
	}{
		{"negative work", -time.Second, time.Second, nil, core.CodeInvalidDuration},
		{"negative break", time.Second, -time.Second, nil, core.CodeInvalidDuration},
		{"zero cadence", time.Second, time.Second, []Option{WithLongBreak(0, 4)}, core.CodeInvalidCadence},
		{"zero ratio", time.Second, time.Second, []Option{WithLongBreak(4, 0)}, core.CodeInvalidCadence},
		{"long break overflow", time.Second, time.Duration(1 << 62), nil, core.CodeInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := New(tt.work, tt.brk, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, seq)
			assert.True(t, core.IsCategory(err, core.ErrCatValidation))
			assert.True(t, core.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestStart_EntersWork(t *testing.T) {
	seq, waiter, observer := newTestSequencer(t, 5*time.Second, 2*time.Second)

	require.NoError(t, seq.Start(context.Background()))

	assert.Equal(t, core.PhaseWork, seq.Current())
	assert.Equal(t, core.PhasePause, seq.Previous())
	assert.Equal(t, 1, seq.Completed())
	assert.Equal(t, []time.Duration{5 * time.Second}, waiter.waits)
	require.Len(t, observer.changes, 1)
	assert.Equal(t, core.PhaseChange{
		Previous:  core.PhasePause,
		Phase:     core.PhaseWork,
		Wait:      5 * time.Second,
		Completed: 1,
		At:        observer.changes[0].At,
	}, observer.changes[0])
}

func TestStart_Twice(t *testing.T) {
	seq, _, _ := newTestSequencer(t, time.Second, time.Second)
	require.NoError(t, seq.Start(context.Background()))

	err := seq.Start(context.Background())
	require.Error(t, err)
	assert.True(t, core.HasCode(err, core.CodeAlreadyStarted))
	assert.Equal(t, 1, seq.Completed())
}

func TestNext_BeforeStart(t *testing.T) {
	seq, waiter, _ := newTestSequencer(t, time.Second, time.Second)

	phase, ok, err := seq.Next(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, core.PhasePause, phase)
	assert.True(t, core.HasCode(err, core.CodeNotStarted))
	assert.Empty(t, waiter.waits)
}

func TestEndToEnd_FirstCycle(t *testing.T) {
	ctx := context.Background()
	seq, waiter, observer := newTestSequencer(t, 5*time.Second, 2*time.Second)

	require.NoError(t, seq.Start(ctx))
	phases := []core.Phase{seq.Current()}
	counts := []int{seq.Completed()}
	for i := 0; i < 7; i++ {
		phase, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		phases = append(phases, phase)
		counts = append(counts, seq.Completed())
	}

	assert.Equal(t, []core.Phase{
		core.PhaseWork, core.PhaseShortBreak,
		core.PhaseWork, core.PhaseShortBreak,
		core.PhaseWork, core.PhaseShortBreak,
		core.PhaseWork, core.PhaseLongBreak,
	}, phases)
	assert.Equal(t, []int{1, 1, 2, 2, 3, 3, 4, 4}, counts)
	assert.Equal(t, []time.Duration{
		5 * time.Second, 2 * time.Second,
		5 * time.Second, 2 * time.Second,
		5 * time.Second, 2 * time.Second,
		5 * time.Second, 8 * time.Second,
	}, waiter.waits)
	require.Len(t, observer.changes, 8)
	assert.Equal(t, core.PhaseWork, observer.changes[7].Previous)
	assert.Equal(t, core.PhaseLongBreak, observer.changes[7].Phase)
}

func TestLongBreakPlacement(t *testing.T) {
	ctx := context.Background()
	seq, _, _ := newTestSequencer(t, time.Second, time.Second)
	require.NoError(t, seq.Start(ctx))

	after := map[int]core.Phase{}
	for seq.Completed() <= 8 {
		count := seq.Completed()
		phase, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		if phase.IsBreak() {
			after[count] = phase
		}
	}

	for _, n := range []int{1, 2, 3, 5, 6, 7} {
		assert.Equal(t, core.PhaseShortBreak, after[n], "after work interval %d", n)
	}
	for _, n := range []int{4, 8} {
		assert.Equal(t, core.PhaseLongBreak, after[n], "after work interval %d", n)
	}
}

func TestCustomCadence(t *testing.T) {
	ctx := context.Background()
	seq, waiter, _ := newTestSequencer(t, time.Second, 3*time.Second, WithLongBreak(2, 3))
	require.NoError(t, seq.Start(ctx))

	var phases []core.Phase
	for i := 0; i < 4; i++ {
		phase, _, err := seq.Next(ctx)
		require.NoError(t, err)
		phases = append(phases, phase)
	}

	assert.Equal(t, []core.Phase{core.PhaseShortBreak, core.PhaseWork, core.PhaseLongBreak, core.PhaseWork}, phases)
	assert.Equal(t, 9*time.Second, waiter.waits[3])
}

func TestAlternation_AndMonotonicCounter(t *testing.T) {
	ctx := context.Background()
	seq, _, _ := newTestSequencer(t, time.Second, time.Second)
	require.NoError(t, seq.Start(ctx))

	prev := seq.Current()
	prevCount := seq.Completed()
	entries := 1
	for i := 0; i < 50; i++ {
		phase, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		if prev == core.PhaseWork {
			assert.True(t, phase.IsBreak(), "work followed by %s", phase)
		} else {
			assert.Equal(t, core.PhaseWork, phase, "%s followed by %s", prev, phase)
		}
		if phase == core.PhaseWork {
			entries++
		}
		assert.GreaterOrEqual(t, seq.Completed(), prevCount)
		prev, prevCount = phase, seq.Completed()
	}
	assert.Equal(t, entries, seq.Completed())
}

func TestPause_RoundTrip(t *testing.T) {
	for _, target := range []core.Phase{core.PhaseWork, core.PhaseShortBreak, core.PhaseLongBreak} {
		t.Run(target.String(), func(t *testing.T) {
			ctx := context.Background()
			seq, waiter, _ := newTestSequencer(t, time.Second, time.Second)
			require.NoError(t, seq.Start(ctx))
			for seq.Current() != target {
				_, _, err := seq.Next(ctx)
				require.NoError(t, err)
			}

			require.NoError(t, seq.Pause(ctx))
			assert.Equal(t, core.PhasePause, seq.Current())
			assert.Equal(t, target, seq.Previous())
			assert.Equal(t, core.MaxPauseTime, waiter.waits[len(waiter.waits)-1])

			phase, ok, err := seq.Next(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, target, phase)
			assert.Equal(t, core.PhasePause, seq.Previous())
		})
	}
}

func TestPause_WhilePausedKeepsPhase(t *testing.T) {
	ctx := context.Background()
	seq, waiter, _ := newTestSequencer(t, time.Second, time.Second)
	require.NoError(t, seq.Start(ctx))
	_, _, err := seq.Next(ctx)
	require.NoError(t, err)

	require.NoError(t, seq.Pause(ctx))
	waits := len(waiter.waits)
	require.NoError(t, seq.Pause(ctx))

	assert.Len(t, waiter.waits, waits)
	assert.Equal(t, core.PhaseShortBreak, seq.Previous())
}

func TestPause_ResumeIntoWorkCountsInterval(t *testing.T) {
	ctx := context.Background()
	seq, _, _ := newTestSequencer(t, time.Second, time.Second)
	require.NoError(t, seq.Start(ctx))

	require.NoError(t, seq.Pause(ctx))
	phase, _, err := seq.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, core.PhaseWork, phase)
	assert.Equal(t, 2, seq.Completed())
}

func TestPause_Errors(t *testing.T) {
	seq, _, _ := newTestSequencer(t, time.Second, time.Second)
	err := seq.Pause(context.Background())
	assert.True(t, core.HasCode(err, core.CodeNotStarted))

	require.NoError(t, seq.Start(context.Background()))
	seq.Stop()
	err = seq.Pause(context.Background())
	assert.True(t, core.HasCode(err, core.CodeStopped))
}

func TestStop_ExhaustsSequence(t *testing.T) {
	ctx := context.Background()
	seq, waiter, observer := newTestSequencer(t, time.Second, time.Second)
	require.NoError(t, seq.Start(ctx))

	seq.Stop()
	assert.Equal(t, core.PhaseStop, seq.Current())
	assert.Equal(t, core.PhaseWork, seq.Previous())
	last := observer.changes[len(observer.changes)-1]
	assert.Equal(t, core.PhaseStop, last.Phase)
	assert.Equal(t, time.Duration(0), last.Wait)

	waits := len(waiter.waits)
	phase, ok, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, core.PhaseStop, phase)
	assert.Len(t, waiter.waits, waits)

	seq.Stop()
	assert.Len(t, observer.changes, 2)
}

func TestStop_BeforeStart(t *testing.T) {
	seq, _, _ := newTestSequencer(t, time.Second, time.Second)
	seq.Stop()

	_, ok, err := seq.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	err = seq.Start(context.Background())
	assert.True(t, core.HasCode(err, core.CodeStopped))
}

func TestZeroDurations(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	seq, err := New(0, 0)
	require.NoError(t, err)
	require.NoError(t, seq.Start(ctx))

	var phases []core.Phase
	for i := 0; i < 8; i++ {
		phase, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		phases = append(phases, phase)
	}
	assert.Equal(t, core.PhaseLongBreak, phases[6])
	assert.Equal(t, 5, seq.Completed())
	assert.Equal(t, time.Duration(0), seq.WaitFor(core.PhaseLongBreak))
}

func TestNext_WaitInterrupted(t *testing.T) {
	ctx := context.Background()
	seq, waiter, _ := newTestSequencer(t, time.Second, time.Second)
	require.NoError(t, seq.Start(ctx))

	waiter.err = context.Canceled
	phase, ok, err := seq.Next(ctx)

	require.Error(t, err)
	assert.True(t, ok)
	assert.Equal(t, core.PhaseShortBreak, phase)
	assert.Equal(t, core.PhaseShortBreak, seq.Current())
	assert.True(t, core.HasCode(err, core.CodeWaitInterrupted))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPhases_Iterator(t *testing.T) {
	ctx := context.Background()
	seq, _, _ := newTestSequencer(t, time.Second, time.Second)
	require.NoError(t, seq.Start(ctx))

	var got []core.Phase
	for phase, err := range seq.Phases(ctx) {
		require.NoError(t, err)
		got = append(got, phase)
		if len(got) == 3 {
			seq.Stop()
		}
	}

	assert.Equal(t, []core.Phase{core.PhaseShortBreak, core.PhaseWork, core.PhaseShortBreak}, got)
}

func TestPhases_StopsPulling(t *testing.T) {
	ctx := context.Background()
	seq, waiter, _ := newTestSequencer(t, time.Second, time.Second)
	require.NoError(t, seq.Start(ctx))

	for range seq.Phases(ctx) {
		break
	}
	assert.Len(t, waiter.waits, 2)
	assert.Equal(t, core.PhaseShortBreak, seq.Current())
}

func TestPhases_YieldsError(t *testing.T) {
	seq, _, _ := newTestSequencer(t, time.Second, time.Second)

	var errs []error
	for _, err := range seq.Phases(context.Background()) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.True(t, core.HasCode(errs[0], core.CodeNotStarted))
}

func TestWithClock_StampsChanges(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	seq, _, observer := newTestSequencer(t, time.Second, time.Second, WithClock(func() time.Time { return fixed }))
	require.NoError(t, seq.Start(context.Background()))

	assert.Equal(t, fixed, observer.changes[0].At)
}
