package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
	"github.com/hugo-lorenzo-mato/pomo/internal/sequencer"
	"github.com/hugo-lorenzo-mato/pomo/internal/testutil"
)

type instantWaiter struct{}

func (instantWaiter) Wait(context.Context, time.Duration) error { return nil }

func TestConsole_Golden_FullCycle(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(&buf, false)

	seq, err := sequencer.New(20*time.Minute, 5*time.Minute,
		sequencer.WithWaiter(instantWaiter{}),
		sequencer.WithObserver(core.ObserverFunc(console.PhaseChanged)),
	)
	require.NoError(t, err)

	ctx := context.Background()
	console.SessionStarted(core.Session{Task: "deep work"})
	require.NoError(t, seq.Start(ctx))
	for i := 0; i < 8; i++ {
		_, ok, err := seq.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}
	seq.Stop()
	console.SessionEnded(seq.Completed(), nil)

	testutil.NewGolden(t, "testdata").AssertString("full_cycle", buf.String())
}
