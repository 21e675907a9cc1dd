package core

import (
	"context"
	"time"
)

// Observer receives phase-change events from a sequencer.
// Implementations are called synchronously on the sequencer's goroutine and
// should return quickly.
type Observer interface {
	OnPhaseChange(change PhaseChange)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(change PhaseChange)

// OnPhaseChange calls f(change).
func (f ObserverFunc) OnPhaseChange(change PhaseChange) {
	f(change)
}

// Observers fans a phase change out to several observers in order.
type Observers []Observer

// OnPhaseChange notifies each non-nil observer.
func (o Observers) OnPhaseChange(change PhaseChange) {
	for _, obs := range o {
		if obs != nil {
			obs.OnPhaseChange(change)
		}
	}
}

// Waiter blocks the calling goroutine for a phase duration.
// Wait must not busy-wait and must return once d has elapsed without any
// external signal. It returns early with an error when ctx is done.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// Session describes one run of the timer.
type Session struct {
	ID        string        `json:"id"`
	Task      string        `json:"task"`
	Work      time.Duration `json:"work"`
	Break     time.Duration `json:"break"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
}

// Journal persists sessions and the phase changes they produced.
// It is an append-only log and is never used to restore timer state.
type Journal interface {
	BeginSession(ctx context.Context, session Session) error
	Record(ctx context.Context, sessionID string, change PhaseChange) error
	EndSession(ctx context.Context, sessionID string, at time.Time) error
}
