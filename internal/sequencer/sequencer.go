// Package sequencer implements the Pomodoro phase state machine.
//
// A Sequencer cycles Work -> ShortBreak -> Work ... with a LongBreak after
// every fourth work interval. Each production step computes the successor
// phase, notifies the observer, and blocks the calling goroutine for the
// phase's duration before returning it. A Sequencer is owned by a single
// goroutine and is not safe for concurrent use.
package sequencer

import (
	"context"
	"iter"
	"math"
	"time"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
)

// Sequencer owns the current phase, the previous phase, the configured
// durations and the completed work interval counter.
type Sequencer struct {
	work           time.Duration
	brk            time.Duration
	longBreakAfter int
	longBreakRatio int

	completed int
	previous  core.Phase
	current   core.Phase
	started   bool

	observer core.Observer
	waiter   core.Waiter
	now      func() time.Time
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithObserver sets the observer notified on every phase change.
func WithObserver(observer core.Observer) Option {
	return func(s *Sequencer) {
		s.observer = observer
	}
}

// WithWaiter replaces the default timer-based waiter.
func WithWaiter(waiter core.Waiter) Option {
	return func(s *Sequencer) {
		s.waiter = waiter
	}
}

// WithLongBreak sets the long-break cadence and length multiplier.
func WithLongBreak(after, ratio int) Option {
	return func(s *Sequencer) {
		s.longBreakAfter = after
		s.longBreakRatio = ratio
	}
}

// WithClock sets the time source used to stamp phase changes.
func WithClock(now func() time.Time) Option {
	return func(s *Sequencer) {
		s.now = now
	}
}

// New creates a Sequencer in the Pause phase.
// Zero durations are accepted and make the corresponding phase return
// immediately; negative or unrepresentable durations are rejected.
func New(work, brk time.Duration, opts ...Option) (*Sequencer, error) {
	if work < 0 {
		return nil, core.ErrInvalidDuration("work", work)
	}
	if brk < 0 {
		return nil, core.ErrInvalidDuration("break", brk)
	}

	s := &Sequencer{
		work:           work,
		brk:            brk,
		longBreakAfter: core.LongBreakAfter,
		longBreakRatio: core.LongBreakRatio,
		previous:       core.PhasePause,
		current:        core.PhasePause,
		waiter:         TimerWaiter{},
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.longBreakAfter <= 0 || s.longBreakRatio <= 0 {
		return nil, core.ErrValidation(core.CodeInvalidCadence, "long break cadence and ratio must be positive").
			WithDetail("after", s.longBreakAfter).
			WithDetail("ratio", s.longBreakRatio)
	}
	if brk > time.Duration(math.MaxInt64/int64(s.longBreakRatio)) {
		return nil, core.ErrValidation(core.CodeInvalidDuration, "long break duration overflows").
			WithDetail("break", brk).
			WithDetail("ratio", s.longBreakRatio)
	}
	if s.waiter == nil {
		s.waiter = TimerWaiter{}
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s, nil
}

// Start enters Work directly, bypassing the successor computation, and
// blocks for the work duration. It may only be called once.
func (s *Sequencer) Start(ctx context.Context) error {
	if s.started {
		return core.ErrState(core.CodeAlreadyStarted, "sequencer already started")
	}
	if s.current == core.PhaseStop {
		return core.ErrState(core.CodeStopped, "sequencer stopped")
	}
	s.started = true
	return s.change(ctx, core.PhaseWork)
}

// Next advances to the successor phase, blocks for its duration and
// returns it. ok is false when the sequence is exhausted (the current phase
// is Stop) or when no transition took place because of err. When the wait
// is interrupted the transition has already happened: Next returns the new
// phase, ok=true and a WAIT_INTERRUPTED error.
func (s *Sequencer) Next(ctx context.Context) (phase core.Phase, ok bool, err error) {
	next := s.successor()
	if next == core.PhaseStop {
		return core.PhaseStop, false, nil
	}
	if !s.started {
		return s.current, false, core.ErrState(core.CodeNotStarted, "sequencer not started")
	}
	return next, true, s.change(ctx, next)
}

// Phases returns the lazy sequence of produced phases. Iteration ends when
// the sequencer reaches Stop, when the consumer stops pulling, or after the
// first error is yielded.
func (s *Sequencer) Phases(ctx context.Context) iter.Seq2[core.Phase, error] {
	return func(yield func(core.Phase, error) bool) {
		for {
			phase, ok, err := s.Next(ctx)
			if err != nil {
				yield(phase, err)
				return
			}
			if !ok {
				return
			}
			if !yield(phase, nil) {
				return
			}
		}
	}
}

// Pause records the active phase as previous and enters Pause, blocking
// until MaxPauseTime elapses or ctx is done. The next production resumes
// the interrupted phase. Pausing while paused changes nothing.
func (s *Sequencer) Pause(ctx context.Context) error {
	switch {
	case !s.started:
		return core.ErrState(core.CodeNotStarted, "sequencer not started")
	case s.current == core.PhaseStop:
		return core.ErrState(core.CodeStopped, "sequencer stopped")
	case s.current == core.PhasePause:
		return nil
	}
	return s.change(ctx, core.PhasePause)
}

// Stop moves the sequencer to its terminal phase. The following production
// reports exhaustion. Stop does not block.
func (s *Sequencer) Stop() {
	if s.current == core.PhaseStop {
		return
	}
	s.previous = s.current
	s.current = core.PhaseStop
	s.notify(0)
}

// Current returns the active phase.
func (s *Sequencer) Current() core.Phase { return s.current }

// Previous returns the phase active before the current one.
func (s *Sequencer) Previous() core.Phase { return s.previous }

// Completed returns the number of work intervals entered so far.
func (s *Sequencer) Completed() int { return s.completed }

// Started reports whether Start has been called.
func (s *Sequencer) Started() bool { return s.started }

// WaitFor returns how long the sequencer blocks on entering phase.
func (s *Sequencer) WaitFor(phase core.Phase) time.Duration {
	switch phase {
	case core.PhaseWork:
		return s.work
	case core.PhaseShortBreak:
		return s.brk
	case core.PhaseLongBreak:
		return s.brk * time.Duration(s.longBreakRatio)
	case core.PhasePause:
		return core.MaxPauseTime
	default:
		return 0
	}
}

func (s *Sequencer) successor() core.Phase {
	switch s.current {
	case core.PhaseWork:
		if s.completed%s.longBreakAfter != 0 {
			return core.PhaseShortBreak
		}
		return core.PhaseLongBreak
	case core.PhaseShortBreak, core.PhaseLongBreak:
		return core.PhaseWork
	case core.PhasePause:
		return s.previous
	default:
		return core.PhaseStop
	}
}

// change performs a transition: it must update previous before current so
// that Pause can restore the interrupted phase.
func (s *Sequencer) change(ctx context.Context, next core.Phase) error {
	s.previous = s.current
	s.current = next
	if next == core.PhaseWork {
		s.completed++
	}

	wait := s.WaitFor(next)
	s.notify(wait)

	if err := s.waiter.Wait(ctx, wait); err != nil {
		return core.ErrWaitInterrupted(next, err)
	}
	return nil
}

func (s *Sequencer) notify(wait time.Duration) {
	if s.observer == nil {
		return
	}
	s.observer.OnPhaseChange(core.PhaseChange{
		Previous:  s.previous,
		Phase:     s.current,
		Wait:      wait,
		Completed: s.completed,
		At:        s.now(),
	})
}
