// Package runner drives a sequencer for one session. A producer goroutine
// owns the sequencer and relays every phase change over an unbuffered
// channel to a consumer goroutine that reports it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/pomo/internal/control"
	"github.com/hugo-lorenzo-mato/pomo/internal/core"
	"github.com/hugo-lorenzo-mato/pomo/internal/events"
	"github.com/hugo-lorenzo-mato/pomo/internal/journal"
	"github.com/hugo-lorenzo-mato/pomo/internal/logging"
	"github.com/hugo-lorenzo-mato/pomo/internal/report"
	"github.com/hugo-lorenzo-mato/pomo/internal/sequencer"
)

// Consumer receives phase changes in production order until changes is
// closed. Returning early makes the producer fail with CONSUMER_GONE.
type Consumer func(ctx context.Context, changes <-chan core.PhaseChange) error

// ReportTo returns a consumer handing every change to rep.
func ReportTo(rep report.Reporter) Consumer {
	return func(_ context.Context, changes <-chan core.PhaseChange) error {
		for change := range changes {
			rep.PhaseChanged(change)
		}
		return nil
	}
}

// Runner runs timer sessions.
type Runner struct {
	reporter report.Reporter
	consumer Consumer
	journal  core.Journal
	bus      *events.Bus
	plane    *control.Plane
	logger   *logging.Logger
	seqOpts  []sequencer.Option
	extra    core.Observers
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithReporter sets the reporter for session start, phase changes and end.
func WithReporter(rep report.Reporter) Option {
	return func(r *Runner) {
		r.reporter = rep
	}
}

// WithConsumer replaces the consumer goroutine's body. The reporter still
// receives session start and end.
func WithConsumer(c Consumer) Option {
	return func(r *Runner) {
		r.consumer = c
	}
}

// WithJournal records the session and its phase changes.
func WithJournal(j core.Journal) Option {
	return func(r *Runner) {
		r.journal = j
	}
}

// WithBus publishes session and phase events on bus.
func WithBus(bus *events.Bus) Option {
	return func(r *Runner) {
		r.bus = bus
	}
}

// WithPlane sets the control plane carrying pause, resume and stop requests.
func WithPlane(p *control.Plane) Option {
	return func(r *Runner) {
		r.plane = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithObserver adds an observer notified after the built-in ones.
func WithObserver(o core.Observer) Option {
	return func(r *Runner) {
		r.extra = append(r.extra, o)
	}
}

// WithSequencerOptions passes options to every sequencer the runner creates.
// An observer set here is replaced by the runner's own; use WithObserver.
func WithSequencerOptions(opts ...sequencer.Option) Option {
	return func(r *Runner) {
		r.seqOpts = append(r.seqOpts, opts...)
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		reporter: report.Quiet{},
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.plane == nil {
		r.plane = control.New()
	}
	if r.consumer == nil {
		r.consumer = ReportTo(r.reporter)
	}
	return r
}

// Plane returns the control plane used by Run.
func (r *Runner) Plane() *control.Plane {
	return r.plane
}

// Run starts the session and blocks until it stops, ctx is cancelled or
// the consumer goes away. A stop request ends the session without error.
func (r *Runner) Run(ctx context.Context, session core.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = r.now()
	}
	log := r.logger.WithSession(session.ID).WithTask(session.Task)

	g, gctx := errgroup.WithContext(ctx)
	prodCtx, cancelProd := context.WithCancel(gctx)
	defer cancelProd()

	changes := make(chan core.PhaseChange)
	consumerDone := make(chan struct{})
	rel := &relay{ctx: prodCtx, ch: changes, done: consumerDone}

	observers := core.Observers{rel}
	if r.bus != nil {
		observers = append(observers, events.NewObserver(r.bus, session.ID))
	}
	var recorder *journal.Recorder
	if r.journal != nil {
		recorder = journal.NewRecorder(ctx, r.journal, session.ID, log)
		observers = append(observers, recorder)
	}
	observers = append(observers, logging.NewPhaseObserver(log))
	observers = append(observers, r.extra...)

	opts := make([]sequencer.Option, 0, len(r.seqOpts)+1)
	opts = append(opts, r.seqOpts...)
	opts = append(opts, sequencer.WithObserver(observers))
	seq, err := sequencer.New(session.Work, session.Break, opts...)
	if err != nil {
		return err
	}

	if r.journal != nil {
		if err := r.journal.BeginSession(ctx, session); err != nil {
			return fmt.Errorf("starting journal session: %w", err)
		}
	}
	r.publish(events.NewSessionStartedEvent(session.ID, session.Task, session.Work, session.Break))
	r.reporter.SessionStarted(session)
	log.Info("session started", "work", session.Work.String(), "break", session.Break.String())

	g.Go(func() error {
		defer close(changes)
		return r.produce(prodCtx, seq, rel)
	})
	g.Go(func() error {
		defer cancelProd()
		defer close(consumerDone)
		return r.consumer(gctx, changes)
	})
	err = g.Wait()

	if r.journal != nil {
		if endErr := r.journal.EndSession(context.WithoutCancel(ctx), session.ID, r.now()); endErr != nil {
			log.Warn("closing journal session failed", "error", endErr)
			err = errors.Join(err, endErr)
		}
		if recErr := recorder.Err(); recErr != nil && err == nil {
			err = fmt.Errorf("journal incomplete: %w", recErr)
		}
	}

	completed := seq.Completed()
	r.publish(events.NewSessionEndedEvent(session.ID, completed, err))
	r.reporter.SessionEnded(completed, err)
	if err != nil {
		log.Error("session ended", "completed", completed, "error", err)
	} else {
		log.Info("session ended", "completed", completed)
	}
	return err
}

// produce owns seq. Every blocking call gets a context interrupted by the
// next control request so pause and stop apply immediately.
func (r *Runner) produce(ctx context.Context, seq *sequencer.Sequencer, rel *relay) error {
	for {
		if err := rel.failure(); err != nil {
			return err
		}

		switch {
		case r.plane.IsStopped():
			seq.Stop()
			return rel.failure()
		case r.plane.IsPaused() && !seq.Started():
			if err := r.plane.WaitIfPaused(ctx); err != nil && !r.plane.IsStopped() {
				return err
			}
			continue
		case r.plane.IsPaused():
			if err := r.pause(ctx, seq); err != nil {
				return err
			}
			continue
		}

		waitCtx, cancel := r.plane.Interruptible(ctx)
		if r.plane.IsStopped() || r.plane.IsPaused() {
			cancel()
			continue
		}

		var (
			ok  = true
			err error
		)
		if !seq.Started() {
			err = seq.Start(waitCtx)
		} else {
			_, ok, err = seq.Next(waitCtx)
		}
		cancel()

		if relErr := rel.failure(); relErr != nil {
			return relErr
		}
		if err != nil && !controlInterrupted(ctx, err) {
			return err
		}
		if !ok && err == nil {
			return nil
		}
	}
}

// pause holds seq in Pause until resume, stop or MaxPauseTime. Reaching the
// limit resumes the timer on its own.
func (r *Runner) pause(ctx context.Context, seq *sequencer.Sequencer) error {
	pauseCtx, cancel := r.plane.UntilResumed(ctx)
	err := seq.Pause(pauseCtx)
	cancel()

	if err != nil {
		if controlInterrupted(ctx, err) {
			return nil
		}
		return err
	}
	if r.plane.Resume() {
		r.logger.Info("pause limit reached, resuming", "limit", core.MaxPauseTime.String())
	}
	return nil
}

func (r *Runner) publish(e events.Event) {
	if r.bus != nil {
		r.bus.PublishPriority(e)
	}
}

// controlInterrupted reports whether err is a wait cut short by a control
// request rather than by ctx.
func controlInterrupted(ctx context.Context, err error) bool {
	return ctx.Err() == nil && core.HasCode(err, core.CodeWaitInterrupted)
}

// relay forwards phase changes from the sequencer's observer callback to
// the consumer. It runs on the producer goroutine only.
type relay struct {
	ctx  context.Context
	ch   chan<- core.PhaseChange
	done <-chan struct{}
	err  error
}

func (r *relay) OnPhaseChange(change core.PhaseChange) {
	if r.err != nil {
		return
	}
	select {
	case r.ch <- change:
	case <-r.done:
		r.err = errConsumerGone()
	case <-r.ctx.Done():
		if r.failure() == nil {
			r.err = core.ErrWaitInterrupted(change.Phase, r.ctx.Err())
		}
	}
}

// failure returns the first send failure, or CONSUMER_GONE once the
// consumer has returned.
func (r *relay) failure() error {
	if r.err != nil {
		return r.err
	}
	select {
	case <-r.done:
		r.err = errConsumerGone()
	default:
	}
	return r.err
}

func errConsumerGone() error {
	return core.ErrConsumerGone(errors.New("consumer stopped receiving"))
}
