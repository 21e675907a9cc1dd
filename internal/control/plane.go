package control

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
	"github.com/hugo-lorenzo-mato/pomo/internal/events"
)

// Plane carries external pause, resume and stop requests to the goroutine
// driving a sequencer. It is safe for concurrent use; signal handlers call
// it from their own goroutines.
type Plane struct {
	mu        sync.RWMutex
	paused    atomic.Bool
	stopped   atomic.Bool
	requestCh chan struct{}
	resumeCh  chan struct{}
	stopCh    chan struct{}

	bus       *events.Bus
	sessionID string
}

// Option configures a Plane.
type Option func(*Plane)

// WithBus publishes every accepted request on bus.
func WithBus(bus *events.Bus, sessionID string) Option {
	return func(p *Plane) {
		p.bus = bus
		p.sessionID = sessionID
	}
}

// New creates a new Plane.
func New(opts ...Option) *Plane {
	p := &Plane{
		requestCh: make(chan struct{}),
		resumeCh:  make(chan struct{}),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pause requests a pause. It reports whether the request changed state.
func (p *Plane) Pause(reason string) bool {
	p.mu.Lock()
	if p.stopped.Load() || p.paused.Load() {
		p.mu.Unlock()
		return false
	}
	p.paused.Store(true)
	p.signalRequestLocked()
	p.mu.Unlock()

	p.publish(events.NewPauseRequestEvent(p.sessionID, reason))
	return true
}

// Resume ends a pause. It reports whether the request changed state.
func (p *Plane) Resume() bool {
	p.mu.Lock()
	if !p.paused.Load() {
		p.mu.Unlock()
		return false
	}
	p.paused.Store(false)
	close(p.resumeCh)
	p.resumeCh = make(chan struct{})
	p.mu.Unlock()

	p.publish(events.NewResumeRequestEvent(p.sessionID))
	return true
}

// Toggle pauses a running timer or resumes a paused one.
func (p *Plane) Toggle(reason string) {
	if !p.Pause(reason) {
		p.Resume()
	}
}

// Stop requests the timer to stop. Further requests are ignored.
func (p *Plane) Stop(reason string) {
	p.mu.Lock()
	if p.stopped.Load() {
		p.mu.Unlock()
		return
	}
	p.stopped.Store(true)
	close(p.stopCh)
	p.signalRequestLocked()
	p.mu.Unlock()

	p.publish(events.NewStopRequestEvent(p.sessionID, reason))
}

func (p *Plane) signalRequestLocked() {
	close(p.requestCh)
	p.requestCh = make(chan struct{})
}

func (p *Plane) publish(e events.Event) {
	if p.bus != nil {
		p.bus.PublishPriority(e)
	}
}

// IsPaused returns true while a pause is requested.
func (p *Plane) IsPaused() bool {
	return p.paused.Load()
}

// IsStopped returns true once a stop was requested.
func (p *Plane) IsStopped() bool {
	return p.stopped.Load()
}

// Requests returns a channel closed by the next pause or stop request.
// Fetch it before checking IsPaused/IsStopped so no request is missed.
func (p *Plane) Requests() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.requestCh
}

// Resumed returns a channel closed by the next resume.
func (p *Plane) Resumed() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resumeCh
}

// Stopped returns a channel closed when stop is requested.
func (p *Plane) Stopped() <-chan struct{} {
	return p.stopCh
}

// Interruptible derives a context cancelled by the next pause or stop request.
func (p *Plane) Interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return p.derive(ctx, p.Requests())
}

// UntilResumed derives a context cancelled by the next resume or stop.
func (p *Plane) UntilResumed(ctx context.Context) (context.Context, context.CancelFunc) {
	resumed := p.Resumed()
	waitCtx, cancel := p.derive(ctx, resumed)
	if !p.paused.Load() {
		cancel()
	}
	return waitCtx, cancel
}

func (p *Plane) derive(ctx context.Context, trigger <-chan struct{}) (context.Context, context.CancelFunc) {
	waitCtx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-trigger:
			cancel()
		case <-p.stopCh:
			cancel()
		case <-waitCtx.Done():
		}
	}()
	return waitCtx, cancel
}

// WaitIfPaused blocks until resumed. It returns immediately when not paused
// and fails when stopped or when ctx is done.
func (p *Plane) WaitIfPaused(ctx context.Context) error {
	resumed := p.Resumed()
	if !p.paused.Load() {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopCh:
		return p.CheckStopped()
	case <-resumed:
		return nil
	}
}

// CheckStopped returns an error if a stop was requested.
func (p *Plane) CheckStopped() error {
	if p.stopped.Load() {
		return core.ErrState(core.CodeStopped, "timer stopped by user")
	}
	return nil
}

// Status is a snapshot of the pending control requests.
type Status struct {
	Paused  bool
	Stopped bool
}

// Status returns the current control status.
func (p *Plane) Status() Status {
	return Status{
		Paused:  p.paused.Load(),
		Stopped: p.stopped.Load(),
	}
}
