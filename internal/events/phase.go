package events

import (
	"time"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
)

// TypePhaseChanged is published every time the sequencer advances.
const TypePhaseChanged = "phase_changed"

// PhaseChangedEvent carries one phase-change tuple.
type PhaseChangedEvent struct {
	BaseEvent
	Previous  core.Phase    `json:"previous"`
	Phase     core.Phase    `json:"phase"`
	Wait      time.Duration `json:"wait"`
	Completed int           `json:"completed"`
}

// NewPhaseChangedEvent creates a new phase changed event.
func NewPhaseChangedEvent(sessionID string, change core.PhaseChange) PhaseChangedEvent {
	base := NewBaseEvent(TypePhaseChanged, sessionID)
	if !change.At.IsZero() {
		base.Time = change.At
	}
	return PhaseChangedEvent{
		BaseEvent: base,
		Previous:  change.Previous,
		Phase:     change.Phase,
		Wait:      change.Wait,
		Completed: change.Completed,
	}
}

// Change converts the event back to the domain value.
func (e PhaseChangedEvent) Change() core.PhaseChange {
	return core.PhaseChange{
		Previous:  e.Previous,
		Phase:     e.Phase,
		Wait:      e.Wait,
		Completed: e.Completed,
		At:        e.Time,
	}
}

// Observer publishes sequencer phase changes on a bus as priority events,
// so ordered subscribers see every change exactly once.
type Observer struct {
	bus       *Bus
	sessionID string
}

// NewObserver creates an observer publishing to bus.
func NewObserver(bus *Bus, sessionID string) *Observer {
	return &Observer{bus: bus, sessionID: sessionID}
}

// OnPhaseChange implements core.Observer.
func (o *Observer) OnPhaseChange(change core.PhaseChange) {
	o.bus.PublishPriority(NewPhaseChangedEvent(o.sessionID, change))
}
