package events

import "time"

// Event type constants for session events.
const (
	TypeSessionStarted = "session_started"
	TypeSessionEnded   = "session_ended"
)

// SessionStartedEvent is emitted before the first work interval begins.
type SessionStartedEvent struct {
	BaseEvent
	Task  string        `json:"task"`
	Work  time.Duration `json:"work"`
	Break time.Duration `json:"break"`
}

// NewSessionStartedEvent creates a new session started event.
func NewSessionStartedEvent(sessionID, task string, work, brk time.Duration) SessionStartedEvent {
	return SessionStartedEvent{
		BaseEvent: NewBaseEvent(TypeSessionStarted, sessionID),
		Task:      task,
		Work:      work,
		Break:     brk,
	}
}

// SessionEndedEvent is emitted when the runner returns.
type SessionEndedEvent struct {
	BaseEvent
	Completed int    `json:"completed"`
	Error     string `json:"error,omitempty"`
}

// NewSessionEndedEvent creates a new session ended event.
func NewSessionEndedEvent(sessionID string, completed int, err error) SessionEndedEvent {
	e := SessionEndedEvent{
		BaseEvent: NewBaseEvent(TypeSessionEnded, sessionID),
		Completed: completed,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
