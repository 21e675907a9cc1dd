package events

// Requests made through the control plane. They are published when the
// request is accepted, before the runner acts on it.
const (
	TypePauseRequest  = "pause_request"
	TypeResumeRequest = "resume_request"
	TypeStopRequest   = "stop_request"
)

// ControlTypes lists every control request type, for Subscribe.
func ControlTypes() []string {
	return []string{TypePauseRequest, TypeResumeRequest, TypeStopRequest}
}

// ControlRequestEvent records a pause, resume or stop request. Reason is
// the free-form origin ("signal", "max pause") and is empty for resumes.
type ControlRequestEvent struct {
	BaseEvent
	Reason string `json:"reason,omitempty"`
}

func newControlRequest(eventType, sessionID, reason string) ControlRequestEvent {
	return ControlRequestEvent{BaseEvent: NewBaseEvent(eventType, sessionID), Reason: reason}
}

func NewPauseRequestEvent(sessionID, reason string) ControlRequestEvent {
	return newControlRequest(TypePauseRequest, sessionID, reason)
}

func NewResumeRequestEvent(sessionID string) ControlRequestEvent {
	return newControlRequest(TypeResumeRequest, sessionID, "")
}

func NewStopRequestEvent(sessionID, reason string) ControlRequestEvent {
	return newControlRequest(TypeStopRequest, sessionID, reason)
}
