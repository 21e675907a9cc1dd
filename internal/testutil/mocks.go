package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
)

// MockJournal implements core.Journal in memory for testing.
type MockJournal struct {
	mu       sync.Mutex
	sessions map[string]core.Session
	changes  map[string][]core.PhaseChange
	calls    []MockCall

	beginErr  error
	recordErr error
	endErr    error
}

// MockCall records a call to the mock.
type MockCall struct {
	Method    string
	Args      interface{}
	Timestamp time.Time
}

var _ core.Journal = (*MockJournal)(nil)

// NewMockJournal creates an empty journal.
func NewMockJournal() *MockJournal {
	return &MockJournal{
		sessions: make(map[string]core.Session),
		changes:  make(map[string][]core.PhaseChange),
		calls:    make([]MockCall, 0),
	}
}

// BeginSession records session.
func (m *MockJournal) BeginSession(_ context.Context, session core.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recordCall("BeginSession", session)
	if m.beginErr != nil {
		return m.beginErr
	}
	if _, ok := m.sessions[session.ID]; ok {
		return core.ErrState(core.CodeAlreadyStarted, "session already recorded")
	}
	m.sessions[session.ID] = session
	return nil
}

// Record appends change to the session.
func (m *MockJournal) Record(_ context.Context, sessionID string, change core.PhaseChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recordCall("Record", change)
	if m.recordErr != nil {
		return m.recordErr
	}
	if _, ok := m.sessions[sessionID]; !ok {
		return core.ErrNotFound("session", sessionID)
	}
	m.changes[sessionID] = append(m.changes[sessionID], change)
	return nil
}

// EndSession stamps the end time of the session.
func (m *MockJournal) EndSession(_ context.Context, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recordCall("EndSession", at)
	if m.endErr != nil {
		return m.endErr
	}
	s, ok := m.sessions[sessionID]
	if !ok {
		return core.ErrNotFound("session", sessionID)
	}
	s.EndedAt = &at
	m.sessions[sessionID] = s
	return nil
}

// WithBeginError makes BeginSession fail.
func (m *MockJournal) WithBeginError(err error) *MockJournal {
	m.beginErr = err
	return m
}

// WithRecordError makes Record fail.
func (m *MockJournal) WithRecordError(err error) *MockJournal {
	m.recordErr = err
	return m
}

// WithEndError makes EndSession fail.
func (m *MockJournal) WithEndError(err error) *MockJournal {
	m.endErr = err
	return m
}

// Session returns the recorded session.
func (m *MockJournal) Session(id string) (core.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Changes returns a copy of the changes recorded for id.
func (m *MockJournal) Changes(id string) []core.PhaseChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.PhaseChange(nil), m.changes[id]...)
}

// Calls returns all recorded calls.
func (m *MockJournal) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns the number of calls to method.
func (m *MockJournal) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

func (m *MockJournal) recordCall(method string, args interface{}) {
	m.calls = append(m.calls, MockCall{
		Method:    method,
		Args:      args,
		Timestamp: time.Now(),
	})
}

// RecordingObserver collects every phase change it sees.
type RecordingObserver struct {
	mu      sync.Mutex
	changes []core.PhaseChange
}

// OnPhaseChange implements core.Observer.
func (o *RecordingObserver) OnPhaseChange(change core.PhaseChange) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changes = append(o.changes, change)
}

// Changes returns a copy of the observed changes.
func (o *RecordingObserver) Changes() []core.PhaseChange {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]core.PhaseChange(nil), o.changes...)
}

// Phases returns the phase of every observed change.
func (o *RecordingObserver) Phases() []core.Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]core.Phase, len(o.changes))
	for i, c := range o.changes {
		out[i] = c.Phase
	}
	return out
}
