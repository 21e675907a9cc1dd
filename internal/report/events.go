package report

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/hugo-lorenzo-mato/pomo/internal/events"
)

// EventWriter writes bus events as newline-delimited JSON.
type EventWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewEventWriter creates a writer encoding to w.
func NewEventWriter(w io.Writer) *EventWriter {
	return &EventWriter{enc: json.NewEncoder(w)}
}

// Write encodes a single event.
func (e *EventWriter) Write(ev events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(ev)
}

// Drain writes every event received on ch until it is closed. Encoding
// errors are returned after ch is drained so publishers never block on it.
func (e *EventWriter) Drain(ch <-chan events.Event) error {
	var first error
	for ev := range ch {
		if err := e.Write(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
