package journal

import (
	"context"
	"sync"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
	"github.com/hugo-lorenzo-mato/pomo/internal/logging"
)

// Recorder adapts a core.Journal to core.Observer for one session.
// Observers cannot fail, so write errors are logged and the first one is
// kept for Err.
type Recorder struct {
	ctx       context.Context
	journal   core.Journal
	sessionID string
	logger    *logging.Logger

	mu  sync.Mutex
	err error
}

// NewRecorder creates a recorder writing to journal under sessionID.
func NewRecorder(ctx context.Context, journal core.Journal, sessionID string, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{
		ctx:       ctx,
		journal:   journal,
		sessionID: sessionID,
		logger:    logger,
	}
}

// OnPhaseChange implements core.Observer.
func (r *Recorder) OnPhaseChange(change core.PhaseChange) {
	// The recording context outlives the sequencer's so the final Stop lands.
	err := r.journal.Record(context.WithoutCancel(r.ctx), r.sessionID, change)
	if err == nil {
		return
	}

	r.logger.Warn("journal write failed", "session_id", r.sessionID, "phase", change.Phase.String(), "error", err)
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
