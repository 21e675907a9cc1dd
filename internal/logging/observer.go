package logging

import "github.com/hugo-lorenzo-mato/pomo/internal/core"

// PhaseObserver logs every phase change at info level.
type PhaseObserver struct {
	logger *Logger
}

// NewPhaseObserver creates an observer writing to logger.
func NewPhaseObserver(logger *Logger) *PhaseObserver {
	return &PhaseObserver{logger: logger}
}

// OnPhaseChange implements core.Observer.
func (o *PhaseObserver) OnPhaseChange(change core.PhaseChange) {
	o.logger.Info("phase changed",
		"from", change.Previous.String(),
		"phase", change.Phase.String(),
		"wait", change.Wait.String(),
		"completed", change.Completed,
	)
}
