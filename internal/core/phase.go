package core

import (
	"fmt"
	"time"
)

// Phase represents one discrete named interval of the timer.
type Phase string

const (
	// PhaseWork is a focused work interval. Entering it counts one
	// completed work interval.
	PhaseWork Phase = "work"

	// PhaseShortBreak follows every work interval that is not a multiple
	// of the long-break cadence.
	PhaseShortBreak Phase = "short_break"

	// PhaseLongBreak follows every Nth work interval (N = LongBreakAfter)
	// and lasts LongBreakRatio times the short break.
	PhaseLongBreak Phase = "long_break"

	// PhasePause is the idle phase. A fresh sequencer starts here, and an
	// explicit pause returns here until resumed or MaxPauseTime elapses.
	PhasePause Phase = "pause"

	// PhaseStop is the terminal phase. It is only reached through an
	// explicit stop request; no transition rule produces it.
	PhaseStop Phase = "stop"
)

const (
	// LongBreakAfter is the default number of work intervals between long breaks.
	LongBreakAfter = 4

	// LongBreakRatio is the default multiplier applied to the break duration
	// for a long break.
	LongBreakRatio = 4

	// MaxPauseTime bounds how long a pause blocks before auto-resuming.
	MaxPauseTime = 3600 * time.Second
)

// AllPhases returns all phases in declaration order.
func AllPhases() []Phase {
	return []Phase{PhaseWork, PhaseShortBreak, PhaseLongBreak, PhasePause, PhaseStop}
}

// ValidPhase checks if a phase string is valid.
func ValidPhase(p Phase) bool {
	switch p {
	case PhaseWork, PhaseShortBreak, PhaseLongBreak, PhasePause, PhaseStop:
		return true
	default:
		return false
	}
}

// ParsePhase converts a string to a Phase with validation.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !ValidPhase(p) {
		return "", fmt.Errorf("invalid phase: %s", s)
	}
	return p, nil
}

// IsBreak reports whether the phase is a short or long break.
func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// Title returns the display name of the phase.
func (p Phase) Title() string {
	switch p {
	case PhaseWork:
		return "Work"
	case PhaseShortBreak:
		return "ShortBreak"
	case PhaseLongBreak:
		return "LongBreak"
	case PhasePause:
		return "Pause"
	case PhaseStop:
		return "Stop"
	default:
		return "Unknown"
	}
}

// PhaseChange is emitted each time the sequencer advances.
type PhaseChange struct {
	Previous  Phase         `json:"previous"`
	Phase     Phase         `json:"phase"`
	Wait      time.Duration `json:"wait"`
	Completed int           `json:"completed"`
	At        time.Time     `json:"at"`
}

// EntersWork reports whether the change started a new work interval.
func (c PhaseChange) EntersWork() bool {
	return c.Phase == PhaseWork
}
