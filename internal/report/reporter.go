package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/hugo-lorenzo-mato/pomo/internal/core"
)

// Reporter renders a session for the user. PhaseChanged is called once per
// phase change, in production order, as soon as the phase begins.
type Reporter interface {
	SessionStarted(session core.Session)
	PhaseChanged(change core.PhaseChange)
	SessionEnded(completed int, err error)
}

// New returns the reporter for mode. JSON output is produced from the event
// bus by EventWriter, so JSON and quiet modes get a reporter that prints
// nothing.
func New(mode Mode, w io.Writer) Reporter {
	switch mode {
	case ModePretty:
		return NewConsole(w, true)
	case ModePlain:
		return NewConsole(w, false)
	default:
		return Quiet{}
	}
}

// Quiet discards everything.
type Quiet struct{}

func (Quiet) SessionStarted(core.Session) {}
func (Quiet) PhaseChanged(core.PhaseChange) {}
func (Quiet) SessionEnded(int, error) {}

// Console prints one line per event, optionally styled with lipgloss.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
	last   core.PhaseChange
	seen   bool
}

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer, styled bool) *Console {
	return &Console{w: w, styled: styled}
}

// SessionStarted prints the task banner.
func (c *Console) SessionStarted(session core.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.println(c.render(headerStyle, "Start working on "+session.Task))
}

// PhaseChanged prints the counter on entry to Work and the transition line.
// When the phase that just ended ran to completion it is summarized first.
func (c *Console) PhaseChanged(change core.PhaseChange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen && c.last.Phase == change.Previous {
		switch {
		case change.Previous == core.PhaseWork && change.Phase.IsBreak():
			c.println(c.render(mutedStyle, fmt.Sprintf("worked for %s, now break!", c.last.Wait)))
		case change.Previous.IsBreak() && change.Phase == core.PhaseWork:
			c.println(c.render(mutedStyle, fmt.Sprintf("rested for %s, now continue!", c.last.Wait)))
		}
	}

	if change.EntersWork() {
		c.println(c.render(counterStyle, fmt.Sprintf("pomodoros -> %d", change.Completed)))
	}
	c.println(fmt.Sprintf("Changed from %s to %s, waiting %s",
		c.phase(change.Previous), c.phase(change.Phase), change.Wait))

	c.last = change
	c.seen = true
}

// SessionEnded prints a summary line.
func (c *Console) SessionEnded(completed int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.println(c.render(errorStyle, fmt.Sprintf("Session failed after %d pomodoros: %v", completed, err)))
		return
	}
	c.println(c.render(headerStyle, fmt.Sprintf("Done: %d pomodoros", completed)))
}

func (c *Console) phase(p core.Phase) string {
	return c.render(PhaseStyle(p), p.Title())
}

func (c *Console) render(style lipgloss.Style, text string) string {
	if !c.styled {
		return text
	}
	return style.Render(text)
}

func (c *Console) println(line string) {
	fmt.Fprintln(c.w, line)
}
