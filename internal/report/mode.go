// Package report renders session progress on the console.
package report

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Mode represents the console output mode.
type Mode int

const (
	// ModePretty uses lipgloss styling.
	ModePretty Mode = iota

	// ModePlain uses plain text lines.
	ModePlain

	// ModeJSON writes one JSON object per line.
	ModeJSON

	// ModeQuiet suppresses all output.
	ModeQuiet
)

// String returns the string representation of the output mode.
func (m Mode) String() string {
	switch m {
	case ModePretty:
		return "pretty"
	case ModePlain:
		return "plain"
	case ModeJSON:
		return "json"
	case ModeQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseMode parses an output mode. "auto" and "" return ok=false so the
// caller falls back to detection.
func ParseMode(s string) (mode Mode, ok bool, err error) {
	switch s {
	case "", "auto":
		return ModePretty, false, nil
	case "pretty":
		return ModePretty, true, nil
	case "plain":
		return ModePlain, true, nil
	case "json":
		return ModeJSON, true, nil
	case "quiet":
		return ModeQuiet, true, nil
	default:
		return ModePlain, false, fmt.Errorf("unknown output mode %q", s)
	}
}

// Detector determines the appropriate output mode.
type Detector struct {
	forceMode *Mode
	noColor   bool
	out       *os.File
}

// NewDetector creates a detector inspecting stdout.
func NewDetector() *Detector {
	return &Detector{out: os.Stdout}
}

// ForceMode forces a specific output mode.
func (d *Detector) ForceMode(mode Mode) *Detector {
	d.forceMode = &mode
	return d
}

// NoColor disables styled output.
func (d *Detector) NoColor(disable bool) *Detector {
	d.noColor = disable
	return d
}

// WithOutput sets the file whose terminal status is checked.
func (d *Detector) WithOutput(f *os.File) *Detector {
	d.out = f
	return d
}

// Detect determines the output mode.
func (d *Detector) Detect() Mode {
	if d.forceMode != nil {
		if *d.forceMode == ModePretty && !d.ShouldUseColor() {
			return ModePlain
		}
		return *d.forceMode
	}

	if os.Getenv("CI") != "" {
		return ModePlain
	}
	if !d.ShouldUseColor() {
		return ModePlain
	}
	return ModePretty
}

// ShouldUseColor determines if color should be used.
func (d *Detector) ShouldUseColor() bool {
	if d.noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return d.isTTY()
}

func (d *Detector) isTTY() bool {
	if d.out == nil {
		return false
	}
	return term.IsTerminal(int(d.out.Fd()))
}
