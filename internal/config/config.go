package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Timer   TimerConfig   `mapstructure:"timer" yaml:"timer"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// TimerConfig configures the phase durations and the long break cadence.
type TimerConfig struct {
	Work           string `mapstructure:"work" yaml:"work"`
	Break          string `mapstructure:"break" yaml:"break"`
	LongBreakAfter int    `mapstructure:"long_break_after" yaml:"long_break_after"`
	LongBreakRatio int    `mapstructure:"long_break_ratio" yaml:"long_break_ratio"`
}

// WorkDuration parses the work interval.
func (c TimerConfig) WorkDuration() (time.Duration, error) {
	return parseDuration("timer.work", c.Work)
}

// BreakDuration parses the short break interval.
func (c TimerConfig) BreakDuration() (time.Duration, error) {
	return parseDuration("timer.break", c.Break)
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file,omitempty"`
}

// JournalConfig configures the session journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ResolvedPath returns Path with a leading ~ expanded.
func (c JournalConfig) ResolvedPath() string {
	return ExpandHome(c.Path)
}

// OutputConfig configures the console reporter.
type OutputConfig struct {
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// Output modes.
const (
	OutputAuto   = "auto"
	OutputPretty = "pretty"
	OutputPlain  = "plain"
	OutputJSON   = "json"
	OutputQuiet  = "quiet"
)

func parseDuration(field, value string) (time.Duration, error) {
	d, err := ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// ParseDuration parses a Go duration such as "25m". A bare integer is a
// number of seconds and must fit in a time.Duration.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if !isInteger(value) {
		return time.ParseDuration(value)
	}
	n, err := strconv.ParseInt(value, 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange), n > math.MaxInt64/int64(time.Second):
		return 0, fmt.Errorf("%s seconds is too long", value)
	case err != nil:
		return 0, err
	case n < 0:
		return 0, fmt.Errorf("%s seconds is negative", value)
	}
	return time.Duration(n) * time.Second, nil
}

func isInteger(value string) bool {
	digits := strings.TrimPrefix(strings.TrimPrefix(value, "-"), "+")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
