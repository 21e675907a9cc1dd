package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

var (
	logLevels   = []string{"debug", "info", "warn", "error"}
	logFormats  = []string{"auto", "text", "json"}
	outputModes = []string{OutputAuto, OutputPretty, OutputPlain, OutputJSON, OutputQuiet}
)

// ValidationError describes one rejected config key.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, fmt.Sprint(e.Value))
}

// ValidationErrors is every problem found in one pass, in key order.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("invalid config: ")
	for i, err := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// HasErrors reports whether any key was rejected.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator checks a Config and keeps going after the first failure so the
// user sees every bad key at once.
type Validator struct {
	errs ValidationErrors
}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks cfg. The returned error is a ValidationErrors.
func (v *Validator) Validate(cfg *Config) error {
	v.errs = v.errs[:0]

	v.timer(&cfg.Timer)

	v.oneOf("log.level", cfg.Log.Level, logLevels)
	v.oneOf("log.format", cfg.Log.Format, logFormats)
	if cfg.Log.File != "" && !parentUsable(ExpandHome(cfg.Log.File)) {
		v.reject("log.file", cfg.Log.File, "parent directory is not usable")
	}

	if cfg.Journal.Enabled && cfg.Journal.Path == "" {
		v.reject("journal.path", cfg.Journal.Path, "required when the journal is enabled")
	}

	v.oneOf("output.mode", cfg.Output.Mode, outputModes)

	if v.errs.HasErrors() {
		return v.errs
	}
	return nil
}

// Errors returns what the last Validate call rejected.
func (v *Validator) Errors() ValidationErrors {
	return v.errs
}

func (v *Validator) reject(field string, value interface{}, msg string) {
	v.errs = append(v.errs, ValidationError{Field: field, Value: value, Message: msg})
}

func (v *Validator) oneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		v.reject(field, value, "must be one of: "+strings.Join(allowed, ", "))
	}
}

func (v *Validator) timer(t *TimerConfig) {
	v.phaseLength("timer.work", t.Work)
	brk := v.phaseLength("timer.break", t.Break)

	if t.LongBreakAfter <= 0 {
		v.reject("timer.long_break_after", t.LongBreakAfter, "must be at least 1 pomodoro")
	}
	switch {
	case t.LongBreakRatio <= 0:
		v.reject("timer.long_break_ratio", t.LongBreakRatio, "must be at least 1")
	case brk > time.Duration(math.MaxInt64/int64(t.LongBreakRatio)):
		v.reject("timer.long_break_ratio", t.LongBreakRatio, "long break overflows")
	}
}

// phaseLength returns the parsed duration, or 0 after recording an error.
func (v *Validator) phaseLength(field, value string) time.Duration {
	d, err := ParseDuration(value)
	switch {
	case err != nil:
		v.reject(field, value, "not seconds or a duration")
		return 0
	case d <= 0:
		v.reject(field, value, "must be positive")
		return 0
	}
	return d
}

// parentUsable reports whether the directory holding path exists or could
// still be created.
func parentUsable(path string) bool {
	_, err := os.Stat(filepath.Dir(path))
	return err == nil || os.IsNotExist(err)
}

// ValidateConfig validates cfg with a fresh Validator.
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
