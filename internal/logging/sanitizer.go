package logging

import "regexp"

// Sanitizer strips terminal control sequences from log text. Task names come
// straight from the command line and end up in every log line, so escape
// sequences in them must not reach the terminal.
type Sanitizer struct {
	patterns []*regexp.Regexp
	redacted string
}

// NewSanitizer creates a sanitizer with default patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: defaultPatterns(),
		redacted: "",
	}
}

func defaultPatterns() []*regexp.Regexp {
	patterns := []string{
		// CSI sequences (colors, cursor movement, screen clearing)
		`\x1b\[[0-9;?]*[ -/]*[@-~]`,
		// OSC sequences (window title, hyperlinks, clipboard)
		`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`,
		// Any other escape followed by a single character
		`\x1b[@-Z\\-_]`,
		// Remaining C0 controls except tab and newline, plus DEL
		`[\x00-\x08\x0b-\x1f\x7f]`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// Sanitize removes control sequences from a string.
func (s *Sanitizer) Sanitize(input string) string {
	result := input
	for _, pattern := range s.patterns {
		result = pattern.ReplaceAllString(result, s.redacted)
	}
	return result
}

// AddPattern adds a custom pattern.
func (s *Sanitizer) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	s.patterns = append(s.patterns, re)
	return nil
}

// SetRedactedPlaceholder sets the text substituted for removed sequences.
func (s *Sanitizer) SetRedactedPlaceholder(placeholder string) {
	s.redacted = placeholder
}
