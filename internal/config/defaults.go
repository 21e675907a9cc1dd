package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/pomo/internal/fsutil"
)

// ProjectConfigFile is looked up in the working directory.
const ProjectConfigFile = ".pomo.yaml"

const configHeader = `# pomo configuration
#
# Durations use Go syntax (25m, 1h30m). Every key can be overridden with a
# POMO_ environment variable, for example POMO_TIMER_WORK=50m.

`

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timer: TimerConfig{
			Work:           "20m",
			Break:          "5m",
			LongBreakAfter: 4,
			LongBreakRatio: 4,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "auto",
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    DefaultJournalPath(),
		},
		Output: OutputConfig{
			Mode: OutputAuto,
		},
	}
}

// UserConfigPath returns ~/.config/pomo/config.yaml, honoring XDG_CONFIG_HOME.
func UserConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, "pomo", "config.yaml"), nil
}

// DefaultJournalPath returns the journal location under the user's data dir.
func DefaultJournalPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "pomo", "journal.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pomo-journal.db"
	}
	return filepath.Join(home, ".local", "share", "pomo", "journal.db")
}

// RenderYAML renders cfg as a commented YAML document.
func RenderYAML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders cfg and writes it atomically to path. An existing file is
// only replaced when force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}

	data, err := RenderYAML(cfg)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0o600)
}
