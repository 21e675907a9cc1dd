package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/pomo/internal/fsutil"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
	searchDirs []string
	used       string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return NewLoaderWithViper(viper.New())
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "POMO",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithSearchDirs replaces the directories searched for .pomo.yaml.
func (l *Loader) WithSearchDirs(dirs ...string) *Loader {
	l.searchDirs = dirs
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (POMO_*)
// 3. Project config (.pomo.yaml in current directory)
// 4. User config (~/.config/pomo/config.yaml)
// 5. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	path, err := l.resolveFile()
	if err != nil {
		return nil, err
	}
	// A shared viper keeps the last file read, so an empty document is
	// loaded when no file is found.
	var data []byte
	if path != "" {
		if data, err = fsutil.ReadFileScoped(path); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	l.v.SetConfigType("yaml")
	if err := l.v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	l.used = path

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Journal.Path = ExpandHome(cfg.Journal.Path)

	return &cfg, nil
}

// resolveFile returns the first config file found, or "" when none exists.
// An explicit file must exist.
func (l *Loader) resolveFile() (string, error) {
	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return l.configFile, nil
	}

	candidates := make([]string, 0, len(l.searchDirs)+1)
	dirs := l.searchDirs
	if dirs == nil {
		dirs = []string{"."}
	}
	for _, dir := range dirs {
		candidates = append(candidates, filepath.Join(dir, ProjectConfigFile))
	}
	if l.searchDirs == nil {
		if user, err := UserConfigPath(); err == nil {
			candidates = append(candidates, user)
		}
	}

	for _, c := range candidates {
		_, err := os.Stat(c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", c, err)
		}
	}
	return "", nil
}

// setDefaults configures default values.
func (l *Loader) setDefaults() {
	d := Default()

	l.v.SetDefault("timer.work", d.Timer.Work)
	l.v.SetDefault("timer.break", d.Timer.Break)
	l.v.SetDefault("timer.long_break_after", d.Timer.LongBreakAfter)
	l.v.SetDefault("timer.long_break_ratio", d.Timer.LongBreakRatio)

	l.v.SetDefault("log.level", d.Log.Level)
	l.v.SetDefault("log.format", d.Log.Format)
	l.v.SetDefault("log.file", d.Log.File)

	l.v.SetDefault("journal.enabled", d.Journal.Enabled)
	l.v.SetDefault("journal.path", d.Journal.Path)

	l.v.SetDefault("output.mode", d.Output.Mode)
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.used
}

// Get returns a configuration value by key.
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// Set sets a configuration value.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}
