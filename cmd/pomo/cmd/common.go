package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/pomo/internal/config"
	"github.com/hugo-lorenzo-mato/pomo/internal/core"
	"github.com/hugo-lorenzo-mato/pomo/internal/logging"
	"github.com/hugo-lorenzo-mato/pomo/internal/report"
)

// loadConfig loads and validates configuration using the global viper
// instance, which carries the CLI flag bindings.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, core.ErrValidation(core.CodeInvalidConfig, "invalid configuration").WithCause(err)
	}
	return cfg, nil
}

// newLogger builds the logger from cfg. Logs go to stderr unless log.file is
// set. The returned func closes the log file.
func newLogger(cfg *config.Config) (*logging.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}

	if cfg.Log.File != "" {
		f, err := logging.OpenFile(config.ExpandHome(cfg.Log.File))
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	return logger, closeFn, nil
}

// outputMode resolves the console mode from --quiet, --no-color and
// output.mode.
func outputMode(cfg *config.Config, out io.Writer) (report.Mode, error) {
	if quiet {
		return report.ModeQuiet, nil
	}

	detector := report.NewDetector().NoColor(noColor)
	if f, ok := out.(*os.File); ok {
		detector.WithOutput(f)
	} else {
		detector.WithOutput(nil)
	}

	mode, forced, err := report.ParseMode(cfg.Output.Mode)
	if err != nil {
		return report.ModePlain, err
	}
	if forced {
		detector.ForceMode(mode)
	}
	return detector.Detect(), nil
}

// durationFlag accepts Go durations or a bare number of seconds.
type durationFlag struct {
	d *time.Duration
}

func newDurationFlag(p *time.Duration, def time.Duration) *durationFlag {
	*p = def
	return &durationFlag{d: p}
}

func (f *durationFlag) String() string {
	if f.d == nil {
		return "0s"
	}
	return f.d.String()
}

func (f *durationFlag) Set(s string) error {
	d, err := config.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("expected seconds or a duration like 25m: %w", err)
	}
	*f.d = d
	return nil
}

func (f *durationFlag) Type() string {
	return "duration"
}
