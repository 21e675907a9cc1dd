package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/pomo/internal/control"
	"github.com/hugo-lorenzo-mato/pomo/internal/core"
	"github.com/hugo-lorenzo-mato/pomo/internal/events"
	"github.com/hugo-lorenzo-mato/pomo/internal/journal"
	"github.com/hugo-lorenzo-mato/pomo/internal/report"
	"github.com/hugo-lorenzo-mato/pomo/internal/runner"
	"github.com/hugo-lorenzo-mato/pomo/internal/sequencer"
)

const defaultTask = "pomodoro"

var startCmd = &cobra.Command{
	Use:   "start [task-name]",
	Short: "Start a Pomodoro session",
	Long: `Start a Pomodoro session for a task. The timer cycles work intervals and
breaks until it is stopped.

Lengths accept Go durations (25m, 1h) or bare numbers of seconds.`,
	Example: `  pomo start "write report"
  pomo start -l 50m -b 10m deep work
  pomo start -l 1500 -b 300 review
  pomo start --output json refactor > session.ndjson`,
	RunE: runStart,
}

var (
	startLength         time.Duration
	startBreak          time.Duration
	startLongBreakAfter int
	startLongBreakRatio int
	startNoJournal      bool
	startOutput         string

	// onPlaneReady, when set, receives the control plane of each session.
	onPlaneReady func(*control.Plane)
)

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().VarP(newDurationFlag(&startLength, 20*time.Minute), "length", "l", "work interval length (seconds or a duration)")
	startCmd.Flags().VarP(newDurationFlag(&startBreak, 5*time.Minute), "break", "b", "short break length (seconds or a duration)")
	startCmd.Flags().IntVar(&startLongBreakAfter, "long-break-after", 4, "work intervals between long breaks")
	startCmd.Flags().IntVar(&startLongBreakRatio, "long-break-ratio", 4, "long break length as a multiple of the short break")
	startCmd.Flags().BoolVar(&startNoJournal, "no-journal", false, "do not record the session")
	startCmd.Flags().StringVar(&startOutput, "output", "auto", "console output (auto, pretty, plain, json, quiet)")

	_ = viper.BindPFlag("timer.work", startCmd.Flags().Lookup("length"))
	_ = viper.BindPFlag("timer.break", startCmd.Flags().Lookup("break"))
	_ = viper.BindPFlag("timer.long_break_after", startCmd.Flags().Lookup("long-break-after"))
	_ = viper.BindPFlag("timer.long_break_ratio", startCmd.Flags().Lookup("long-break-ratio"))
	_ = viper.BindPFlag("output.mode", startCmd.Flags().Lookup("output"))
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if startNoJournal {
		cfg.Journal.Enabled = false
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	work, err := cfg.Timer.WorkDuration()
	if err != nil {
		return err
	}
	brk, err := cfg.Timer.BreakDuration()
	if err != nil {
		return err
	}

	task := defaultTask
	if len(args) > 0 {
		task = strings.Join(args, " ")
	}
	task = logger.Sanitize(task)

	out := cmd.OutOrStdout()
	mode, err := outputMode(cfg, out)
	if err != nil {
		return err
	}

	sessionID := journal.NewSessionID()
	bus := events.New(0)
	defer bus.Close()
	plane := control.New(control.WithBus(bus, sessionID))

	opts := []runner.Option{
		runner.WithReporter(report.New(mode, out)),
		runner.WithBus(bus),
		runner.WithPlane(plane),
		runner.WithLogger(logger),
		runner.WithSequencerOptions(sequencer.WithLongBreak(cfg.Timer.LongBreakAfter, cfg.Timer.LongBreakRatio)),
	}

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer store.Close()
		opts = append(opts, runner.WithJournal(store))
		logger.Debug("journal opened", "path", store.Path())
	}

	var wg sync.WaitGroup
	if mode == report.ModeJSON {
		sub := bus.SubscribePriority()
		writer := report.NewEventWriter(out)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := writer.Drain(sub); err != nil {
				logger.Warn("writing events failed", "error", err)
			}
		}()
	}
	controlSub := bus.Subscribe(events.ControlTypes()...)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range controlSub {
			req, _ := e.(events.ControlRequestEvent)
			logger.Info("control request", "type", e.EventType(), "reason", req.Reason, "session_id", e.SessionID())
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopSignals := watchSignals(plane, cancel, cmd.ErrOrStderr())
	defer stopSignals()
	if onPlaneReady != nil {
		onPlaneReady(plane)
	}

	err = runner.New(opts...).Run(ctx, core.Session{
		ID:    sessionID,
		Task:  task,
		Work:  work,
		Break: brk,
	})

	bus.Close()
	wg.Wait()

	if errors.Is(err, context.Canceled) && plane.IsStopped() {
		return nil
	}
	return err
}
