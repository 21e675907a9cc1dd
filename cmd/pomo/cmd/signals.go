package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/hugo-lorenzo-mato/pomo/internal/control"
)

type signalAction int

const (
	actionIgnore signalAction = iota
	actionStop
	actionToggle
	actionResume
)

// watchSignals routes process signals to plane until the returned func is
// called. A second stop signal cancels the session outright.
func watchSignals(plane *control.Plane, cancel context.CancelFunc, w io.Writer) func() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, controlSignals...)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-sigCh:
				handleSignal(signalActionFor(sig), sig.String(), plane, cancel, w)
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

func handleSignal(action signalAction, name string, plane *control.Plane, cancel context.CancelFunc, w io.Writer) {
	switch action {
	case actionStop:
		if plane.IsStopped() {
			fmt.Fprintln(w, "\nForcing exit")
			cancel()
			return
		}
		fmt.Fprintln(w, "\nStopping (interrupt again to force)")
		plane.Stop(name)
	case actionToggle:
		plane.Toggle(name)
	case actionResume:
		plane.Resume()
	}
}
