//go:build windows

package cmd

import (
	"os"
	"syscall"
)

// Windows has no user signals; sessions can only be stopped.
var controlSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func signalActionFor(sig os.Signal) signalAction {
	switch sig {
	case os.Interrupt, syscall.SIGTERM:
		return actionStop
	default:
		return actionIgnore
	}
}
