//go:build !windows

package cmd

import (
	"os"
	"syscall"
)

var controlSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2}

func signalActionFor(sig os.Signal) signalAction {
	switch sig {
	case syscall.SIGINT, syscall.SIGTERM:
		return actionStop
	case syscall.SIGUSR1:
		return actionToggle
	case syscall.SIGUSR2:
		return actionResume
	default:
		return actionIgnore
	}
}
