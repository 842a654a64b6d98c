//go:build !windows

package cmd

import (
	"os"
	"syscall"
)

// shutdownSignals are the signals that stop the gateway gracefully.
func shutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// isRunning probes the process with signal 0.
func isRunning(proc *os.Process) bool {
	return proc.Signal(syscall.Signal(0)) == nil
}

// requestStop asks a running gateway to shut down.
func requestStop(proc *os.Process) error {
	return proc.Signal(syscall.SIGTERM)
}
