//go:build windows

package util

import (
	"errors"
	"os"
)

// ShutdownSignals lists the signals that trigger a graceful studio shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// GracefulSignal asks a child process to finish cleanly. Windows has no
// SIGINT delivery to other processes, so callers fall back to killing.
func GracefulSignal(p *os.Process) error {
	return errors.ErrUnsupported
}
