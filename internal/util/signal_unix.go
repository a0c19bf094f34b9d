//go:build !windows

package util

import (
	"os"
	"syscall"
)

// ShutdownSignals lists the signals that trigger a graceful studio shutdown.
func ShutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// GracefulSignal asks a child process to finish cleanly. ffmpeg finalizes
// its output container on SIGINT, which a hard kill would truncate.
func GracefulSignal(p *os.Process) error {
	return p.Signal(syscall.SIGINT)
}
