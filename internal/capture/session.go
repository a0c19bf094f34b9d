// Package capture acquires the microphone through an ffmpeg subprocess and
// buffers the compressed fragments it emits. Exactly one capture session may
// own the device at a time; the process is torn down on every exit path.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/audio"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/util"
)

// startupGrace is how long Start waits to catch an immediate capture process
// failure (bad device, denied access) before reporting success.
const startupGrace = 400 * time.Millisecond

// readChunkSize is the stdout read size for compressed fragments.
const readChunkSize = 4096

// Session is one live microphone recording. It owns the capture subprocess
// exclusively and accumulates the compressed fragments it produces.
type Session struct {
	mu sync.Mutex

	id        string
	cmd       *exec.Cmd
	cancel    context.CancelFunc
	stderr    *bytes.Buffer
	fragments [][]byte
	startTime time.Time

	active   bool
	exitErr  error
	readDone chan struct{}
	waitDone chan struct{}
}

// Start acquires the microphone and begins buffering compressed fragments.
// It returns types.ErrPermissionDenied (wrapped) when the device refuses to
// open, which callers treat as recording being unavailable.
func Start(ffmpegPath string, params audio.CaptureParams) (*Session, error) {
	command, args, err := audio.BuildCaptureCommand(ffmpegPath, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrPermissionDenied, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, command, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: start capture: %s", types.ErrPermissionDenied, err)
	}

	s := &Session{
		id:        uuid.NewString(),
		cmd:       cmd,
		cancel:    cancel,
		stderr:    &stderr,
		startTime: time.Now(),
		active:    true,
		readDone:  make(chan struct{}),
		waitDone:  make(chan struct{}),
	}

	go s.readLoop(stdout)
	go s.waitLoop()

	// Catch processes that die immediately (device busy, access denied).
	select {
	case <-s.waitDone:
		s.teardown()
		return nil, classifyStartupError(stderr.String())
	case <-time.After(startupGrace):
	}

	slog.Info("capture started", "session_id", s.id, "device", params.Device,
		"sample_rate", params.SampleRate, "channels", params.Channels)
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// ElapsedSeconds returns whole seconds since capture started.
func (s *Session) ElapsedSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(time.Since(s.startTime).Seconds())
}

// Active reports whether the capture process still owns the microphone.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Stop finalizes the fragment sequence, releases the microphone and returns
// the concatenated compressed blob. It is safe to call on error paths; the
// process is always torn down.
func (s *Session) Stop() ([]byte, error) {
	s.teardown()

	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	for _, f := range s.fragments {
		total += len(f)
	}
	blob := make([]byte, 0, total)
	for _, f := range s.fragments {
		blob = append(blob, f...)
	}

	if len(blob) == 0 {
		msg := util.ExtractLastError(s.stderr.String())
		if msg == "" {
			msg = "no audio captured"
		}
		return nil, fmt.Errorf("%w: %s", types.ErrDecode, msg)
	}

	slog.Info("capture stopped", "session_id", s.id, "bytes", len(blob),
		"fragments", len(s.fragments))
	return blob, nil
}

// Abort releases the microphone without returning data.
func (s *Session) Abort() {
	s.teardown()
	slog.Info("capture aborted", "session_id", s.id)
}

// teardown stops the process and waits for both loops to finish. Idempotent.
func (s *Session) teardown() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		<-s.waitDone
		return
	}
	s.active = false
	cmd := s.cmd
	s.mu.Unlock()

	// Ask ffmpeg to finalize the container first; kill it if that stalls.
	if err := util.GracefulSignal(cmd.Process); err != nil {
		s.cancel()
	}

	select {
	case <-s.waitDone:
	case <-time.After(types.CaptureStopTimeout):
		slog.Warn("capture process did not exit in time, killing", "session_id", s.id)
		s.cancel()
		<-s.waitDone
	}
	s.cancel()
	<-s.readDone
}

// readLoop appends compressed fragments from the capture process stdout.
func (s *Session) readLoop(stdout io.ReadCloser) {
	defer close(s.readDone)

	for {
		chunk := make([]byte, readChunkSize)
		n, err := stdout.Read(chunk)
		if n > 0 {
			s.mu.Lock()
			s.fragments = append(s.fragments, chunk[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// waitLoop reaps the capture process and records its exit error.
func (s *Session) waitLoop() {
	defer close(s.waitDone)

	err := s.cmd.Wait()

	s.mu.Lock()
	s.exitErr = err
	s.active = false
	s.mu.Unlock()
}

// classifyStartupError maps immediate capture failures to the error taxonomy.
func classifyStartupError(stderr string) error {
	msg := util.ExtractLastError(stderr)
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "denied") ||
		strings.Contains(lower, "busy") || strings.Contains(lower, "cannot open") ||
		strings.Contains(lower, "no such") {
		return fmt.Errorf("%w: %s", types.ErrPermissionDenied, msg)
	}
	if msg == "" {
		msg = "capture process exited immediately"
	}
	return fmt.Errorf("%w: %s", types.ErrPermissionDenied, msg)
}
