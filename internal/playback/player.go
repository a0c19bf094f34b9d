// Package playback plays synthesized audio locally through an ffplay
// subprocess.
package playback

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
)

// Player manages local playback of a WAV blob. Toggle starts playback when
// stopped and stops it when playing. Playing state is re-queried from the
// subprocess, so playback that ends on its own (or is killed externally) is
// observed on the next Toggle or Playing call.
type Player struct {
	mu sync.Mutex

	ffplayPath string
	cmd        *exec.Cmd
	cancel     context.CancelFunc
	done       chan struct{}

	stateCallback func()
}

// New creates a Player. ffplayPath may be empty to use PATH lookup.
// stateCallback, if non-nil, is invoked when playback ends.
func New(ffplayPath string, stateCallback func()) *Player {
	if ffplayPath == "" {
		ffplayPath = "ffplay"
	}
	return &Player{
		ffplayPath:    ffplayPath,
		stateCallback: stateCallback,
	}
}

// SetStateCallback registers a callback fired when playback ends on its own.
func (p *Player) SetStateCallback(cb func()) {
	p.mu.Lock()
	p.stateCallback = cb
	p.mu.Unlock()
}

// Playing reports whether a playback process is currently running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playingLocked()
}

func (p *Player) playingLocked() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Toggle flips between playing and stopped. Returns true if playback is
// running after the call.
func (p *Player) Toggle(wav []byte) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playingLocked() {
		p.stopLocked()
		return false, nil
	}

	if len(wav) == 0 {
		return false, fmt.Errorf("no audio to play")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, p.ffplayPath,
		"-hide_banner",
		"-loglevel", "error",
		"-nodisp",
		"-autoexit",
		"-i", "pipe:0",
	)
	cmd.Stdin = bytes.NewReader(wav)

	if err := cmd.Start(); err != nil {
		cancel()
		return false, fmt.Errorf("start playback: %w", err)
	}

	done := make(chan struct{})
	p.cmd = cmd
	p.cancel = cancel
	p.done = done

	go func() {
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			slog.Warn("playback process exited with error", "error", err)
		}
		close(done)
		p.mu.Lock()
		cb := p.stateCallback
		p.mu.Unlock()
		if cb != nil {
			cb()
		}
	}()

	return true, nil
}

// Stop terminates playback if running.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		<-p.done
	}
	p.cmd = nil
	p.cancel = nil
	p.done = nil
}
