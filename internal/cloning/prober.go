package cloning

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/util"
)

// Prober periodically checks backend health. While the backend is down it
// retries with exponential backoff; once reachable it settles into a steady
// interval. It is safe for concurrent use.
type Prober struct {
	client *Client

	mu     sync.RWMutex
	status types.BackendStatus

	backoff        *util.Backoff
	statusCallback func()
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// NewProber starts a health probe loop against the given client.
// statusCallback, if non-nil, is invoked whenever reachability changes.
func NewProber(client *Client, statusCallback func()) *Prober {
	p := &Prober{
		client:         client,
		backoff:        util.NewBackoff(types.HealthProbeInitialDelay, types.HealthProbeMaxDelay),
		statusCallback: statusCallback,
		stopCh:         make(chan struct{}),
	}
	go p.run()
	return p
}

// Status returns the last observed backend status.
func (p *Prober) Status() types.BackendStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Stop terminates the probe loop.
func (p *Prober) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

func (p *Prober) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in health prober", "panic", r)
		}
	}()

	p.probe()

	for {
		var delay time.Duration
		if p.Status().Reachable {
			delay = types.HealthProbeInterval
		} else {
			delay = p.backoff.Next()
		}

		select {
		case <-time.After(delay):
			p.probe()
		case <-p.stopCh:
			return
		}
	}
}

func (p *Prober) probe() {
	status, err := p.client.Health(context.Background())

	p.mu.Lock()
	changed := status.Reachable != p.status.Reachable
	p.status = status
	p.mu.Unlock()

	if status.Reachable {
		p.backoff.Reset()
	}

	if changed {
		if err != nil {
			slog.Warn("inference backend unreachable", "error", err)
		} else {
			slog.Info("inference backend reachable",
				"models_loaded", status.ModelsLoaded, "sample_rate", status.SampleRate)
		}
		if p.statusCallback != nil {
			p.statusCallback()
		}
	}
}
