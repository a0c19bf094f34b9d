package util

import (
	"sync"
	"time"
)

// Backoff computes exponentially growing retry delays, doubling from an
// initial delay up to a cap. Safe for concurrent use.
type Backoff struct {
	mu       sync.Mutex
	initial  time.Duration
	maxDelay time.Duration
	attempt  int
}

// NewBackoff returns a Backoff that doubles from initial up to maxDelay.
func NewBackoff(initial, maxDelay time.Duration) *Backoff {
	return &Backoff{initial: initial, maxDelay: maxDelay}
}

// Next returns the delay for the current attempt and advances.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.delayLocked()
	if d < b.maxDelay {
		b.attempt++
	}
	return d
}

// Current returns the delay for the current attempt without advancing.
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delayLocked()
}

// Reset restarts the sequence at the initial delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempt = 0
}

func (b *Backoff) delayLocked() time.Duration {
	d := b.initial
	for i := 0; i < b.attempt && d < b.maxDelay; i++ {
		d *= 2
	}
	if d > b.maxDelay {
		d = b.maxDelay
	}
	return d
}
