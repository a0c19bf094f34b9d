// Package eventlog provides unified event logging for the studio. It
// captures the session lifecycle (recording, processing, synthesis, archive)
// in a single JSON lines file and keeps a small in-memory tail for the UI.
package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// EventType names what happened.
type EventType string

// Recording event types.
const (
	RecordingStarted EventType = "recording_started"
	RecordingStopped EventType = "recording_stopped"
	RecordingFailed  EventType = "recording_failed"
	DecodeFailed     EventType = "decode_failed"
)

// Embedding and synthesis event types.
const (
	EmbeddingReady     EventType = "embedding_ready"
	EmbeddingFailed    EventType = "embedding_failed"
	SynthesisStarted   EventType = "synthesis_started"
	SynthesisCompleted EventType = "synthesis_completed"
	SynthesisFailed    EventType = "synthesis_failed"
	SessionCleared     EventType = "session_cleared"
)

// Archive event types.
const (
	ArchiveUploaded EventType = "archive_uploaded"
	ArchiveFailed   EventType = "archive_failed"
)

// Event represents a single log entry.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Message   string    `json:"msg,omitempty"`
	Details   any       `json:"details,omitempty"`
}

// recentCapacity is how many events the in-memory tail retains.
const recentCapacity = 100

// Logger appends events to a JSON lines file. A nil *Logger is valid and
// discards all events, so callers never need to guard their Log calls.
// It is safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	path   string
	recent []Event
}

// New creates a Logger writing to path. An empty path disables file output
// but still keeps the in-memory tail.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Log records an event.
func (l *Logger) Log(t EventType, sessionID, msg string, details any) {
	if l == nil {
		return
	}

	event := Event{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: sessionID,
		Message:   msg,
		Details:   details,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.recent = append(l.recent, event)
	if len(l.recent) > recentCapacity {
		l.recent = l.recent[len(l.recent)-recentCapacity:]
	}

	if l.path == "" {
		return
	}
	if err := l.appendLocked(event); err != nil {
		// Logging must never break the session; drop the event.
		fmt.Fprintf(os.Stderr, "eventlog: %v\n", err)
	}
}

// appendLocked writes one event as a JSON line. Must be called with lock held.
func (l *Logger) appendLocked(event Event) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer func() { _ = f.Close() }()

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	line = append(line, '\n')

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Recent returns up to n most recent events, newest last.
func (l *Logger) Recent(n int) []Event {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > len(l.recent) {
		n = len(l.recent)
	}
	out := make([]Event, n)
	copy(out, l.recent[len(l.recent)-n:])
	return out
}
