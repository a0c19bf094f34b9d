package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLogAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l := New(path)

	l.Log(RecordingStarted, "sess-1", "", map[string]string{"device": "default"})
	l.Log(RecordingStopped, "sess-1", "", nil)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer func() { _ = f.Close() }()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		if event.SessionID != "sess-1" {
			t.Errorf("line %d session = %q, want sess-1", lines+1, event.SessionID)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("got %d lines, want 2", lines)
	}
}

func TestRecentTail(t *testing.T) {
	l := New("")

	for i := 0; i < 150; i++ {
		l.Log(SynthesisStarted, "s", "", nil)
	}

	all := l.Recent(0)
	if len(all) != 100 {
		t.Errorf("tail holds %d events, want capped 100", len(all))
	}

	five := l.Recent(5)
	if len(five) != 5 {
		t.Errorf("Recent(5) = %d events", len(five))
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Log(SynthesisFailed, "s", "boom", nil)
	if got := l.Recent(10); got != nil {
		t.Errorf("nil logger Recent = %v, want nil", got)
	}
}

func TestRecentOrder(t *testing.T) {
	l := New("")
	l.Log(RecordingStarted, "a", "", nil)
	l.Log(RecordingStopped, "b", "", nil)

	events := l.Recent(2)
	if len(events) != 2 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].Type != RecordingStarted || events[1].Type != RecordingStopped {
		t.Errorf("events out of order: %s, %s", events[0].Type, events[1].Type)
	}
}
