package util

import (
	"strings"
	"testing"
	"time"
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{125, "02:05"},
		{4502, "75:02"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.seconds); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestBackoff(t *testing.T) {
	b := NewBackoff(1*time.Second, 8*time.Second)

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		8 * time.Second, // capped
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("Next() call %d = %v, want %v", i, got, w)
		}
	}

	b.Reset()
	if got := b.Current(); got != 1*time.Second {
		t.Errorf("after Reset, Current() = %v, want 1s", got)
	}
}

func TestExtractLastError(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{"empty", "", ""},
		{"single line", "device busy", "device busy"},
		{"multi line", "Input #0\nStream map\ncannot open audio device", "cannot open audio device"},
		{"trailing blank lines", "real error\n\n\n", "real error"},
	}
	for _, tt := range tests {
		if got := ExtractLastError(tt.stderr); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtractLastErrorTruncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := ExtractLastError(long)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("long line not truncated: len=%d", len(got))
	}
}
