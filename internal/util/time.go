package util

import (
	"fmt"
	"time"
)

// humanTimeFormat is the display format for build timestamps.
const humanTimeFormat = "2 Jan 2006, 15:04"

// FormatClock formats whole seconds as mm:ss for the elapsed-time display.
// Durations of an hour or more keep counting minutes (e.g. "75:02").
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatHumanTime converts an RFC3339 timestamp to a readable local time.
// Returns the input unchanged when it cannot be parsed.
func FormatHumanTime(rfc3339 string) string {
	if rfc3339 == "" || rfc3339 == "unknown" {
		return "unknown"
	}
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return rfc3339
	}
	return t.Local().Format(humanTimeFormat)
}
