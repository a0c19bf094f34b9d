package util

import "strings"

// maxErrorLineLength is the maximum length for extracted error messages.
const maxErrorLineLength = 200

// ExtractLastError extracts the last meaningful line from stderr output.
// ffmpeg writes multi-line diagnostics; the final line usually carries the
// actual failure.
func ExtractLastError(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			if len(line) > maxErrorLineLength {
				return line[:maxErrorLineLength] + "..."
			}
			return line
		}
	}
	return ""
}
