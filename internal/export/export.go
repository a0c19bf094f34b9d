// Package export handles getting synthesized audio out of the studio:
// time-stamped download filenames and an optional S3 archive of every
// synthesis result.
package export

import (
	"fmt"
	"time"
)

// Filename returns the download filename for a synthesis result:
// prefix_<unixMillis>.wav.
func Filename(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = "voiceclone"
	}
	return fmt.Sprintf("%s_%d.wav", prefix, t.UnixMilli())
}
