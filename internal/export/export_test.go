package export

import (
	"regexp"
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	got := Filename("voiceclone", at)
	if got != "voiceclone_1700000000123.wav" {
		t.Errorf("Filename = %q, want voiceclone_1700000000123.wav", got)
	}
}

func TestFilenameDefaultPrefix(t *testing.T) {
	got := Filename("", time.Now())
	if matched, _ := regexp.MatchString(`^voiceclone_\d+\.wav$`, got); !matched {
		t.Errorf("Filename = %q, want voiceclone_<millis>.wav", got)
	}
}

func TestFilenameMonotonic(t *testing.T) {
	a := Filename("x", time.UnixMilli(1000))
	b := Filename("x", time.UnixMilli(2000))
	if a == b {
		t.Error("distinct timestamps produced identical filenames")
	}
}
