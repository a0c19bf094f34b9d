package audio

import (
	"reflect"
	"testing"
)

func TestBuildFFmpegCaptureArgs(t *testing.T) {
	args := buildFFmpegCaptureArgs("alsa", "default", 16000, 1)

	want := []string{
		"-f", "alsa",
		"-i", "default",
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "libvorbis",
		"-f", "ogg",
		"pipe:1",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildCaptureCommandUsesConfiguredDevice(t *testing.T) {
	cmd, args, err := BuildCaptureCommand("/opt/ffmpeg", CaptureParams{
		Device:     "hw:1,0",
		SampleRate: 16000,
		Channels:   1,
	})
	if err != nil {
		t.Fatalf("BuildCaptureCommand: %v", err)
	}
	if cmd != "/opt/ffmpeg" {
		t.Errorf("command = %q, want /opt/ffmpeg", cmd)
	}

	found := false
	for i, a := range args {
		if a == "-i" && i+1 < len(args) && args[i+1] == "hw:1,0" {
			found = true
		}
	}
	if !found {
		t.Errorf("args %v do not carry the configured device", args)
	}
}

func TestBuildCaptureCommandDefaultBinary(t *testing.T) {
	cmd, _, err := BuildCaptureCommand("", CaptureParams{
		Device:     "default",
		SampleRate: 16000,
		Channels:   1,
	})
	if err != nil {
		t.Fatalf("BuildCaptureCommand: %v", err)
	}
	if cmd != "ffmpeg" {
		t.Errorf("command = %q, want ffmpeg", cmd)
	}
}
