package capture

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/audio"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

// fakeCaptureTool writes a shell script standing in for the capture binary,
// so these tests never touch a real microphone.
func fakeCaptureTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake capture tool requires a shell")
	}
	path := filepath.Join(t.TempDir(), "fake-capture")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testParams() audio.CaptureParams {
	return audio.CaptureParams{Device: "default", SampleRate: 16000, Channels: 1}
}

func TestStartMissingBinary(t *testing.T) {
	_, err := Start("/nonexistent/capture-tool", testParams())
	if !errors.Is(err, types.ErrPermissionDenied) {
		t.Fatalf("Start with missing binary: got %v, want permission error", err)
	}
}

func TestStartImmediateExitReportsError(t *testing.T) {
	tool := fakeCaptureTool(t, `echo 'default: Device or resource busy' >&2
exit 1`)

	_, err := Start(tool, testParams())
	if !errors.Is(err, types.ErrPermissionDenied) {
		t.Fatalf("Start with dying process: got %v, want permission error", err)
	}
}

func TestStopReleasesProcessAndReturnsData(t *testing.T) {
	tool := fakeCaptureTool(t, `printf 'OggS fake fragment data'
exec sleep 30`)

	s, err := Start(tool, testParams())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Active() {
		t.Fatal("session should be active after start")
	}

	blob, err := s.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if string(blob) != "OggS fake fragment data" {
		t.Errorf("blob = %q, want the emitted fragments", blob)
	}
	if s.Active() {
		t.Error("capture process still active after Stop")
	}
}

func TestStopWithoutDataReleasesProcess(t *testing.T) {
	tool := fakeCaptureTool(t, `exec sleep 30`)

	s, err := Start(tool, testParams())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := s.Stop(); !errors.Is(err, types.ErrDecode) {
		t.Errorf("Stop with empty capture: got %v, want decode error", err)
	}
	if s.Active() {
		t.Error("capture process still active after failed Stop")
	}
}

func TestAbortReleasesProcess(t *testing.T) {
	tool := fakeCaptureTool(t, `exec sleep 30`)

	s, err := Start(tool, testParams())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	s.Abort()
	if s.Active() {
		t.Error("capture process still active after Abort")
	}
}
