package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/audio"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/cloning"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/config"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/eventlog"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

type fakeBackend struct {
	embedErr error
	synthErr error
}

func (f *fakeBackend) ExtractEmbedding(ctx context.Context, wav []byte) (*cloning.Embedding, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return &cloning.Embedding{Shape: []int{256}}, nil
}

func (f *fakeBackend) Synthesize(ctx context.Context, req cloning.SynthesisRequest) ([]byte, error) {
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	return []byte("RIFF"), nil
}

type fakePlayer struct {
	playing bool
}

func (f *fakePlayer) Toggle(wav []byte) (bool, error) {
	f.playing = !f.playing
	return f.playing, nil
}

func (f *fakePlayer) Playing() bool { return f.playing }
func (f *fakePlayer) Stop()         { f.playing = false }

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	cfg := config.Snapshot{
		SampleRate:       16000,
		Channels:         1,
		MaxRecordSeconds: 120,
		SynthesisSpeed:   1.0,
		DownloadPrefix:   "voiceclone",
	}
	// A nonexistent binary path keeps capture attempts from touching a real
	// microphone during tests.
	return New(cfg, "/nonexistent/ffmpeg", &fakeBackend{}, &fakePlayer{}, nil, eventlog.New(""))
}

func TestNewMachineStartsIdle(t *testing.T) {
	m := newTestMachine(t)
	if m.State() != types.StateIdle {
		t.Fatalf("initial state = %s, want idle", m.State())
	}
}

func TestInvalidTransitionsFromIdle(t *testing.T) {
	m := newTestMachine(t)

	if err := m.StopRecording(); !errors.Is(err, types.ErrValidation) {
		t.Errorf("StopRecording from idle: got %v, want validation error", err)
	}
	if err := m.Clear(); !errors.Is(err, types.ErrValidation) {
		t.Errorf("Clear from idle: got %v, want validation error", err)
	}
	if err := m.UseRecording(); !errors.Is(err, types.ErrValidation) {
		t.Errorf("UseRecording from idle: got %v, want validation error", err)
	}
	if err := m.Synthesize(); !errors.Is(err, types.ErrValidation) {
		t.Errorf("Synthesize from idle: got %v, want validation error", err)
	}
	if _, err := m.TogglePlayback(); !errors.Is(err, types.ErrValidation) {
		t.Errorf("TogglePlayback from idle: got %v, want validation error", err)
	}

	// Rejections never change state
	if m.State() != types.StateIdle {
		t.Errorf("state after rejections = %s, want idle", m.State())
	}
}

func TestSetTextTruncates(t *testing.T) {
	m := newTestMachine(t)

	long := strings.Repeat("a", 600)
	n := m.SetText(long)
	if n != types.MaxTextLength {
		t.Errorf("SetText returned %d, want %d", n, types.MaxTextLength)
	}
	if got := len([]rune(m.Text())); got != types.MaxTextLength {
		t.Errorf("stored text length = %d, want %d", got, types.MaxTextLength)
	}
}

func TestSetTextTruncatesRunes(t *testing.T) {
	m := newTestMachine(t)

	// Multibyte characters must count as single characters.
	long := strings.Repeat("ё", 510)
	n := m.SetText(long)
	if n != types.MaxTextLength {
		t.Errorf("SetText returned %d, want %d", n, types.MaxTextLength)
	}
	stored := m.Text()
	if got := len([]rune(stored)); got != types.MaxTextLength {
		t.Errorf("stored rune count = %d, want %d", got, types.MaxTextLength)
	}
	for _, r := range stored {
		if r != 'ё' {
			t.Fatalf("truncation split a rune: found %q", r)
		}
	}
}

func TestSetTextShortInputUnchanged(t *testing.T) {
	m := newTestMachine(t)
	if n := m.SetText("hello"); n != 5 {
		t.Errorf("SetText returned %d, want 5", n)
	}
	if m.Text() != "hello" {
		t.Errorf("stored text = %q, want %q", m.Text(), "hello")
	}
}

func TestStatusSnapshot(t *testing.T) {
	m := newTestMachine(t)
	m.SetText("hello")

	status := m.Status()
	if status.State != types.StateIdle {
		t.Errorf("state = %s, want idle", status.State)
	}
	if status.Text != "hello" || status.TextChars != 5 {
		t.Errorf("text = %q (%d chars), want hello (5)", status.Text, status.TextChars)
	}
	if status.Elapsed != "00:00" {
		t.Errorf("elapsed = %q, want 00:00", status.Elapsed)
	}
	if status.HasEmbedding || status.HasOutput {
		t.Error("fresh machine should have no embedding or output")
	}
	if !status.Controls.Record {
		t.Error("record control should be enabled in idle")
	}
}

func TestControlsTable(t *testing.T) {
	tests := []struct {
		state types.SessionState
		want  types.Controls
	}{
		{types.StateIdle, types.Controls{Record: true}},
		{types.StateRecording, types.Controls{Stop: true}},
		{types.StateProcessing, types.Controls{}},
		{types.StateRecorded, types.Controls{Clear: true}},
		{types.StateEmbeddingReady, types.Controls{Clear: true, Use: true, Synthesize: true}},
		{types.StateSynthesizing, types.Controls{}},
		{types.StateOutputReady, types.Controls{
			Clear: true, Use: true, Synthesize: true, Play: true, Download: true,
		}},
	}

	for _, tt := range tests {
		if got := ControlsFor(tt.state); got != tt.want {
			t.Errorf("ControlsFor(%s) = %+v, want %+v", tt.state, got, tt.want)
		}
	}
}

func TestNoticeExpires(t *testing.T) {
	m := newTestMachine(t)

	m.mu.Lock()
	m.setNoticeLocked("Recording...")
	m.mu.Unlock()

	if got := m.Status().Notice; got != "Recording..." {
		t.Fatalf("fresh notice = %q, want visible", got)
	}

	// Age the notice past its TTL.
	m.mu.Lock()
	m.noticeAt = time.Now().Add(-types.NoticeTTL - time.Second)
	m.mu.Unlock()

	if got := m.Status().Notice; got != "" {
		t.Errorf("stale notice = %q, want dismissed", got)
	}
}

func TestEmbeddingFailureLandsInRecorded(t *testing.T) {
	m := newTestMachine(t)

	pcm := &audio.Buffer{
		SampleRate: 16000,
		Channels:   1,
		Samples:    [][]float32{{0, 0.5, -0.5, 0.25}},
	}
	wav := audio.EncodeWAV(pcm)

	m.mu.Lock()
	m.state = types.StateProcessing
	m.mu.Unlock()

	m.finishProcessing(pcm, wav, errors.New("backend unreachable"))

	status := m.Status()
	if status.State != types.StateRecorded {
		t.Fatalf("state = %s, want recorded", status.State)
	}
	if status.HasEmbedding {
		t.Error("embedding must stay unset when extraction fails")
	}
	if status.Controls.Synthesize {
		t.Error("synthesize control must stay disabled without an embedding")
	}
	if len(status.Waveform) != types.WaveformWidth {
		t.Errorf("waveform columns = %d, want %d; the decoded audio should still render",
			len(status.Waveform), types.WaveformWidth)
	}
	if status.Error == "" {
		t.Error("failure must surface in the status error field")
	}
	if err := m.Synthesize(); !errors.Is(err, types.ErrValidation) {
		t.Errorf("Synthesize without embedding: got %v, want validation error", err)
	}
}

func TestSynthesisFailureRevertsToEmbeddingReady(t *testing.T) {
	m := newTestMachine(t)

	m.mu.Lock()
	m.state = types.StateEmbeddingReady
	m.embedding = &cloning.Embedding{Shape: []int{256}}
	m.mu.Unlock()
	m.SetText("hello")

	m.mu.Lock()
	m.state = types.StateSynthesizing
	m.mu.Unlock()

	m.finishSynthesis("sess-1", nil, errors.New("text too long"))

	status := m.Status()
	if status.State != types.StateEmbeddingReady {
		t.Fatalf("state = %s, want embedding_ready", status.State)
	}
	if !status.HasEmbedding {
		t.Error("embedding must be retained across a failed synthesis")
	}
	if status.HasOutput {
		t.Error("failed synthesis must not leave output behind")
	}
	if status.Error == "" {
		t.Error("failure must surface in the status error field")
	}

	// The retained embedding and text make an immediate retry valid.
	if err := m.Synthesize(); err != nil {
		t.Errorf("retry after failed synthesis: %v", err)
	}
}

func TestMicrophoneReleasedAfterFailedStart(t *testing.T) {
	m := newTestMachine(t)

	if err := m.StartRecording(); err == nil {
		t.Fatal("StartRecording should fail with a nonexistent capture binary")
	}
	if m.MicrophoneActive() {
		t.Error("microphone must not stay claimed after a failed start")
	}
	if m.State() != types.StateIdle {
		t.Errorf("state = %s, want idle after failed start", m.State())
	}
}

func TestStatusCallbackFires(t *testing.T) {
	m := newTestMachine(t)

	fired := 0
	m.SetStatusCallback(func() { fired++ })

	// A failed start still notifies so the UI shows the error.
	_ = m.StartRecording()
	if fired == 0 {
		t.Error("status callback did not fire after StartRecording attempt")
	}
}
