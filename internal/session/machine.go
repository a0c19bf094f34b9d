// Package session owns the user-facing cloning workflow: one state machine
// coordinating microphone capture, transcoding, embedding acquisition, text
// synthesis and playback. All collaborator state (current embedding, current
// output) lives here, scoped to the active session; there are no ambient
// globals.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/audio"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/capture"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/cloning"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/config"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/eventlog"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/export"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/transcode"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/util"
)

// Backend is the inference service surface the machine depends on.
// *cloning.Client satisfies it; tests substitute a fake.
type Backend interface {
	ExtractEmbedding(ctx context.Context, wav []byte) (*cloning.Embedding, error)
	Synthesize(ctx context.Context, req cloning.SynthesisRequest) ([]byte, error)
}

// Player is the playback surface the machine depends on.
type Player interface {
	Toggle(wav []byte) (bool, error)
	Playing() bool
	Stop()
}

// Machine is the session state machine. All transitions are serialized under
// one mutex; long-running work (decode, network calls) runs in goroutines
// that re-enter through completion methods, so the machine itself never
// blocks a caller.
type Machine struct {
	mu sync.Mutex

	cfg        config.Snapshot
	ffmpegPath string

	decoder *transcode.Decoder
	backend Backend
	player  Player
	archive *export.Archive
	events  *eventlog.Logger

	state     types.SessionState
	capture   *capture.Session
	sessionID string
	recorded  int // frozen elapsed seconds after stop

	waveform  []types.WavePoint
	levels    audio.Levels
	recWAV    []byte
	embedding *cloning.Embedding

	text         string
	textUnlocked bool

	output   []byte
	outputAt time.Time

	notice   string
	noticeAt time.Time
	lastErr  string

	stopTimer *time.Timer

	statusCallback func()
}

// New creates a Machine in the Idle state.
func New(cfg config.Snapshot, ffmpegPath string, backend Backend, player Player, archive *export.Archive, events *eventlog.Logger) *Machine {
	return &Machine{
		cfg:        cfg,
		ffmpegPath: ffmpegPath,
		decoder:    transcode.NewDecoder(ffmpegPath, cfg.SampleRate, cfg.Channels),
		backend:    backend,
		player:     player,
		archive:    archive,
		events:     events,
		state:      types.StateIdle,
	}
}

// SetStatusCallback registers a callback fired after every state change.
func (m *Machine) SetStatusCallback(cb func()) {
	m.mu.Lock()
	m.statusCallback = cb
	m.mu.Unlock()
}

// State returns the current state.
func (m *Machine) State() types.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// StartRecording acquires the microphone and enters Recording. It is a
// validation error while a recording or processing run is already active;
// a device refusal leaves the machine Idle with the error surfaced.
func (m *Machine) StartRecording() error {
	m.mu.Lock()
	if m.state != types.StateIdle {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot start recording in state %s", types.ErrValidation, state)
	}
	params := audio.CaptureParams{
		Device:     m.cfg.AudioInput,
		SampleRate: m.cfg.SampleRate,
		Channels:   m.cfg.Channels,
	}
	ffmpegPath := m.ffmpegPath
	m.mu.Unlock()

	// The capture process start blocks briefly; keep the lock released.
	sess, err := capture.Start(ffmpegPath, params)

	m.mu.Lock()
	if err != nil {
		m.setErrorLocked(err)
		m.mu.Unlock()
		m.events.Log(eventlog.RecordingFailed, "", err.Error(), nil)
		m.notifyStatus()
		return err
	}
	if m.state != types.StateIdle {
		// Lost a race with another intent; release the device.
		m.mu.Unlock()
		sess.Abort()
		return fmt.Errorf("%w: recording already in progress", types.ErrValidation)
	}

	m.capture = sess
	m.sessionID = sess.ID()
	m.recorded = 0
	m.state = types.StateRecording
	m.setNoticeLocked("Recording...")
	if m.cfg.MaxRecordSeconds > 0 {
		limit := time.Duration(m.cfg.MaxRecordSeconds) * time.Second
		m.stopTimer = time.AfterFunc(limit, func() {
			slog.Info("max recording duration reached", "limit", limit)
			if err := m.StopRecording(); err != nil && !errors.Is(err, types.ErrValidation) {
				slog.Error("auto-stop failed", "error", err)
			}
		})
	}
	m.mu.Unlock()

	m.events.Log(eventlog.RecordingStarted, sess.ID(), "", params)
	m.notifyStatus()
	return nil
}

// StopRecording finalizes capture and enters Processing. The decode, render
// and embedding upload sequence runs in the background and lands in either
// EmbeddingReady or Recorded.
func (m *Machine) StopRecording() error {
	m.mu.Lock()
	if m.state != types.StateRecording {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot stop recording in state %s", types.ErrValidation, state)
	}
	sess := m.capture
	m.capture = nil
	m.recorded = sess.ElapsedSeconds()
	elapsed := m.recorded
	m.state = types.StateProcessing
	m.setNoticeLocked("Processing...")
	if m.stopTimer != nil {
		m.stopTimer.Stop()
		m.stopTimer = nil
	}
	m.mu.Unlock()

	m.events.Log(eventlog.RecordingStopped, sess.ID(), "", map[string]any{"elapsed_seconds": elapsed})
	m.notifyStatus()

	go m.process(sess)
	return nil
}

// process runs the fixed decode -> render -> meter -> upload pipeline for
// one finished recording. The microphone is released before anything else,
// on every path.
func (m *Machine) process(sess *capture.Session) {
	blob, err := sess.Stop()
	if err != nil {
		m.finishProcessing(nil, nil, err)
		return
	}

	pcm, err := m.decoder.Decode(context.Background(), blob)
	if err != nil {
		m.events.Log(eventlog.DecodeFailed, sess.ID(), err.Error(), nil)
		m.finishProcessing(nil, nil, err)
		return
	}

	wav := audio.EncodeWAV(pcm)

	embedding, err := m.backend.ExtractEmbedding(context.Background(), wav)
	if err != nil {
		m.events.Log(eventlog.EmbeddingFailed, sess.ID(), err.Error(), nil)
		m.finishProcessing(pcm, wav, err)
		return
	}

	m.events.Log(eventlog.EmbeddingReady, sess.ID(), "", map[string]any{
		"shape":    embedding.Shape,
		"duration": pcm.Duration(),
	})
	m.finishProcessingSuccess(pcm, wav, embedding)
}

// finishProcessing handles the failure exits from Processing. When decode
// succeeded the waveform is still rendered and shown; the embedding stays
// unset either way, which keeps synthesis disabled.
func (m *Machine) finishProcessing(pcm *audio.Buffer, wav []byte, err error) {
	m.mu.Lock()
	if pcm != nil {
		m.waveform = audio.RenderWaveform(pcm, types.WaveformWidth)
		m.levels = audio.MeasureLevels(pcm)
		m.recWAV = wav
	}
	m.embedding = nil
	m.state = types.StateRecorded
	m.setErrorLocked(err)
	m.mu.Unlock()
	m.notifyStatus()
}

// finishProcessingSuccess lands the pipeline in EmbeddingReady.
func (m *Machine) finishProcessingSuccess(pcm *audio.Buffer, wav []byte, embedding *cloning.Embedding) {
	m.mu.Lock()
	m.waveform = audio.RenderWaveform(pcm, types.WaveformWidth)
	m.levels = audio.MeasureLevels(pcm)
	m.recWAV = wav
	m.embedding = embedding
	m.state = types.StateEmbeddingReady
	m.setNoticeLocked("Voice sample ready")
	m.mu.Unlock()
	m.notifyStatus()
}

// Clear discards the recording, embedding, waveform and output, returning
// to Idle. Valid from Recorded, EmbeddingReady and OutputReady.
func (m *Machine) Clear() error {
	m.mu.Lock()
	switch m.state {
	case types.StateRecorded, types.StateEmbeddingReady, types.StateOutputReady:
	default:
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot clear in state %s", types.ErrValidation, state)
	}

	sessionID := m.sessionID
	m.sessionID = ""
	m.recorded = 0
	m.waveform = nil
	m.levels = audio.Levels{}
	m.recWAV = nil
	m.embedding = nil
	m.text = ""
	m.textUnlocked = false
	m.output = nil
	m.outputAt = time.Time{}
	m.state = types.StateIdle
	m.notice = ""
	m.lastErr = ""
	m.mu.Unlock()

	if m.player != nil {
		m.player.Stop()
	}
	m.events.Log(eventlog.SessionCleared, sessionID, "", nil)
	m.notifyStatus()
	return nil
}

// UseRecording unlocks the text and synthesis controls. The embedding is
// already present, so this is a UI-unlock transition with no network effect;
// repeating it is harmless.
func (m *Machine) UseRecording() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case types.StateEmbeddingReady, types.StateOutputReady:
		m.textUnlocked = true
		return nil
	default:
		return fmt.Errorf("%w: no embedding available in state %s", types.ErrValidation, m.state)
	}
}

// SetText stores the synthesis text, truncated to types.MaxTextLength
// characters. Over-length input is truncated, never rejected. Returns the
// stored character count.
func (m *Machine) SetText(text string) int {
	runes := []rune(text)
	if len(runes) > types.MaxTextLength {
		runes = runes[:types.MaxTextLength]
	}

	m.mu.Lock()
	m.text = string(runes)
	n := len(runes)
	m.mu.Unlock()
	return n
}

// Text returns the stored synthesis text.
func (m *Machine) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Synthesize issues the text-to-speech call and enters Synthesizing. It is
// rejected with a validation error when no embedding is present, the text is
// empty, or a synthesis call is already in flight; rejection never changes
// state.
func (m *Machine) Synthesize() error {
	m.mu.Lock()
	if m.state == types.StateSynthesizing {
		m.mu.Unlock()
		return fmt.Errorf("%w: synthesis already in progress", types.ErrValidation)
	}
	if m.state != types.StateEmbeddingReady && m.state != types.StateOutputReady {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot synthesize in state %s", types.ErrValidation, state)
	}
	if m.embedding == nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: speaker embedding is required", types.ErrValidation)
	}
	if m.text == "" {
		m.mu.Unlock()
		return fmt.Errorf("%w: text is required", types.ErrValidation)
	}

	req := cloning.SynthesisRequest{
		Text:      m.text,
		Embedding: m.embedding,
		Speed:     m.cfg.SynthesisSpeed,
	}
	sessionID := m.sessionID
	m.state = types.StateSynthesizing
	m.setNoticeLocked("Synthesizing...")
	m.mu.Unlock()
	m.notifyStatus()

	m.events.Log(eventlog.SynthesisStarted, sessionID, "", map[string]any{
		"text_chars": len([]rune(req.Text)),
		"speed":      req.Speed,
	})

	go func() {
		wav, err := m.backend.Synthesize(context.Background(), req)
		m.finishSynthesis(sessionID, wav, err)
	}()
	return nil
}

// finishSynthesis lands a synthesis call. Success replaces the previous
// output wholesale and enters OutputReady; failure reverts to EmbeddingReady
// with the embedding retained so the user can edit the text and retry.
// Failed output never reaches playback or download.
func (m *Machine) finishSynthesis(sessionID string, wav []byte, err error) {
	if err != nil {
		m.events.Log(eventlog.SynthesisFailed, sessionID, err.Error(), nil)
		m.mu.Lock()
		m.state = types.StateEmbeddingReady
		m.setErrorLocked(err)
		m.mu.Unlock()
		m.notifyStatus()
		return
	}

	now := time.Now()
	m.mu.Lock()
	m.output = wav
	m.outputAt = now
	m.state = types.StateOutputReady
	m.setNoticeLocked("Synthesis complete")
	prefix := m.cfg.DownloadPrefix
	m.mu.Unlock()

	m.events.Log(eventlog.SynthesisCompleted, sessionID, "", map[string]any{"bytes": len(wav)})
	if m.archive != nil {
		m.archive.Submit("outputs/"+export.Filename(prefix, now), wav)
	}
	m.notifyStatus()
}

// TogglePlayback flips output playback. Only valid in OutputReady.
func (m *Machine) TogglePlayback() (bool, error) {
	m.mu.Lock()
	if m.state != types.StateOutputReady {
		state := m.state
		m.mu.Unlock()
		return false, fmt.Errorf("%w: no output to play in state %s", types.ErrValidation, state)
	}
	wav := m.output
	m.mu.Unlock()

	if m.player == nil {
		return false, fmt.Errorf("playback is not available")
	}
	playing, err := m.player.Toggle(wav)
	m.notifyStatus()
	return playing, err
}

// Output returns the current synthesized WAV, its creation time, and whether
// the machine is in OutputReady. Download is only offered in OutputReady.
func (m *Machine) Output() (wav []byte, at time.Time, ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.output, m.outputAt, m.state == types.StateOutputReady
}

// RecordingWAV returns the current recording's WAV container, if any.
func (m *Machine) RecordingWAV() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recWAV
}

// MicrophoneActive reports whether a capture process currently owns the
// device. Used by tests to verify deterministic release.
func (m *Machine) MicrophoneActive() bool {
	m.mu.Lock()
	sess := m.capture
	m.mu.Unlock()
	return sess != nil && sess.Active()
}

// Status assembles the full status snapshot.
func (m *Machine) Status() types.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := m.recorded
	if m.state == types.StateRecording && m.capture != nil {
		elapsed = m.capture.ElapsedSeconds()
	}

	notice := m.notice
	if notice != "" && time.Since(m.noticeAt) > types.NoticeTTL {
		notice = ""
	}

	status := types.SessionStatus{
		State:          m.state,
		SessionID:      m.sessionID,
		ElapsedSeconds: elapsed,
		Elapsed:        util.FormatClock(elapsed),
		Waveform:       m.waveform,
		LevelDB:        m.levels.RMS,
		PeakDB:         m.levels.Peak,
		HasEmbedding:   m.embedding != nil,
		Text:           m.text,
		TextChars:      len([]rune(m.text)),
		TextUnlocked:   m.textUnlocked,
		HasOutput:      len(m.output) > 0,
		OutputBytes:    len(m.output),
		Notice:         notice,
		Error:          m.lastErr,
		Controls:       ControlsFor(m.state),
	}
	if m.embedding != nil {
		status.EmbeddingShape = m.embedding.Shape
	}
	if m.player != nil {
		status.Playing = m.player.Playing()
	}
	if m.archive != nil {
		status.Archive = m.archive.Status()
	}
	return status
}

// setNoticeLocked sets a transient status message and clears any prior
// error. Must be called with lock held.
func (m *Machine) setNoticeLocked(msg string) {
	m.notice = msg
	m.noticeAt = time.Now()
	m.lastErr = ""
}

// setErrorLocked surfaces a failure as both the transient banner and the
// sticky error field. Must be called with lock held.
func (m *Machine) setErrorLocked(err error) {
	if err == nil {
		return
	}
	m.notice = err.Error()
	m.noticeAt = time.Now()
	m.lastErr = err.Error()
}

func (m *Machine) notifyStatus() {
	m.mu.Lock()
	cb := m.statusCallback
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
}
