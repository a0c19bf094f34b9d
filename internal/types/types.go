// Package types provides shared type definitions used across the studio.
package types

import "time"

// SessionState represents the current state of the cloning session.
type SessionState string

const (
	// StateIdle indicates no recording exists yet.
	StateIdle SessionState = "idle"
	// StateRecording indicates the microphone is being captured.
	StateRecording SessionState = "recording"
	// StateProcessing indicates decode, waveform render and embedding upload are running.
	StateProcessing SessionState = "processing"
	// StateRecorded indicates a recording exists but no embedding is available.
	StateRecorded SessionState = "recorded"
	// StateEmbeddingReady indicates a speaker embedding is available for synthesis.
	StateEmbeddingReady SessionState = "embedding_ready"
	// StateSynthesizing indicates a synthesis call is in flight.
	StateSynthesizing SessionState = "synthesizing"
	// StateOutputReady indicates synthesized audio is available for playback and export.
	StateOutputReady SessionState = "output_ready"
)

// Controls describes which user actions are enabled in a given state.
// Enablement is derived purely from the session state; there are no
// per-control flags anywhere else.
type Controls struct {
	Record     bool `json:"record"`
	Stop       bool `json:"stop"`
	Clear      bool `json:"clear"`
	Use        bool `json:"use"`
	Synthesize bool `json:"synthesize"`
	Play       bool `json:"play"`
	Download   bool `json:"download"`
}

// WavePoint is one waveform column: the minimum and maximum amplitude
// observed in its sample window.
type WavePoint struct {
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

// BackendStatus reports the health of the remote inference service.
type BackendStatus struct {
	Reachable    bool   `json:"reachable"`
	ModelsLoaded bool   `json:"models_loaded,omitzero"`
	SampleRate   int    `json:"sample_rate,omitzero"`
	Error        string `json:"error,omitempty"`
}

// ArchiveStatus reports the state of the S3 output archive.
type ArchiveStatus struct {
	Configured     bool   `json:"configured"`
	LastUploadTime string `json:"last_upload_time,omitempty"`
	LastUploadKey  string `json:"last_upload_key,omitempty"`
	LastError      string `json:"last_error,omitempty"`
}

// SessionStatus is the full status snapshot pushed to clients.
type SessionStatus struct {
	State          SessionState  `json:"state"`
	SessionID      string        `json:"session_id,omitempty"`
	ElapsedSeconds int           `json:"elapsed_seconds"`
	Elapsed        string        `json:"elapsed"` // mm:ss
	Waveform       []WavePoint   `json:"waveform,omitempty"`
	LevelDB        float64       `json:"level_db,omitzero"`
	PeakDB         float64       `json:"peak_db,omitzero"`
	HasEmbedding   bool          `json:"has_embedding"`
	EmbeddingShape []int         `json:"embedding_shape,omitempty"`
	Text           string        `json:"text"`
	TextChars      int           `json:"text_chars"`
	TextUnlocked   bool          `json:"text_unlocked"`
	HasOutput      bool          `json:"has_output"`
	OutputBytes    int           `json:"output_bytes,omitzero"`
	Playing        bool          `json:"playing"`
	Notice         string        `json:"notice,omitempty"`
	Error          string        `json:"error,omitempty"`
	Backend        BackendStatus `json:"backend"`
	Controls       Controls      `json:"controls"`
	Archive        ArchiveStatus `json:"archive"`
}

// VersionInfo contains version comparison data.
type VersionInfo struct {
	Current     string `json:"current"`
	Latest      string `json:"latest,omitempty"`
	UpdateAvail bool   `json:"update_available"`
	Commit      string `json:"commit,omitempty"`
	BuildTime   string `json:"build_time,omitempty"`
}

// MaxTextLength is the maximum number of characters accepted for synthesis.
// Longer input is truncated, not rejected.
const MaxTextLength = 500

// NoticeTTL is how long a transient status notice stays visible.
const NoticeTTL = 5 * time.Second

// MaxUploadBytes caps the WAV payload sent to the embedding endpoint.
const MaxUploadBytes = 50 * 1024 * 1024

// DefaultSynthesisSpeed is the time-stretch factor sent with synthesis
// requests when none is configured. 1.0 means no change.
const DefaultSynthesisSpeed = 1.0

const (
	// ShutdownTimeout is the duration to wait for graceful shutdown.
	ShutdownTimeout = 3000 * time.Millisecond
	// CaptureStopTimeout is how long to wait for the capture process to
	// exit after closing its pipes before killing it.
	CaptureStopTimeout = 5 * time.Second
	// DecodeTimeout bounds a single ffmpeg decode run.
	DecodeTimeout = 30 * time.Second
)

const (
	// HealthProbeInitialDelay is the backoff floor for backend health probing.
	HealthProbeInitialDelay = 3 * time.Second
	// HealthProbeMaxDelay is the backoff ceiling for backend health probing.
	HealthProbeMaxDelay = 60 * time.Second
	// HealthProbeInterval is the steady-state probe interval while the
	// backend is reachable.
	HealthProbeInterval = 30 * time.Second
)

// Audio defaults for voice sample capture. The embedding encoder consumes
// 16 kHz mono, so captures default to that format.
const (
	DefaultSampleRate       = 16000
	DefaultChannels         = 1
	DefaultMaxRecordSeconds = 120
	// WaveformWidth is the number of min/max columns rendered for display.
	WaveformWidth = 200
)
