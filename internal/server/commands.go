package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/audio"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/cloning"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/config"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/eventlog"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/export"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/session"
)

// MaxEventEntries is the maximum number of event log entries to return.
const MaxEventEntries = 100

// WSCommand is one client message: a slash-style type plus a raw payload.
type WSCommand struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CommandHandler dispatches client commands to the session machine and
// its supporting services.
type CommandHandler struct {
	cfg     *config.Config
	machine *session.Machine
	archive *export.Archive
	backend *cloning.Client
	events  *eventlog.Logger
}

// NewCommandHandler wires a dispatcher to the studio services.
func NewCommandHandler(cfg *config.Config, machine *session.Machine, archive *export.Archive, backend *cloning.Client, events *eventlog.Logger) *CommandHandler {
	return &CommandHandler{
		cfg:     cfg,
		machine: machine,
		archive: archive,
		backend: backend,
		events:  events,
	}
}

// Handle routes one command to its namespace handler and triggers a status
// push afterwards so the client always sees the resulting state.
// Commands use slash-style format: namespace/action (e.g., "record/start").
func (h *CommandHandler) Handle(cmd WSCommand, send chan<- any, triggerStatusUpdate func()) {
	parts := strings.SplitN(cmd.Type, "/", 2)
	namespace := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch namespace {
	case "record":
		h.handleRecord(action, cmd, send)
	case "session":
		h.handleSession(action, cmd, send)
	case "synth":
		h.handleSynth(action, cmd, send)
	case "playback":
		h.handlePlayback(action, cmd, send)
	case "audio":
		h.handleAudio(action, cmd, send)
	case "archive":
		h.handleArchive(action, cmd, send)
	case "backend":
		h.handleBackend(action, cmd, send)
	case "events":
		h.handleEvents(action, send)
	case "config":
		h.handleConfig(action, send)
	case "status":
		h.handleStatus(action, send)
	default:
		slog.Warn("unknown WebSocket command", "type", cmd.Type)
	}

	triggerStatusUpdate()
}

// handleRecord routes record/* commands.
func (h *CommandHandler) handleRecord(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "start":
		if err := h.machine.StartRecording(); err != nil {
			SendError(send, cmd.Type, err)
			return
		}
		SendSuccess(send, cmd.Type, nil)
	case "stop":
		if err := h.machine.StopRecording(); err != nil {
			SendError(send, cmd.Type, err)
			return
		}
		SendSuccess(send, cmd.Type, nil)
	default:
		slog.Warn("unknown record action", "action", action)
	}
}

// handleSession routes session/* commands.
func (h *CommandHandler) handleSession(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "clear":
		if err := h.machine.Clear(); err != nil {
			SendError(send, cmd.Type, err)
			return
		}
		SendSuccess(send, cmd.Type, nil)
	case "use":
		if err := h.machine.UseRecording(); err != nil {
			SendError(send, cmd.Type, err)
			return
		}
		SendSuccess(send, cmd.Type, nil)
	case "text":
		HandleCommand(cmd, send, func(data *TextRequest) error {
			h.machine.SetText(data.Text)
			return nil
		})
	default:
		slog.Warn("unknown session action", "action", action)
	}
}

// handleSynth routes synth/* commands.
func (h *CommandHandler) handleSynth(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "run":
		HandleCommand(cmd, send, func(data *TextRequest) error {
			if data.Text != "" {
				h.machine.SetText(data.Text)
			}
			return h.machine.Synthesize()
		})
	default:
		slog.Warn("unknown synth action", "action", action)
	}
}

// handlePlayback routes playback/* commands.
func (h *CommandHandler) handlePlayback(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "toggle":
		playing, err := h.machine.TogglePlayback()
		if err != nil {
			SendError(send, cmd.Type, err)
			return
		}
		SendSuccess(send, cmd.Type, map[string]bool{"playing": playing})
	default:
		slog.Warn("unknown playback action", "action", action)
	}
}

// handleAudio routes audio/* commands.
func (h *CommandHandler) handleAudio(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		HandleCommand(cmd, send, func(data *AudioUpdateRequest) error {
			return h.cfg.UpdateAudioInput(data.Input)
		})
	case "devices":
		SendSuccess(send, cmd.Type, audio.ListDevices())
	default:
		slog.Warn("unknown audio action", "action", action)
	}
}

// handleArchive routes archive/* commands.
func (h *CommandHandler) handleArchive(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "update":
		HandleCommand(cmd, send, func(data *ArchiveUpdateRequest) error {
			archiveCfg := config.ArchiveConfig{
				S3Endpoint:        data.S3Endpoint,
				S3Bucket:          data.S3Bucket,
				S3AccessKeyID:     data.S3AccessKeyID,
				S3SecretAccessKey: data.S3SecretAccessKey,
			}
			if err := h.cfg.UpdateArchive(archiveCfg); err != nil {
				return err
			}
			return h.archive.UpdateConfig(archiveCfg)
		})
	case "test":
		var data ArchiveTestRequest
		if !DecodeAndValidate(cmd, send, &data) {
			return
		}
		HandleActionAsync(cmd, send, func() (any, error) {
			return nil, export.TestConnection(config.ArchiveConfig{
				S3Endpoint:        data.S3Endpoint,
				S3Bucket:          data.S3Bucket,
				S3AccessKeyID:     data.S3AccessKeyID,
				S3SecretAccessKey: data.S3SecretAccessKey,
			})
		})
	case "get":
		SendSuccess(send, cmd.Type, h.archive.Status())
	default:
		slog.Warn("unknown archive action", "action", action)
	}
}

// handleBackend routes backend/* commands.
func (h *CommandHandler) handleBackend(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "health":
		HandleActionAsync(cmd, send, func() (any, error) {
			status, err := h.backend.Health(context.Background())
			if err != nil {
				return nil, err
			}
			return status, nil
		})
	default:
		slog.Warn("unknown backend action", "action", action)
	}
}

// handleEvents routes events/* commands.
func (h *CommandHandler) handleEvents(action string, send chan<- any) {
	switch action {
	case "view":
		SendSuccess(send, "events/view", h.events.Recent(MaxEventEntries))
	default:
		slog.Warn("unknown events action", "action", action)
	}
}

// handleConfig routes config/* commands.
func (h *CommandHandler) handleConfig(action string, send chan<- any) {
	switch action {
	case "get":
		snap := h.cfg.Snapshot()
		SendSuccess(send, "config/get", map[string]any{
			"audio_input":        snap.AudioInput,
			"sample_rate":        snap.SampleRate,
			"channels":           snap.Channels,
			"max_record_seconds": snap.MaxRecordSeconds,
			"backend_url":        snap.Backend.URL,
			"synthesis_speed":    snap.SynthesisSpeed,
			"download_prefix":    snap.DownloadPrefix,
			"archive_configured": h.archive.Configured(),
			"devices":            audio.ListDevices(),
		})
	default:
		slog.Warn("unknown config action", "action", action)
	}
}

// handleStatus routes status/* commands.
func (h *CommandHandler) handleStatus(action string, send chan<- any) {
	switch action {
	case "get":
		// The status push after dispatch already answers this.
		slog.Debug("status/get received, status update will be triggered")
	default:
		slog.Warn("unknown status action", "action", action)
	}
}
