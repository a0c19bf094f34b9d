package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/export"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/server"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

// API response helpers

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeActionError maps a machine error to an HTTP status. Validation
// failures are client errors; everything else is reported as a server error.
func (s *Server) writeActionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, types.ErrValidation) {
		status = http.StatusBadRequest
	}
	s.writeError(w, status, err.Error())
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// handleAPIStatus handles GET /api/status.
func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.buildWSStatus())
}

// handleAPIHealth handles GET /api/health by probing the inference backend.
func (s *Server) handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	status, err := s.backend.Health(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

// handleAPIRecordStart handles POST /api/record/start.
func (s *Server) handleAPIRecordStart(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := s.machine.StartRecording(); err != nil {
		s.writeActionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "recording_started"})
}

// handleAPIRecordStop handles POST /api/record/stop.
func (s *Server) handleAPIRecordStop(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := s.machine.StopRecording(); err != nil {
		s.writeActionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "processing"})
}

// handleAPISessionClear handles POST /api/session/clear.
func (s *Server) handleAPISessionClear(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := s.machine.Clear(); err != nil {
		s.writeActionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleAPISessionUse handles POST /api/session/use.
func (s *Server) handleAPISessionUse(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := s.machine.UseRecording(); err != nil {
		s.writeActionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "unlocked"})
}

// handleAPISessionText handles POST /api/session/text.
func (s *Server) handleAPISessionText(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req server.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	chars := s.machine.SetText(req.Text)
	s.writeJSON(w, http.StatusOK, map[string]int{"text_chars": chars})
}

// handleAPISynthesize handles POST /api/synthesize. An optional text field
// replaces the stored text before synthesis starts.
func (s *Server) handleAPISynthesize(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req server.TextRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}
	if req.Text != "" {
		s.machine.SetText(req.Text)
	}
	if err := s.machine.Synthesize(); err != nil {
		s.writeActionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "synthesizing"})
}

// handleAPIPlaybackToggle handles POST /api/playback/toggle.
func (s *Server) handleAPIPlaybackToggle(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	playing, err := s.machine.TogglePlayback()
	if err != nil {
		s.writeActionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"playing": playing})
}

// handleAPIDownload handles GET /api/download, serving the synthesized
// output with a timestamped attachment filename.
func (s *Server) handleAPIDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	wav, at, ready := s.machine.Output()
	if !ready {
		s.writeError(w, http.StatusNotFound, "no synthesized output available")
		return
	}

	prefix := s.config.Snapshot().DownloadPrefix
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(prefix, at)))
	if _, err := w.Write(wav); err != nil {
		slog.Error("failed to write download", "error", err)
	}
}

// handleAPIRecording handles GET /api/recording, serving the recorded voice
// sample as WAV for review.
func (s *Server) handleAPIRecording(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	wav := s.machine.RecordingWAV()
	if len(wav) == 0 {
		s.writeError(w, http.StatusNotFound, "no recording available")
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	if _, err := w.Write(wav); err != nil {
		slog.Error("failed to write recording", "error", err)
	}
}

// handleAPIEvents handles GET /api/events.
func (s *Server) handleAPIEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.events.Recent(server.MaxEventEntries))
}
