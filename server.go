package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/audio"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/cloning"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/config"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/eventlog"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/export"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/server"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/session"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

// wsStatusResponse is the status message pushed over the WebSocket.
type wsStatusResponse struct {
	Type           string              `json:"type"`
	ToolsAvailable bool                `json:"tools_available"`
	Session        types.SessionStatus `json:"session"`
	Devices        []audio.Device      `json:"devices"`
	Settings       wsSettings          `json:"settings"`
	Version        types.VersionInfo   `json:"version"`
}

// wsSettings carries client-relevant runtime settings.
type wsSettings struct {
	AudioInput       string `json:"audio_input"`
	SampleRate       int    `json:"sample_rate"`
	Channels         int    `json:"channels"`
	MaxRecordSeconds int    `json:"max_record_seconds"`
	Platform         string `json:"platform"`
}

// Server is an HTTP server that provides the web interface for the studio.
type Server struct {
	config         *config.Config
	machine        *session.Machine
	archive        *export.Archive
	backend        *cloning.Client
	events         *eventlog.Logger
	commands       *server.CommandHandler
	version        *VersionChecker
	prober         *cloning.Prober
	toolsAvailable bool

	mu      sync.Mutex
	clients map[chan struct{}]struct{}
}

// NewServer returns a new Server wired to the session machine.
func NewServer(cfg *config.Config, machine *session.Machine, archive *export.Archive, backend *cloning.Client, events *eventlog.Logger, toolsAvailable bool) *Server {
	return &Server{
		config:         cfg,
		machine:        machine,
		archive:        archive,
		backend:        backend,
		events:         events,
		commands:       server.NewCommandHandler(cfg, machine, archive, backend, events),
		version:        NewVersionChecker(),
		toolsAvailable: toolsAvailable,
		clients:        make(map[chan struct{}]struct{}),
	}
}

// BroadcastStatus wakes every connected WebSocket client so its event loop
// pushes a fresh status snapshot. Safe to call from any goroutine.
func (s *Server) BroadcastStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// registerClient adds a per-connection status wakeup channel.
func (s *Server) registerClient(ch chan struct{}) {
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
}

// unregisterClient removes a per-connection status wakeup channel.
func (s *Server) unregisterClient(ch chan struct{}) {
	s.mu.Lock()
	delete(s.clients, ch)
	s.mu.Unlock()
}

// handleWebSocket serves one client connection: a writer goroutine owns all
// writes, a reader goroutine dispatches commands, and the event loop below
// decides when to push status.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.UpgradeConnection(w, r)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	send := make(chan any, 16)
	done := make(chan struct{})
	statusUpdate := make(chan struct{}, 1)

	s.registerClient(statusUpdate)
	defer s.unregisterClient(statusUpdate)

	go s.runWebSocketWriter(conn, send, done)
	go s.runWebSocketReader(conn, send, done, statusUpdate)

	s.runWebSocketEventLoop(send, done, statusUpdate)
}

// runWebSocketWriter drains the send channel into the connection. It is the
// only goroutine that writes to conn, and it owns closing it. The send
// channel is never closed: async command handlers can finish after the
// client is gone, and their responses must land in a dead channel, not a
// closed one.
func (s *Server) runWebSocketWriter(conn server.WebSocketConn, send <-chan any, done <-chan struct{}) {
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("WebSocket close error", "error", err)
		}
	}()
	for {
		select {
		case <-done:
			return
		case msg := <-send:
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

// runWebSocketReader reads commands from the connection and dispatches them.
func (s *Server) runWebSocketReader(conn server.WebSocketConn, send chan<- any, done chan<- struct{}, statusUpdate chan<- struct{}) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in WebSocket reader", "panic", r)
		}
		close(done)
	}()

	for {
		var cmd server.WSCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		s.commands.Handle(cmd, send, func() {
			select {
			case statusUpdate <- struct{}{}:
			default:
			}
		})
	}
}

// runWebSocketEventLoop handles periodic and triggered status updates.
// While a recording is active the elapsed-time ticker runs at 1s so the
// client clock stays live.
func (s *Server) runWebSocketEventLoop(send chan any, done, statusUpdate <-chan struct{}) {
	recordTicker := time.NewTicker(1 * time.Second)
	statusTicker := time.NewTicker(3 * time.Second)
	defer recordTicker.Stop()
	defer statusTicker.Stop()

	// trySend reports false once the reader has closed done.
	trySend := func(msg any) bool {
		select {
		case send <- msg:
			return true
		case <-done:
			return false
		}
	}

	// New clients get a snapshot immediately.
	if !trySend(s.buildWSStatus()) {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-statusUpdate:
			if !trySend(s.buildWSStatus()) {
				return
			}
		case <-recordTicker.C:
			if s.machine.State() != types.StateRecording {
				continue
			}
			if !trySend(s.buildWSStatus()) {
				return
			}
		case <-statusTicker.C:
			if !trySend(s.buildWSStatus()) {
				return
			}
		}
	}
}

// buildWSStatus assembles the full status snapshot a client renders from.
func (s *Server) buildWSStatus() wsStatusResponse {
	cfg := s.config.Snapshot()
	status := s.machine.Status()
	if s.prober != nil {
		status.Backend = s.prober.Status()
	}

	return wsStatusResponse{
		Type:           "status",
		ToolsAvailable: s.toolsAvailable,
		Session:        status,
		Devices:        audio.ListDevices(),
		Settings: wsSettings{
			AudioInput:       cfg.AudioInput,
			SampleRate:       cfg.SampleRate,
			Channels:         cfg.Channels,
			MaxRecordSeconds: cfg.MaxRecordSeconds,
			Platform:         runtime.GOOS,
		},
		Version: s.version.Info(),
	}
}

// SetupRoutes builds the handler serving the REST API, the WebSocket
// endpoint and the embedded UI.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// REST API (also used by the clonectl CLI)
	mux.HandleFunc("/api/status", s.handleAPIStatus)
	mux.HandleFunc("/api/health", s.handleAPIHealth)
	mux.HandleFunc("/api/record/start", s.handleAPIRecordStart)
	mux.HandleFunc("/api/record/stop", s.handleAPIRecordStop)
	mux.HandleFunc("/api/session/clear", s.handleAPISessionClear)
	mux.HandleFunc("/api/session/use", s.handleAPISessionUse)
	mux.HandleFunc("/api/session/text", s.handleAPISessionText)
	mux.HandleFunc("/api/synthesize", s.handleAPISynthesize)
	mux.HandleFunc("/api/playback/toggle", s.handleAPIPlaybackToggle)
	mux.HandleFunc("/api/download", s.handleAPIDownload)
	mux.HandleFunc("/api/recording", s.handleAPIRecording)
	mux.HandleFunc("/api/events", s.handleAPIEvents)

	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/", s.handleStatic)

	return securityHeaders(mux)
}

// securityHeaders sets conservative response headers on every route.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

type staticFile struct {
	contentType string
	content     string
	name        string
}

// staticFiles maps URL paths to the embedded UI assets.
var staticFiles = map[string]staticFile{
	"/index.html": {
		contentType: "text/html",
		content:     indexHTML,
		name:        "index.html",
	},
	"/style.css": {
		contentType: "text/css",
		content:     styleCSS,
		name:        "style.css",
	},
	"/app.js": {
		contentType: "application/javascript",
		content:     appJS,
		name:        "app.js",
	},
}

// handleStatic serves the embedded web interface.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	file, ok := staticFiles[path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", file.contentType)
	if _, err := w.Write([]byte(file.content)); err != nil {
		slog.Error("failed to write static file", "file", file.name, "error", err)
	}
}

// Start launches the HTTP server and returns it for graceful shutdown.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.config.Snapshot().Port)
	slog.Info("starting web server", "addr", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.SetupRoutes(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	return srv
}
