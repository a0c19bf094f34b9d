// Package main provides a voice cloning studio that records a voice sample
// from the microphone, obtains a speaker embedding from an inference backend
// and synthesizes arbitrary text in the recorded voice.
//
// Usage:
//
//	voiceclone-studio [-config path/to/config.json]
//
// If -config is not specified, the studio looks for config.json in the same
// directory as the binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/cloning"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/config"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/eventlog"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/export"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/playback"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/session"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/util"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: config.json next to binary)")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		slog.Info("version info", "version", Version, "commit", Commit, "build_time", BuildTime)
		return
	}

	if *configPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			slog.Error("failed to get executable path", "error", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(filepath.Dir(execPath), "config.json")
	}

	slog.Info("using config file", "path", *configPath)

	cfg := config.New(*configPath)
	if err := cfg.Load(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	snap := cfg.Snapshot()

	// Check audio tool availability
	ffmpegPath := util.ResolveTool("ffmpeg", snap.FFmpegPath)
	ffplayPath := util.ResolveTool("ffplay", "")
	toolsAvailable := ffmpegPath != ""
	if !toolsAvailable {
		slog.Warn("FFmpeg not found - recording disabled",
			"configured_path", snap.FFmpegPath)
	} else {
		slog.Info("FFmpeg found", "path", ffmpegPath)
	}
	if ffplayPath == "" {
		slog.Warn("ffplay not found - local playback disabled")
	}

	events := eventlog.New(snap.EventLogPath)

	backend := cloning.NewClient(snap.Backend)

	archive, err := export.NewArchive(snap.Archive, nil)
	if err != nil {
		slog.Error("failed to initialize output archive", "error", err)
		os.Exit(1)
	}
	archive.SetEventLogger(events)

	var player session.Player
	if ffplayPath != "" {
		player = playback.New(ffplayPath, nil)
	}

	machine := session.New(snap, ffmpegPath, backend, player, archive, events)

	srv := NewServer(cfg, machine, archive, backend, events, toolsAvailable)

	// Push a fresh status to connected clients on every state change.
	machine.SetStatusCallback(srv.BroadcastStatus)
	if p, ok := player.(*playback.Player); ok && p != nil {
		p.SetStateCallback(srv.BroadcastStatus)
	}
	archive.SetStatusCallback(srv.BroadcastStatus)

	prober := cloning.NewProber(backend, srv.BroadcastStatus)
	srv.prober = prober

	// Start web server.
	httpServer := srv.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, util.ShutdownSignals()...)
	<-sigChan

	slog.Info("shutting down")

	srv.version.Stop()
	prober.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	archive.Stop()

	slog.Info("shutdown complete")
}
