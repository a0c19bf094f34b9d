// Package config persists the studio settings as a JSON file and hands out
// consistent snapshots to the rest of the application.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

const (
	DefaultWebPort          = 8080
	DefaultBackendURL       = "http://127.0.0.1:5000"
	DefaultSampleRate       = types.DefaultSampleRate
	DefaultChannels         = types.DefaultChannels
	DefaultMaxRecordSeconds = types.DefaultMaxRecordSeconds
	DefaultSynthesisSpeed   = types.DefaultSynthesisSpeed
	DefaultDownloadPrefix   = "voiceclone"
)

// SystemConfig holds settings that only take effect on restart.
type SystemConfig struct {
	FFmpegPath string `json:"ffmpeg_path"` // Path to FFmpeg binary (empty = use PATH)
	Port       int    `json:"port"`        // HTTP server port
}

// AudioConfig holds microphone capture settings.
type AudioConfig struct {
	Input            string `json:"input"`              // Audio input device identifier
	SampleRate       int    `json:"sample_rate"`        // Capture sample rate in Hz
	Channels         int    `json:"channels"`           // Capture channel count
	MaxRecordSeconds int    `json:"max_record_seconds"` // Auto-stop limit (0 = unlimited)
}

// BackendConfig holds settings for the remote inference service.
type BackendConfig struct {
	URL string `json:"url"` // Base URL of the inference service

	// Optional OAuth2 client-credentials auth. When TokenURL is set, all
	// backend requests carry a bearer token obtained from it.
	TokenURL     string   `json:"token_url"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
}

// SynthesisConfig holds synthesis tuning settings.
type SynthesisConfig struct {
	Speed          float64 `json:"speed"`           // Time-stretch factor (1.0 = unchanged)
	DownloadPrefix string  `json:"download_prefix"` // Filename prefix for exports
}

// ArchiveConfig holds S3 settings for archiving synthesized outputs.
type ArchiveConfig struct {
	S3Endpoint        string `json:"s3_endpoint"`
	S3Bucket          string `json:"s3_bucket"`
	S3AccessKeyID     string `json:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key"`
}

// EventLogConfig holds session event log settings.
type EventLogConfig struct {
	Path string `json:"path"` // JSON-lines event log path (empty = disabled)
}

// Config is the mutable settings store. Safe for concurrent use.
type Config struct {
	System    SystemConfig    `json:"system"`
	Audio     AudioConfig     `json:"audio"`
	Backend   BackendConfig   `json:"backend"`
	Synthesis SynthesisConfig `json:"synthesis"`
	Archive   ArchiveConfig   `json:"archive"`
	EventLog  EventLogConfig  `json:"event_log"`

	mu       sync.RWMutex
	filePath string
}

// New returns a Config bound to path, populated with defaults.
func New(filePath string) *Config {
	return &Config{
		System: SystemConfig{
			Port: DefaultWebPort,
		},
		Audio: AudioConfig{
			SampleRate:       DefaultSampleRate,
			Channels:         DefaultChannels,
			MaxRecordSeconds: DefaultMaxRecordSeconds,
		},
		Backend: BackendConfig{
			URL: DefaultBackendURL,
		},
		Synthesis: SynthesisConfig{
			Speed:          DefaultSynthesisSpeed,
			DownloadPrefix: DefaultDownloadPrefix,
		},
		filePath: filePath,
	}
}

// Load reads the settings file, writing a default one on first run.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if os.IsNotExist(err) {
		return c.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaultsLocked()

	if err := c.validateLocked(); err != nil {
		return err
	}

	return nil
}

// Save writes the current configuration to disk.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// saveLocked writes the config to file. Must be called with lock held.
func (c *Config) saveLocked() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyDefaultsLocked fills zero values with defaults. Must be called with lock held.
func (c *Config) applyDefaultsLocked() {
	if c.System.Port == 0 {
		c.System.Port = DefaultWebPort
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = DefaultSampleRate
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = DefaultChannels
	}
	if c.Audio.MaxRecordSeconds == 0 {
		c.Audio.MaxRecordSeconds = DefaultMaxRecordSeconds
	}
	if c.Backend.URL == "" {
		c.Backend.URL = DefaultBackendURL
	}
	if c.Synthesis.Speed == 0 {
		c.Synthesis.Speed = DefaultSynthesisSpeed
	}
	if c.Synthesis.DownloadPrefix == "" {
		c.Synthesis.DownloadPrefix = DefaultDownloadPrefix
	}
}

// validateLocked checks configuration values. Must be called with lock held.
func (c *Config) validateLocked() error {
	if c.System.Port < 1 || c.System.Port > 65535 {
		return fmt.Errorf("system.port: must be between 1 and 65535, got %d", c.System.Port)
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("audio.sample_rate: must be between 8000 and 192000, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels: must be 1 or 2, got %d", c.Audio.Channels)
	}
	if c.Audio.MaxRecordSeconds < 0 {
		return fmt.Errorf("audio.max_record_seconds: must not be negative, got %d", c.Audio.MaxRecordSeconds)
	}
	if _, err := url.ParseRequestURI(c.Backend.URL); err != nil {
		return fmt.Errorf("backend.url: invalid URL %q: %w", c.Backend.URL, err)
	}
	if c.Backend.TokenURL != "" {
		if _, err := url.ParseRequestURI(c.Backend.TokenURL); err != nil {
			return fmt.Errorf("backend.token_url: invalid URL %q: %w", c.Backend.TokenURL, err)
		}
		if c.Backend.ClientID == "" || c.Backend.ClientSecret == "" {
			return fmt.Errorf("backend: token_url requires client_id and client_secret")
		}
	}
	if c.Synthesis.Speed < 0.5 || c.Synthesis.Speed > 2.0 {
		return fmt.Errorf("synthesis.speed: must be between 0.5 and 2.0, got %g", c.Synthesis.Speed)
	}
	return nil
}

// Snapshot returns a copy of the current configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		FFmpegPath:       c.System.FFmpegPath,
		Port:             c.System.Port,
		AudioInput:       c.Audio.Input,
		SampleRate:       c.Audio.SampleRate,
		Channels:         c.Audio.Channels,
		MaxRecordSeconds: c.Audio.MaxRecordSeconds,
		Backend:          c.Backend,
		SynthesisSpeed:   c.Synthesis.Speed,
		DownloadPrefix:   c.Synthesis.DownloadPrefix,
		Archive:          c.Archive,
		EventLogPath:     c.EventLog.Path,
	}
}

// Snapshot is a flattened, copy-safe view of the configuration.
type Snapshot struct {
	FFmpegPath       string
	Port             int
	AudioInput       string
	SampleRate       int
	Channels         int
	MaxRecordSeconds int
	Backend          BackendConfig
	SynthesisSpeed   float64
	DownloadPrefix   string
	Archive          ArchiveConfig
	EventLogPath     string
}

// UpdateArchive replaces the archive settings and persists them.
func (c *Config) UpdateArchive(a ArchiveConfig) error {
	c.mu.Lock()
	c.Archive = a
	err := c.saveLocked()
	c.mu.Unlock()
	return err
}

// UpdateAudioInput sets the capture device and persists it.
func (c *Config) UpdateAudioInput(input string) error {
	c.mu.Lock()
	c.Audio.Input = input
	err := c.saveLocked()
	c.mu.Unlock()
	return err
}
