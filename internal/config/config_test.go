package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	cfg := New("/tmp/nonexistent.json")

	if cfg.System.Port != DefaultWebPort {
		t.Errorf("port = %d, want %d", cfg.System.Port, DefaultWebPort)
	}
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("sample rate = %d, want %d", cfg.Audio.SampleRate, DefaultSampleRate)
	}
	if cfg.Audio.Channels != DefaultChannels {
		t.Errorf("channels = %d, want %d", cfg.Audio.Channels, DefaultChannels)
	}
	if cfg.Backend.URL != DefaultBackendURL {
		t.Errorf("backend URL = %s, want %s", cfg.Backend.URL, DefaultBackendURL)
	}
	if cfg.Synthesis.Speed != DefaultSynthesisSpeed {
		t.Errorf("speed = %g, want %g", cfg.Synthesis.Speed, DefaultSynthesisSpeed)
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := New(path)

	if err := cfg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"system":{"port":9000}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := New(path)
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	snap := cfg.Snapshot()
	if snap.Port != 9000 {
		t.Errorf("port = %d, want 9000", snap.Port)
	}
	if snap.SampleRate != DefaultSampleRate {
		t.Errorf("sample rate = %d, want default %d", snap.SampleRate, DefaultSampleRate)
	}
	if snap.Backend.URL != DefaultBackendURL {
		t.Errorf("backend URL = %s, want default", snap.Backend.URL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad port":        `{"system":{"port":99999}}`,
		"bad sample rate": `{"audio":{"sample_rate":100}}`,
		"bad channels":    `{"audio":{"channels":7}}`,
		"bad backend URL": `{"backend":{"url":"not a url"}}`,
		"bad speed":       `{"synthesis":{"speed":5.0}}`,
		"token no creds":  `{"backend":{"token_url":"https://auth.example.com/token"}}`,
	}

	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg := New(path)
		if err := cfg.Load(); err == nil {
			t.Errorf("%s: Load accepted invalid config", name)
		}
	}
}

func TestUpdateArchivePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := New(path)
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	archive := ArchiveConfig{
		S3Endpoint:        "https://s3.example.com",
		S3Bucket:          "outputs",
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
	}
	if err := cfg.UpdateArchive(archive); err != nil {
		t.Fatalf("UpdateArchive: %v", err)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Snapshot().Archive != archive {
		t.Errorf("archive = %+v, want %+v", reloaded.Snapshot().Archive, archive)
	}
}

func TestUpdateAudioInputPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := New(path)
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := cfg.UpdateAudioInput("hw:1,0"); err != nil {
		t.Fatalf("UpdateAudioInput: %v", err)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Snapshot().AudioInput; got != "hw:1,0" {
		t.Errorf("audio input = %q, want hw:1,0", got)
	}
}
