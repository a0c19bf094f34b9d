package cloning

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/config"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

func newTestClient(url string) *Client {
	return NewClient(config.BackendConfig{URL: url})
}

func TestExtractEmbedding(t *testing.T) {
	var gotField []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/record" {
			t.Errorf("path = %s, want /api/record", r.URL.Path)
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("missing audio form field: %v", err)
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "recording.wav" {
			t.Errorf("filename = %s, want recording.wav", header.Filename)
		}
		buf := make([]byte, header.Size)
		_, _ = file.Read(buf)
		gotField = buf

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":         true,
			"message":         "ok",
			"embedding":       []float64{0.1, 0.2},
			"embedding_shape": []int{2},
		})
	}))
	defer srv.Close()

	emb, err := newTestClient(srv.URL).ExtractEmbedding(context.Background(), []byte("RIFFdata"))
	if err != nil {
		t.Fatalf("ExtractEmbedding: %v", err)
	}
	if string(gotField) != "RIFFdata" {
		t.Errorf("uploaded bytes = %q, want RIFFdata", gotField)
	}
	if len(emb.Shape) != 1 || emb.Shape[0] != 2 {
		t.Errorf("shape = %v, want [2]", emb.Shape)
	}
	if len(emb.Vector) == 0 {
		t.Error("embedding vector is empty")
	}
}

func TestExtractEmbeddingEmptyInput(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").ExtractEmbedding(context.Background(), nil)
	if !errors.Is(err, types.ErrValidation) {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestExtractEmbeddingTooLarge(t *testing.T) {
	big := make([]byte, types.MaxUploadBytes+1)
	_, err := newTestClient("http://127.0.0.1:1").ExtractEmbedding(context.Background(), big)
	if !errors.Is(err, types.ErrValidation) {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestExtractEmbeddingBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "audio too short"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ExtractEmbedding(context.Background(), []byte("x"))
	if !errors.Is(err, types.ErrEmbedding) {
		t.Fatalf("got %v, want embedding error", err)
	}
	// Backend message surfaces verbatim
	if !strings.Contains(err.Error(), "audio too short") {
		t.Errorf("error %q does not carry the backend message", err)
	}
}

func TestExtractEmbeddingGenericFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>Internal Server Error</html>"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ExtractEmbedding(context.Background(), []byte("x"))
	if !strings.Contains(err.Error(), "embedding extraction failed") {
		t.Errorf("error %q should fall back to the generic message", err)
	}
}

func TestSynthesize(t *testing.T) {
	wantWAV := []byte("RIFF....WAVEfake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/synthesize" {
			t.Errorf("path = %s, want /api/synthesize", r.URL.Path)
		}
		var body struct {
			Text      string          `json:"text"`
			Embedding json.RawMessage `json:"embedding"`
			Speed     float64         `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Text != "hello" {
			t.Errorf("text = %q, want hello", body.Text)
		}
		if body.Speed != 1.25 {
			t.Errorf("speed = %g, want 1.25", body.Speed)
		}
		if string(body.Embedding) != "[0.1,0.2]" {
			t.Errorf("embedding = %s, not echoed verbatim", body.Embedding)
		}
		_, _ = w.Write(wantWAV)
	}))
	defer srv.Close()

	wav, err := newTestClient(srv.URL).Synthesize(context.Background(), SynthesisRequest{
		Text:      "hello",
		Embedding: &Embedding{Vector: json.RawMessage("[0.1,0.2]"), Shape: []int{2}},
		Speed:     1.25,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(wav) != string(wantWAV) {
		t.Errorf("wav = %q, want %q", wav, wantWAV)
	}
}

func TestSynthesizeValidation(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")

	_, err := c.Synthesize(context.Background(), SynthesisRequest{Text: "  "})
	if !errors.Is(err, types.ErrValidation) {
		t.Errorf("blank text: got %v, want validation error", err)
	}

	_, err = c.Synthesize(context.Background(), SynthesisRequest{Text: "hi"})
	if !errors.Is(err, types.ErrValidation) {
		t.Errorf("missing embedding: got %v, want validation error", err)
	}
}

func TestSynthesizeBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no embedding loaded"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Synthesize(context.Background(), SynthesisRequest{
		Text:      "hi",
		Embedding: &Embedding{Vector: json.RawMessage("[1]")},
	})
	if !errors.Is(err, types.ErrSynthesis) {
		t.Fatalf("got %v, want synthesis error", err)
	}
	if !strings.Contains(err.Error(), "no embedding loaded") {
		t.Errorf("error %q does not carry the backend message", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %s, want /api/health", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        "ok",
			"models_loaded": true,
			"sample_rate":   16000,
		})
	}))
	defer srv.Close()

	status, err := newTestClient(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if !status.Reachable || !status.ModelsLoaded || status.SampleRate != 16000 {
		t.Errorf("status = %+v", status)
	}
}

func TestHealthUnreachable(t *testing.T) {
	status, err := newTestClient("http://127.0.0.1:1").Health(context.Background())
	if !errors.Is(err, types.ErrTransport) {
		t.Fatalf("got %v, want transport error", err)
	}
	if status.Reachable {
		t.Error("status should report unreachable")
	}
}
