// Package cloning implements the HTTP client for the voice cloning inference
// service: speaker embedding extraction, text-to-speech synthesis and health.
package cloning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/config"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

// inferenceTimeout bounds the two model calls. Spectrogram synthesis and
// vocoding are slow on CPU-only backends.
const inferenceTimeout = 120 * time.Second

// healthTimeout bounds a single health probe.
const healthTimeout = 10 * time.Second

// Embedding is the opaque speaker representation returned by the backend.
// The vector is kept as raw JSON and echoed back verbatim on synthesis.
type Embedding struct {
	Vector json.RawMessage
	Shape  []int
}

// SynthesisRequest carries everything needed for one synthesis call.
type SynthesisRequest struct {
	Text      string
	Embedding *Embedding
	Speed     float64
}

// Client talks to the inference service. It performs no automatic retries;
// failures surface immediately so the session state machine can revert.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the configured backend. When an OAuth2
// token URL is configured, requests carry a client-credentials bearer token.
func NewClient(cfg config.BackendConfig) *Client {
	httpClient := &http.Client{Timeout: inferenceTimeout}

	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		httpClient = cc.Client(context.Background())
		httpClient.Timeout = inferenceTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    httpClient,
	}
}

// embeddingResponse mirrors the backend's /api/record reply.
type embeddingResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Embedding json.RawMessage `json:"embedding"`
	Shape     []int           `json:"embedding_shape"`
}

// ExtractEmbedding uploads a WAV container and returns the speaker
// embedding. The WAV bytes are sent as the multipart form field "audio".
func (c *Client) ExtractEmbedding(ctx context.Context, wav []byte) (*Embedding, error) {
	if len(wav) == 0 {
		return nil, fmt.Errorf("%w: empty recording", types.ErrValidation)
	}
	if len(wav) > types.MaxUploadBytes {
		return nil, fmt.Errorf("%w: recording exceeds %d bytes", types.ErrValidation, types.MaxUploadBytes)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", "recording.wav")
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/record", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrTransport, err)
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", types.ErrEmbedding, errorMessage(resp, "embedding extraction failed"))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid embedding response: %s", types.ErrEmbedding, err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("%w: response carried no embedding", types.ErrEmbedding)
	}

	return &Embedding{Vector: parsed.Embedding, Shape: parsed.Shape}, nil
}

// synthesizeBody mirrors the backend's /api/synthesize request.
type synthesizeBody struct {
	Text      string          `json:"text"`
	Embedding json.RawMessage `json:"embedding"`
	Speed     float64         `json:"speed,omitempty"`
}

// Synthesize sends text plus the speaker embedding and returns the
// synthesized WAV container bytes.
func (c *Client) Synthesize(ctx context.Context, sr SynthesisRequest) ([]byte, error) {
	if strings.TrimSpace(sr.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", types.ErrValidation)
	}
	if sr.Embedding == nil || len(sr.Embedding.Vector) == 0 {
		return nil, fmt.Errorf("%w: speaker embedding is required", types.ErrValidation)
	}

	payload, err := json.Marshal(synthesizeBody{
		Text:      sr.Text,
		Embedding: sr.Embedding.Vector,
		Speed:     sr.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrTransport, err)
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", types.ErrSynthesis, errorMessage(resp, "synthesis failed"))
	}

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %s", types.ErrTransport, err)
	}
	if len(wav) == 0 {
		return nil, fmt.Errorf("%w: response carried no audio", types.ErrSynthesis)
	}

	return wav, nil
}

// healthResponse mirrors the backend's /api/health reply.
type healthResponse struct {
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
	SampleRate   int    `json:"sample_rate"`
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) (types.BackendStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return types.BackendStatus{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return types.BackendStatus{Error: err.Error()}, fmt.Errorf("%w: %s", types.ErrTransport, err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		msg := errorMessage(resp, resp.Status)
		return types.BackendStatus{Error: msg}, fmt.Errorf("%w: %s", types.ErrTransport, msg)
	}

	var parsed healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return types.BackendStatus{Error: err.Error()}, fmt.Errorf("%w: invalid health response: %s", types.ErrTransport, err)
	}

	return types.BackendStatus{
		Reachable:    true,
		ModelsLoaded: parsed.ModelsLoaded,
		SampleRate:   parsed.SampleRate,
	}, nil
}

// errorMessage extracts the backend-supplied error message from a non-2xx
// response, falling back to a generic message when the body carries no
// parseable {"error": ...} payload.
func errorMessage(resp *http.Response, fallback string) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(body) == 0 {
		return fallback
	}

	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error == "" {
		return fallback
	}
	return parsed.Error
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
