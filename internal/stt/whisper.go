package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// WhisperConfig holds configuration for an OpenAI-compatible whisper backend.
type WhisperConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "whisper-1"
}

// WhisperClient translates audio to English using the Whisper translations
// endpoint (or a compatible server). The client is built once at startup and
// shared across requests; it holds no per-request state.
type WhisperClient struct {
	cfg        WhisperConfig
	httpClient *http.Client
}

// NewWhisperClient creates a WhisperClient with sensible defaults applied.
func NewWhisperClient(cfg WhisperConfig) *WhisperClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &WhisperClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

func (w *WhisperClient) Name() string { return "openai-whisper" }

// Translate sends the audio file to the translations endpoint using a proper
// multipart upload. The endpoint always produces English text.
func (w *WhisperClient) Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error) {
	resp, err := w.translate(ctx, req)
	if err != nil {
		return nil, &TranscriptionError{Provider: w.Name(), Err: err}
	}
	return resp, nil
}

func (w *WhisperClient) translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	_ = mw.WriteField("model", w.cfg.Model)
	_ = mw.WriteField("response_format", "verbose_json")

	if req.Prompt != "" {
		_ = mw.WriteField("prompt", req.Prompt)
	}

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", w.cfg.BaseURL+"/audio/translations", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if w.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)
	}

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("translation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translation failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &TranslationResponse{
		Text:     apiResp.Text,
		Language: apiResp.Language,
		Duration: apiResp.Duration,
	}, nil
}
