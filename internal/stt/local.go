package stt

import "context"

// LocalConfig holds configuration for the local whisper.cpp backend.
type LocalConfig struct {
	BaseURL string // default: "http://localhost:8178"
}

// Local wraps WhisperClient pointing at a local whisper.cpp server.
// Start the server with: ./server -m models/ggml-base.bin --port 8178
type Local struct {
	*WhisperClient
}

// NewLocal creates a Local backed by a whisper.cpp HTTP server. The server
// loads its model once at startup, so device selection (GPU vs CPU) is a
// process-wide decision made there, not per request.
func NewLocal(cfg LocalConfig) *Local {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8178"
	}
	return &Local{
		WhisperClient: NewWhisperClient(WhisperConfig{
			BaseURL: baseURL,
			// No API key needed for local server
		}),
	}
}

func (l *Local) Name() string { return "local-whisper" }

func (l *Local) Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error) {
	return l.WhisperClient.Translate(ctx, req)
}
