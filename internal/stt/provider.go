package stt

import (
	"context"
	"fmt"
)

// TranslationRequest holds the parameters for a translate-to-English call.
type TranslationRequest struct {
	FilePath string `json:"file_path"`
	Prompt   string `json:"prompt,omitempty"`
}

// TranslationResponse holds the translated text.
type TranslationResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Translator is the interface for speech-to-English-text backends. The output
// is always English regardless of the spoken language.
type Translator interface {
	Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error)
	Name() string
}

// TranscriptionError wraps any fault raised by a Translator so callers can
// recover it with errors.As instead of matching strings.
type TranscriptionError struct {
	Provider string
	Err      error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }
