package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/voicevault/backend/internal/stt"
	"github.com/voicevault/backend/internal/vectorstore"
)

// SuccessMessage is the envelope message clients have depended on since the
// first deployment; keep it stable.
const SuccessMessage = "Files uploaded and processed successfully"

// Embedder turns one text into a vector.
type Embedder interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// FilePart is one uploaded payload with its client-supplied filename.
type FilePart struct {
	Filename string
	Data     io.Reader
}

// UploadRequest is the pair of payloads one request carries. It lives for the
// duration of that request only.
type UploadRequest struct {
	Image FilePart
	Audio FilePart
}

// Result is the pipeline outcome. Exactly one of the two shapes applies:
// TranscriptionErr set (translation failed, recovered locally, nothing
// stored) or Message/TranslatedText set. Storage faults never appear here;
// Process returns them as ordinary errors so they propagate.
type Result struct {
	Message          string
	TranslatedText   string
	TranscriptionErr error
}

// Pipeline sequences one upload: stage both files, translate the audio,
// store the transcript vector when there is text, assemble the response.
// All collaborators are long-lived handles injected at startup.
type Pipeline struct {
	stager     *Stager
	translator stt.Translator
	embedder   Embedder
	store      vectorstore.Store
}

func NewPipeline(stager *Stager, translator stt.Translator, embedder Embedder, store vectorstore.Store) *Pipeline {
	return &Pipeline{
		stager:     stager,
		translator: translator,
		embedder:   embedder,
		store:      store,
	}
}

// Process runs the staging -> transcription -> storage sequence for one
// request. Steps run strictly in that order; there are no retries.
func (p *Pipeline) Process(ctx context.Context, req UploadRequest) (*Result, error) {
	if _, err := p.stager.Stage(req.Image.Filename, req.Image.Data); err != nil {
		return nil, fmt.Errorf("stage image: %w", err)
	}

	audioPath, err := p.stager.Stage(req.Audio.Filename, req.Audio.Data)
	if err != nil {
		return nil, fmt.Errorf("stage audio: %w", err)
	}

	resp, err := p.translator.Translate(ctx, stt.TranslationRequest{FilePath: audioPath})
	if err != nil {
		// Recovered locally: the client gets the cause as data, the image
		// stays staged, and no storage call happens.
		slog.Warn("translation failed", "audio", req.Audio.Filename, "error", err)
		return &Result{TranscriptionErr: err}, nil
	}

	if resp.Text != "" {
		if err := p.storeTranscript(ctx, resp.Text); err != nil {
			return nil, err
		}
	}

	return &Result{
		Message:        SuccessMessage,
		TranslatedText: resp.Text,
	}, nil
}

func (p *Pipeline) storeTranscript(ctx context.Context, text string) error {
	vec, err := p.embedder.EmbedSingle(ctx, text)
	if err != nil {
		return fmt.Errorf("embed transcript: %w", err)
	}

	rec := vectorstore.Record{
		ID:       uuid.NewString(),
		Values:   vec,
		Metadata: map[string]interface{}{"text": text},
	}
	if err := p.store.Upsert(ctx, []vectorstore.Record{rec}); err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}

	slog.Info("transcript stored", "record_id", rec.ID, "chars", len(text))
	return nil
}
