package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/voicevault/backend/internal/ingest"
)

// Processor runs the upload pipeline for one request.
type Processor interface {
	Process(ctx context.Context, req ingest.UploadRequest) (*ingest.Result, error)
}

type IngestHandler struct {
	pipeline Processor
	maxBytes int64
}

func NewIngestHandler(pipeline Processor, maxBytes int64) *IngestHandler {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return &IngestHandler{pipeline: pipeline, maxBytes: maxBytes}
}

// Input accepts the image+audio multipart upload and runs the pipeline.
//
// Transcription failures come back as 200 with an "error" body field; that
// envelope predates this service and existing clients branch on the field,
// not the status code. Storage faults were never part of that contract and
// return 500.
func (h *IngestHandler) Input(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	image, imageHdr, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image file required"})
		return
	}
	defer image.Close()

	audio, audioHdr, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "audio file required"})
		return
	}
	defer audio.Close()

	result, err := h.pipeline.Process(r.Context(), ingest.UploadRequest{
		Image: ingest.FilePart{Filename: imageHdr.Filename, Data: image},
		Audio: ingest.FilePart{Filename: audioHdr.Filename, Data: audio},
	})
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidFilename) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if result.TranscriptionErr != nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"error": fmt.Sprintf("Error processing audio: %v", result.TranscriptionErr),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":         result.Message,
		"translated_text": result.TranslatedText,
	})
}
