package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicevault/backend/internal/ingest"
	"github.com/voicevault/backend/internal/stt"
)

type fakeProcessor struct {
	result  *ingest.Result
	err     error
	calls   int
	lastReq ingest.UploadRequest
}

func (f *fakeProcessor) Process(ctx context.Context, req ingest.UploadRequest) (*ingest.Result, error) {
	f.calls++
	f.lastReq = req
	return f.result, f.err
}

func multipartUpload(t *testing.T, parts map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	filenames := map[string]string{"image": "cat.png", "audio": "hello.mp3"}
	for field, data := range parts {
		fw, err := mw.CreateFormFile(field, filenames[field])
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/input", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestInputSuccessEnvelope(t *testing.T) {
	p := &fakeProcessor{result: &ingest.Result{
		Message:        ingest.SuccessMessage,
		TranslatedText: "Hello, how are you?",
	}}
	h := NewIngestHandler(p, 0)

	rec := httptest.NewRecorder()
	h.Input(rec, multipartUpload(t, map[string][]byte{
		"image": []byte("png-bytes"),
		"audio": []byte("mp3-bytes"),
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Files uploaded and processed successfully", body["message"])
	assert.Equal(t, "Hello, how are you?", body["translated_text"])

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "cat.png", p.lastReq.Image.Filename)
	assert.Equal(t, "hello.mp3", p.lastReq.Audio.Filename)
}

func TestInputEmptyTranscriptStillSucceeds(t *testing.T) {
	p := &fakeProcessor{result: &ingest.Result{
		Message:        ingest.SuccessMessage,
		TranslatedText: "",
	}}
	h := NewIngestHandler(p, 0)

	rec := httptest.NewRecorder()
	h.Input(rec, multipartUpload(t, map[string][]byte{
		"image": []byte("i"), "audio": []byte("a"),
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "", body["translated_text"])
}

func TestInputTranscriptionFaultReturns200Envelope(t *testing.T) {
	p := &fakeProcessor{result: &ingest.Result{
		TranscriptionErr: &stt.TranscriptionError{Provider: "whisper", Err: errors.New("cannot decode audio")},
	}}
	h := NewIngestHandler(p, 0)

	rec := httptest.NewRecorder()
	h.Input(rec, multipartUpload(t, map[string][]byte{
		"image": []byte("i"), "audio": []byte("a"),
	}))

	// The pre-existing client contract: failure travels in the body, not the
	// status code.
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "Error processing audio:")
	assert.Contains(t, body["error"], "cannot decode audio")
	assert.NotContains(t, body, "message")
}

func TestInputStorageFaultReturns500(t *testing.T) {
	p := &fakeProcessor{err: errors.New("store transcript: pinecone: index unreachable")}
	h := NewIngestHandler(p, 0)

	rec := httptest.NewRecorder()
	h.Input(rec, multipartUpload(t, map[string][]byte{
		"image": []byte("i"), "audio": []byte("a"),
	}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "index unreachable")
}

func TestInputInvalidFilenameReturns400(t *testing.T) {
	p := &fakeProcessor{err: ingest.ErrInvalidFilename}
	h := NewIngestHandler(p, 0)

	rec := httptest.NewRecorder()
	h.Input(rec, multipartUpload(t, map[string][]byte{
		"image": []byte("i"), "audio": []byte("a"),
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInputMissingPartsRejectedAtBoundary(t *testing.T) {
	tests := []struct {
		name  string
		parts map[string][]byte
	}{
		{"missing audio", map[string][]byte{"image": []byte("i")}},
		{"missing image", map[string][]byte{"audio": []byte("a")}},
		{"missing both", map[string][]byte{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProcessor{result: &ingest.Result{Message: ingest.SuccessMessage}}
			h := NewIngestHandler(p, 0)

			rec := httptest.NewRecorder()
			h.Input(rec, multipartUpload(t, tc.parts))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, p.calls, "pipeline must not run without both parts")
		})
	}
}

func TestInputNonMultipartRejected(t *testing.T) {
	p := &fakeProcessor{}
	h := NewIngestHandler(p, 0)

	req := httptest.NewRequest("POST", "/api/input", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.Input(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, p.calls)
}
