package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hello.mp3")
	require.NoError(t, os.WriteFile(path, []byte("fake-audio-bytes"), 0o644))
	return path
}

func TestWhisperTranslateSendsMultipart(t *testing.T) {
	var gotPath, gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "hello.mp3", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "Hello, how are you?", "language": "en", "duration": 2.5}`))
	}))
	defer srv.Close()

	client := NewWhisperClient(WhisperConfig{APIKey: "sk-test", BaseURL: srv.URL})

	resp, err := client.Translate(context.Background(), TranslationRequest{FilePath: writeTempAudio(t)})
	require.NoError(t, err)

	assert.Equal(t, "/audio/translations", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "Hello, how are you?", resp.Text)
	assert.Equal(t, "en", resp.Language)
	assert.InDelta(t, 2.5, resp.Duration, 0.001)
}

func TestWhisperTranslateWrapsServerFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "unsupported audio format"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewWhisperClient(WhisperConfig{BaseURL: srv.URL})

	_, err := client.Translate(context.Background(), TranslationRequest{FilePath: writeTempAudio(t)})
	require.Error(t, err)

	var terr *TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Error(), "unsupported audio format")
}

func TestWhisperTranslateWrapsUnreadablePath(t *testing.T) {
	client := NewWhisperClient(WhisperConfig{BaseURL: "http://localhost:0"})

	_, err := client.Translate(context.Background(), TranslationRequest{FilePath: "/nonexistent/audio.mp3"})

	var terr *TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalDefaultsAndName(t *testing.T) {
	l := NewLocal(LocalConfig{})
	assert.Equal(t, "local-whisper", l.Name())
	assert.Equal(t, "http://localhost:8178", l.WhisperClient.cfg.BaseURL)
}
