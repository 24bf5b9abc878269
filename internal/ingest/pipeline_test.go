package ingest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicevault/backend/internal/stt"
	"github.com/voicevault/backend/internal/vectorstore"
)

type fakeTranslator struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranslator) Name() string { return "fake" }

func (f *fakeTranslator) Translate(ctx context.Context, req stt.TranslationRequest) (*stt.TranslationResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &stt.TranslationResponse{Text: f.text}, nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text))}, nil
}

type fakeStore struct {
	err     error
	upserts [][]vectorstore.Record
}

func (f *fakeStore) Upsert(ctx context.Context, records []vectorstore.Record) error {
	f.upserts = append(f.upserts, records)
	return f.err
}

func (f *fakeStore) Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error) {
	return nil, nil
}

func newTestPipeline(t *testing.T, tr *fakeTranslator, store *fakeStore) *Pipeline {
	t.Helper()
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)
	return NewPipeline(stager, tr, &fakeEmbedder{}, store)
}

func uploadReq() UploadRequest {
	return UploadRequest{
		Image: FilePart{Filename: "cat.png", Data: bytes.NewReader([]byte("png-bytes"))},
		Audio: FilePart{Filename: "hello.mp3", Data: bytes.NewReader([]byte("mp3-bytes"))},
	}
}

func TestProcessStoresNonEmptyTranscript(t *testing.T) {
	tr := &fakeTranslator{text: "Hello, how are you?"}
	store := &fakeStore{}
	p := newTestPipeline(t, tr, store)

	result, err := p.Process(context.Background(), uploadReq())
	require.NoError(t, err)

	assert.Equal(t, SuccessMessage, result.Message)
	assert.Equal(t, "Hello, how are you?", result.TranslatedText)
	assert.Nil(t, result.TranscriptionErr)

	require.Len(t, store.upserts, 1)
	require.Len(t, store.upserts[0], 1)
	rec := store.upserts[0][0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Hello, how are you?", rec.Metadata["text"])
}

func TestProcessGeneratesUniqueRecordIDs(t *testing.T) {
	tr := &fakeTranslator{text: "same text"}
	store := &fakeStore{}
	p := newTestPipeline(t, tr, store)

	_, err := p.Process(context.Background(), uploadReq())
	require.NoError(t, err)
	_, err = p.Process(context.Background(), uploadReq())
	require.NoError(t, err)

	require.Len(t, store.upserts, 2)
	assert.NotEqual(t, store.upserts[0][0].ID, store.upserts[1][0].ID)
}

func TestProcessSkipsStoreOnEmptyTranscript(t *testing.T) {
	tr := &fakeTranslator{text: ""}
	store := &fakeStore{}
	p := newTestPipeline(t, tr, store)

	result, err := p.Process(context.Background(), uploadReq())
	require.NoError(t, err)

	assert.Equal(t, SuccessMessage, result.Message)
	assert.Equal(t, "", result.TranslatedText)
	assert.Empty(t, store.upserts)
}

func TestProcessRecoversTranscriptionFailure(t *testing.T) {
	cause := &stt.TranscriptionError{Provider: "fake", Err: errors.New("cannot decode audio")}
	tr := &fakeTranslator{err: cause}
	store := &fakeStore{}
	p := newTestPipeline(t, tr, store)

	result, err := p.Process(context.Background(), uploadReq())
	require.NoError(t, err)

	require.NotNil(t, result.TranscriptionErr)
	assert.Contains(t, result.TranscriptionErr.Error(), "cannot decode audio")
	assert.Empty(t, store.upserts, "no storage call after a transcription fault")
}

func TestProcessPropagatesStorageFailure(t *testing.T) {
	tr := &fakeTranslator{text: "some text"}
	store := &fakeStore{err: &vectorstore.StorageError{Backend: "fake", Err: errors.New("index unreachable")}}
	p := newTestPipeline(t, tr, store)

	_, err := p.Process(context.Background(), uploadReq())
	require.Error(t, err)

	var storageErr *vectorstore.StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestProcessRejectsTraversalFilenames(t *testing.T) {
	tr := &fakeTranslator{text: "x"}
	store := &fakeStore{}
	p := newTestPipeline(t, tr, store)

	req := uploadReq()
	req.Audio.Filename = "../../etc/cron.mp3"

	_, err := p.Process(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidFilename)
	assert.Zero(t, tr.calls)
}
