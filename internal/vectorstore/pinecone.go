package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PineconeConfig holds credentials and addressing for a Pinecone index.
type PineconeConfig struct {
	APIKey      string
	Environment string
	IndexHost   string // full index host URL; derived from index+environment when empty
	Index       string
	Namespace   string
}

// PineconeStore writes records to a Pinecone index over its REST API.
type PineconeStore struct {
	cfg        PineconeConfig
	baseURL    string
	httpClient *http.Client
}

func NewPineconeStore(cfg PineconeConfig) *PineconeStore {
	baseURL := cfg.IndexHost
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.svc.%s.pinecone.io", cfg.Index, cfg.Environment)
	}
	return &PineconeStore{
		cfg:     cfg,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *PineconeStore) Upsert(ctx context.Context, records []Record) error {
	body := struct {
		Vectors   []Record `json:"vectors"`
		Namespace string   `json:"namespace,omitempty"`
	}{Vectors: records, Namespace: s.cfg.Namespace}

	if err := s.post(ctx, "/vectors/upsert", body, nil); err != nil {
		return &StorageError{Backend: "pinecone", Err: err}
	}
	return nil
}

func (s *PineconeStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 10
	}

	body := struct {
		Vector          []float32 `json:"vector"`
		TopK            int       `json:"topK"`
		IncludeMetadata bool      `json:"includeMetadata"`
		Namespace       string    `json:"namespace,omitempty"`
	}{Vector: vector, TopK: topK, IncludeMetadata: true, Namespace: s.cfg.Namespace}

	var out struct {
		Matches []Match `json:"matches"`
	}
	if err := s.post(ctx, "/query", body, &out); err != nil {
		return nil, &StorageError{Backend: "pinecone", Err: err}
	}
	return out.Matches, nil
}

func (s *PineconeStore) post(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone %s failed (status %d): %s", path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
