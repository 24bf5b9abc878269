package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Service turns text into a vector representation. With an API key it calls a
// real embedding model; without one it falls back to a single-element
// placeholder vector so the service still runs credential-free. The
// placeholder is not a usable embedding for similarity search and exists only
// to keep the write path exercisable.
type Service struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewService(apiKey, model string) *Service {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	s := &Service{model: openai.EmbeddingModel(model)}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	}
	return s
}

// EmbedSingle returns the vector for one text.
func (s *Service) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if s.client == nil {
		// Placeholder: length of the text as a 1-dim vector. TODO: drop this
		// path once every deployment configures an embedding key.
		return []float32{float32(len(text))}, nil
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: s.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}
