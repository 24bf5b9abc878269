package vectorstore

import (
	"context"
	"fmt"
)

// Record is one stored transcript vector. Metadata carries the original text
// verbatim under the "text" key.
type Record struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Match is one similarity-search hit.
type Match struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Store is the interface for vector index backends.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}

// StorageError wraps any fault raised by a Store. The upload pipeline does not
// recover these; they propagate to the HTTP layer.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
