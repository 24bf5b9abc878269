package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorStore keeps transcript vectors in Postgres with the pgvector
// extension. Alternative backend to Pinecone for deployments that already run
// Postgres.
type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) Upsert(ctx context.Context, records []Record) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &StorageError{Backend: "pgvector", Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		embedding := pgvector.NewVector(rec.Values)

		_, err := tx.Exec(ctx,
			`INSERT INTO transcripts (id, embedding, metadata)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET embedding = $2, metadata = $3`,
			rec.ID, embedding, rec.Metadata,
		)
		if err != nil {
			return &StorageError{Backend: "pgvector", Err: fmt.Errorf("upsert record %s: %w", rec.ID, err)}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &StorageError{Backend: "pgvector", Err: fmt.Errorf("commit tx: %w", err)}
	}
	return nil
}

func (s *PgVectorStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 10
	}

	embedding := pgvector.NewVector(vector)

	rows, err := s.db.Query(ctx,
		`SELECT id, metadata,
		        1 - (embedding <=> $1) AS score
		 FROM transcripts
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		embedding, topK,
	)
	if err != nil {
		return nil, &StorageError{Backend: "pgvector", Err: fmt.Errorf("similarity search: %w", err)}
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Metadata, &m.Score); err != nil {
			return nil, &StorageError{Backend: "pgvector", Err: fmt.Errorf("scan match: %w", err)}
		}
		matches = append(matches, m)
	}
	return matches, nil
}
