package stt

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many translations run at once. Inference is the heavy step
// of every request; without a bound a burst of uploads would stack an
// unbounded number of model calls behind one backend.
type Pool struct {
	inner Translator
	sem   *semaphore.Weighted
}

// NewPool wraps a Translator with a concurrency limit. workers <= 0 defaults
// to 1.
func NewPool(inner Translator, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(workers)),
	}
}

func (p *Pool) Name() string { return p.inner.Name() }

// Translate acquires a worker slot, honoring ctx cancellation while waiting,
// then delegates. Sibling requests keep being served while a caller waits.
func (p *Pool) Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, &TranscriptionError{Provider: p.Name(), Err: err}
	}
	defer p.sem.Release(1)

	return p.inner.Translate(ctx, req)
}
