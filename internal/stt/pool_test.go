package stt

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowTranslator struct {
	active  atomic.Int64
	peak    atomic.Int64
	release chan struct{}
}

func (s *slowTranslator) Name() string { return "slow" }

func (s *slowTranslator) Translate(ctx context.Context, req TranslationRequest) (*TranslationResponse, error) {
	n := s.active.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	<-s.release
	s.active.Add(-1)
	return &TranslationResponse{Text: "ok"}, nil
}

func TestPoolBoundsConcurrency(t *testing.T) {
	inner := &slowTranslator{release: make(chan struct{})}
	pool := NewPool(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Translate(context.Background(), TranslationRequest{FilePath: "x"})
			assert.NoError(t, err)
		}()
	}

	// Let the first batch occupy the pool before releasing anyone.
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.LessOrEqual(t, inner.peak.Load(), int64(2))
}

func TestPoolHonorsContextWhileWaiting(t *testing.T) {
	inner := &slowTranslator{release: make(chan struct{})}
	defer close(inner.release)

	pool := NewPool(inner, 1)

	// Occupy the only slot.
	go pool.Translate(context.Background(), TranslationRequest{FilePath: "x"})
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pool.Translate(ctx, TranslationRequest{FilePath: "y"})
	require.Error(t, err)

	var terr *TranscriptionError
	assert.ErrorAs(t, err, &terr)
}

func TestPoolDefaultsToOneWorker(t *testing.T) {
	pool := NewPool(&slowTranslator{release: make(chan struct{})}, 0)
	require.NotNil(t, pool)
	assert.Equal(t, "slow", pool.Name())
}
