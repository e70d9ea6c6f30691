package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
)

// stubEmbedder returns fixed-size vectors and records batch calls.
type stubEmbedder struct {
	mu         sync.Mutex
	queryVec   []float32
	batchErr   error
	batchCalls int
	batchSizes []int
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.queryVec != nil {
		return s.queryVec, nil
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchCalls++
	s.batchSizes = append(s.batchSizes, len(texts))
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimensions() int              { return 2 }
func (s *stubEmbedder) ModelName() string            { return "stub-embed" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error                 { return nil }

// stubExtractors treats every payload as plain text.
type stubExtractors struct {
	err error
}

var _ driven.ExtractorRegistry = (*stubExtractors)(nil)

func (s *stubExtractors) Extract(_ context.Context, data []byte, _, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return string(data), nil
}

// stubLexical records index membership and serves canned hits.
type stubLexical struct {
	mu      sync.Mutex
	indexed map[string]bool
	hits    []driven.KeywordHit
}

var _ driven.LexicalIndex = (*stubLexical)(nil)

func newStubLexical() *stubLexical {
	return &stubLexical{indexed: make(map[string]bool)}
}

func (s *stubLexical) Index(_ context.Context, chunk domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexed[chunk.ID] = true
	return nil
}

func (s *stubLexical) IndexAll(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.indexed[chunk.ID] = true
	}
	return nil
}

func (s *stubLexical) Delete(_ context.Context, chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexed, chunkID)
	return nil
}

func (s *stubLexical) Search(_ context.Context, _, _ string, _ int) ([]driven.KeywordHit, error) {
	return s.hits, nil
}

func (s *stubLexical) Close() error { return nil }

func (s *stubLexical) indexedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.indexed)
}

var errProvider = fmt.Errorf("provider unavailable")
