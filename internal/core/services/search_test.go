package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartalabs/carta/internal/adapters/driven/storage/memory"
	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
)

func seedSearchChunks(t *testing.T, store *memory.ChunkStore, chunks []domain.Chunk) {
	t.Helper()
	require.NoError(t, store.SaveAll(context.Background(), chunks))
}

func TestSearchFusesScores(t *testing.T) {
	chunks := memory.NewChunkStore()
	lexical := newStubLexical()
	// Query vector is (1, 0); this embedding sits at cosine 0.9.
	seedSearchChunks(t, chunks, []domain.Chunk{
		{ID: "c1", RoomID: "r1", FileName: "a.txt", Content: "alpha", Embedding: []float32{0.9, 0.43589}},
	})
	lexical.hits = []driven.KeywordHit{{ChunkID: "c1", Score: 1.5}}

	svc := NewSearchService(chunks, lexical, &stubEmbedder{queryVec: []float32{1, 0}})
	results, err := svc.Search(context.Background(), "alpha", domain.SearchOptions{RoomID: "r1"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.InDelta(t, 0.9, r.Similarity, 1e-3)
	assert.InDelta(t, 1.5, r.KeywordRank, 1e-9)
	// 0.9*0.6 + 1.5*0.4 with the default weights.
	assert.InDelta(t, 0.54+0.6, r.CombinedScore, 1e-3)
}

func TestSearchKeywordOnlyQualifies(t *testing.T) {
	chunks := memory.NewChunkStore()
	lexical := newStubLexical()
	// Orthogonal embedding: similarity 0, below the threshold.
	seedSearchChunks(t, chunks, []domain.Chunk{
		{ID: "c1", RoomID: "r1", Content: "exact phrase", Embedding: []float32{0, 1}},
	})
	lexical.hits = []driven.KeywordHit{{ChunkID: "c1", Score: 2.0}}

	svc := NewSearchService(chunks, lexical, &stubEmbedder{queryVec: []float32{1, 0}})
	results, err := svc.Search(context.Background(), "exact phrase", domain.SearchOptions{RoomID: "r1"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 2.0*domain.DefaultKeywordWeight, results[0].CombinedScore, 1e-9)
}

func TestSearchDropsBelowThresholdWithoutKeywordHit(t *testing.T) {
	chunks := memory.NewChunkStore()
	// Cosine 0.1 against (1, 0), under the default 0.2 threshold.
	seedSearchChunks(t, chunks, []domain.Chunk{
		{ID: "c1", RoomID: "r1", Content: "weak", Embedding: []float32{0.1, 0.99499}},
	})

	svc := NewSearchService(chunks, newStubLexical(), &stubEmbedder{queryVec: []float32{1, 0}})
	results, err := svc.Search(context.Background(), "weak", domain.SearchOptions{RoomID: "r1"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchNegativeThresholdKeepsWeakMatches(t *testing.T) {
	chunks := memory.NewChunkStore()
	// Cosine 0.1, filtered by the default threshold but not by a
	// disabled one.
	seedSearchChunks(t, chunks, []domain.Chunk{
		{ID: "c1", RoomID: "r1", Content: "weak", Embedding: []float32{0.1, 0.99499}},
	})

	svc := NewSearchService(chunks, newStubLexical(), &stubEmbedder{queryVec: []float32{1, 0}})
	results, err := svc.Search(context.Background(), "weak", domain.SearchOptions{RoomID: "r1", Threshold: -1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChunkID)
}

func TestSearchExcludesUnembeddedChunks(t *testing.T) {
	chunks := memory.NewChunkStore()
	lexical := newStubLexical()
	// c2 has no embedding yet. A keyword hit on it must not surface.
	seedSearchChunks(t, chunks, []domain.Chunk{
		{ID: "c1", RoomID: "r1", Content: "ready", Embedding: []float32{1, 0}},
		{ID: "c2", RoomID: "r1", Content: "pending"},
	})
	lexical.hits = []driven.KeywordHit{
		{ChunkID: "c2", Score: 5.0},
		{ChunkID: "c1", Score: 0.5},
	}

	svc := NewSearchService(chunks, lexical, &stubEmbedder{queryVec: []float32{1, 0}})
	results, err := svc.Search(context.Background(), "ready", domain.SearchOptions{RoomID: "r1"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChunkID)
}

func TestSearchOrdersAndTruncates(t *testing.T) {
	chunks := memory.NewChunkStore()
	seedSearchChunks(t, chunks, []domain.Chunk{
		{ID: "c1", RoomID: "r1", Content: "best", Embedding: []float32{1, 0}},
		{ID: "c2", RoomID: "r1", Content: "good", Embedding: []float32{0.9, 0.43589}},
		{ID: "c3", RoomID: "r1", Content: "fair", Embedding: []float32{0.5, 0.86603}},
	})

	svc := NewSearchService(chunks, newStubLexical(), &stubEmbedder{queryVec: []float32{1, 0}})
	results, err := svc.Search(context.Background(), "anything", domain.SearchOptions{RoomID: "r1", TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.Equal(t, "c2", results[1].ChunkID)
	assert.Greater(t, results[0].CombinedScore, results[1].CombinedScore)
}

func TestSearchScopedToRoom(t *testing.T) {
	chunks := memory.NewChunkStore()
	seedSearchChunks(t, chunks, []domain.Chunk{
		{ID: "c1", RoomID: "r1", Content: "mine", Embedding: []float32{1, 0}},
		{ID: "c2", RoomID: "r2", Content: "theirs", Embedding: []float32{1, 0}},
	})

	svc := NewSearchService(chunks, newStubLexical(), &stubEmbedder{queryVec: []float32{1, 0}})
	results, err := svc.Search(context.Background(), "mine", domain.SearchOptions{RoomID: "r1"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChunkID)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := NewSearchService(memory.NewChunkStore(), newStubLexical(), &stubEmbedder{})
	results, err := svc.Search(context.Background(), "   ", domain.SearchOptions{RoomID: "r1"})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchRequiresRoom(t *testing.T) {
	svc := NewSearchService(memory.NewChunkStore(), newStubLexical(), &stubEmbedder{})
	_, err := svc.Search(context.Background(), "query", domain.SearchOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchWithoutEmbedder(t *testing.T) {
	svc := NewSearchService(memory.NewChunkStore(), newStubLexical(), nil)
	_, err := svc.Search(context.Background(), "query", domain.SearchOptions{RoomID: "r1"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, CosineSimilarity(nil, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}
