package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
	"github.com/cartalabs/carta/internal/core/ports/driving"
	"github.com/cartalabs/carta/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// fusedHit accumulates both score components for one chunk before the
// final ranking.
type fusedHit struct {
	chunk       domain.Chunk
	similarity  float64
	keywordRank float64
}

// SearchService answers queries with hybrid retrieval: cosine
// similarity over embedded chunks fused with keyword relevance from
// the lexical index. The two candidate sets are merged with a full
// outer union keyed by chunk ID, so a chunk can qualify on either
// signal alone.
type SearchService struct {
	chunks   driven.ChunkStore
	lexical  driven.LexicalIndex
	embedder driven.EmbeddingService
}

// NewSearchService creates a search service.
func NewSearchService(
	chunks driven.ChunkStore,
	lexical driven.LexicalIndex,
	embedder driven.EmbeddingService,
) *SearchService {
	return &SearchService{
		chunks:   chunks,
		lexical:  lexical,
		embedder: embedder,
	}
}

// Search performs hybrid search within one room.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q room=%s", query, opts.RoomID)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if opts.RoomID == "" {
		return nil, fmt.Errorf("%w: room ID is required", domain.ErrInvalidInput)
	}
	opts = opts.WithDefaults()

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Vector candidates: every embedded chunk in the room. Chunks
	// still awaiting their embedding never participate.
	candidates, err := s.chunks.ListEmbedded(ctx, opts.RoomID)
	if err != nil {
		return nil, fmt.Errorf("list embedded chunks: %w", err)
	}
	logger.Debug("Vector candidates: %d chunks", len(candidates))

	fused := make(map[string]*fusedHit, len(candidates))
	for i := range candidates {
		fused[candidates[i].ID] = &fusedHit{
			chunk:      candidates[i],
			similarity: CosineSimilarity(candidates[i].Embedding, queryVector),
		}
	}

	// Keyword candidates from the lexical index, restricted to the
	// embedded set by the outer-union membership check below.
	if s.lexical != nil {
		hits, err := s.lexical.Search(ctx, opts.RoomID, query, len(candidates)+opts.TopK)
		if err != nil {
			return nil, fmt.Errorf("keyword search: %w", err)
		}
		logger.Debug("Keyword candidates: %d hits", len(hits))

		for _, hit := range hits {
			entry, ok := fused[hit.ChunkID]
			if !ok {
				// Indexed but not yet embedded: excluded from results
				// regardless of keyword score.
				continue
			}
			entry.keywordRank = hit.Score
		}
	}

	results := make([]domain.SearchResult, 0, len(fused))
	for _, hit := range fused {
		if hit.similarity <= opts.Threshold && hit.keywordRank <= 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			ChunkID:       hit.chunk.ID,
			Content:       hit.chunk.Content,
			FileName:      hit.chunk.FileName,
			Similarity:    hit.similarity,
			KeywordRank:   hit.keywordRank,
			CombinedScore: hit.similarity*opts.VectorWeight + hit.keywordRank*opts.KeywordWeight,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}

	logger.Info("Search returned %d results", len(results))
	return results, nil
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
