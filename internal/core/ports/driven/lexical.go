package driven

import (
	"context"

	"github.com/cartalabs/carta/internal/core/domain"
)

// LexicalIndex provides keyword relevance over chunk content.
// The index is kept in sync with the chunk store: chunks are indexed
// at insert time and removed when their file is purged.
type LexicalIndex interface {
	// Index adds or updates a chunk in the index.
	Index(ctx context.Context, chunk domain.Chunk) error

	// IndexAll adds a batch of chunks in one operation.
	IndexAll(ctx context.Context, chunks []domain.Chunk) error

	// Delete removes a chunk from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search matches the query against chunk content in one room
	// using OR-of-significant-terms with phrase-aware parsing, and
	// returns matches with a monotonic relevance score (higher is
	// better, unbounded scale).
	Search(ctx context.Context, roomID, query string, limit int) ([]KeywordHit, error)

	// Close releases resources.
	Close() error
}

// KeywordHit is one lexical match.
type KeywordHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the relevance score (e.g., BM25-like).
	Score float64
}
