package driven

import (
	"context"

	"github.com/cartalabs/carta/internal/core/domain"
)

// ChunkStore persists chunks. Chunks are inserted in bulk without
// embeddings, then each receives its embedding exactly once.
type ChunkStore interface {
	// SaveAll bulk-inserts chunks for a file.
	SaveAll(ctx context.Context, chunks []domain.Chunk) error

	// Get retrieves a chunk by ID.
	Get(ctx context.Context, id string) (*domain.Chunk, error)

	// ListByFile returns all chunks for a file ordered by position.
	ListByFile(ctx context.Context, fileID string) ([]domain.Chunk, error)

	// ListUnembedded returns up to limit chunks of the file that have
	// no embedding yet, in stable insertion order. Repeated calls after
	// embedding assignment cover every chunk without gaps or repeats.
	ListUnembedded(ctx context.Context, fileID string, limit int) ([]domain.Chunk, error)

	// ListEmbedded returns every chunk in the room that has an
	// embedding. These are the retrieval candidates.
	ListEmbedded(ctx context.Context, roomID string) ([]domain.Chunk, error)

	// SetEmbedding assigns a chunk's embedding vector.
	SetEmbedding(ctx context.Context, chunkID string, embedding []float32) error

	// DeleteByFile removes all chunks belonging to a file.
	DeleteByFile(ctx context.Context, fileID string) error
}
