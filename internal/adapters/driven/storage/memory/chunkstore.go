package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string]domain.Chunk),
	}
}

// SaveAll bulk-inserts chunks.
func (s *ChunkStore) SaveAll(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// Get retrieves a chunk by ID.
func (s *ChunkStore) Get(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// ListByFile returns all chunks for a file ordered by position.
func (s *ChunkStore) ListByFile(_ context.Context, fileID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Chunk
	for id := range s.chunks {
		if s.chunks[id].FileID == fileID {
			result = append(result, s.chunks[id])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})
	return result, nil
}

// ListUnembedded returns pending chunks in insertion order.
func (s *ChunkStore) ListUnembedded(_ context.Context, fileID string, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Chunk
	for id := range s.chunks {
		chunk := s.chunks[id]
		if chunk.FileID == fileID && !chunk.Embedded() {
			result = append(result, chunk)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListEmbedded returns every embedded chunk in the room.
func (s *ChunkStore) ListEmbedded(_ context.Context, roomID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Chunk
	for id := range s.chunks {
		chunk := s.chunks[id]
		if chunk.RoomID == roomID && chunk.Embedded() {
			result = append(result, chunk)
		}
	}
	return result, nil
}

// SetEmbedding assigns a chunk's embedding vector.
func (s *ChunkStore) SetEmbedding(_ context.Context, chunkID string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunk, ok := s.chunks[chunkID]
	if !ok {
		return domain.ErrNotFound
	}
	chunk.Embedding = embedding
	s.chunks[chunkID] = chunk
	return nil
}

// DeleteByFile removes all chunks belonging to a file.
func (s *ChunkStore) DeleteByFile(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.chunks {
		if s.chunks[id].FileID == fileID {
			delete(s.chunks, id)
		}
	}
	return nil
}
