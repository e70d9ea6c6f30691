package memory

import (
	"context"
	"sync"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores the payload for a file.
func (s *BlobStore) Put(_ context.Context, fileID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.blobs[fileID] = buf
	return nil
}

// Get retrieves the payload for a file.
func (s *BlobStore) Get(_ context.Context, fileID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// Delete removes the payload.
func (s *BlobStore) Delete(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, fileID)
	return nil
}
