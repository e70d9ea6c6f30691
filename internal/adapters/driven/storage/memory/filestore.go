// Package memory provides in-memory store adapters used by tests and
// ephemeral runs. All adapters are safe for concurrent use.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore is an in-memory implementation of driven.FileStore.
type FileStore struct {
	mu    sync.Mutex
	files map[string]domain.SourceFile

	// now is swappable for lease-expiry tests.
	now func() time.Time
}

// NewFileStore creates a new in-memory file store.
func NewFileStore() *FileStore {
	return &FileStore{
		files: make(map[string]domain.SourceFile),
		now:   time.Now,
	}
}

// SetClock overrides the store's clock. Useful for testing lease expiry.
func (s *FileStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Save stores or updates a file record.
func (s *FileStore) Save(_ context.Context, file *domain.SourceFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *file
	stored.UpdatedAt = s.now().UTC()
	// Claim fields are owned by Claim/Release, not by Save.
	if existing, ok := s.files[file.ID]; ok {
		stored.LockedBy = existing.LockedBy
		stored.LeaseExpiry = existing.LeaseExpiry
	}
	s.files[file.ID] = stored
	return nil
}

// Get retrieves a file by ID.
func (s *FileStore) Get(_ context.Context, id string) (*domain.SourceFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, ok := s.files[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &file, nil
}

// List returns all files in a room, newest first.
func (s *FileStore) List(_ context.Context, roomID string) ([]domain.SourceFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.SourceFile
	for id := range s.files {
		if s.files[id].RoomID == roomID {
			result = append(result, s.files[id])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// ListUnfinished returns non-terminal files, oldest first.
func (s *FileStore) ListUnfinished(_ context.Context) ([]domain.SourceFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.SourceFile
	for id := range s.files {
		file := s.files[id]
		if !file.Terminal() {
			result = append(result, file)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Delete removes a file record.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, id)
	return nil
}

// Claim atomically acquires the processing claim for a file.
func (s *FileStore) Claim(_ context.Context, id, worker string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return domain.ErrNotFound
	}

	now := s.now()
	if file.LockedBy != "" && file.LockedBy != worker && file.LeaseExpiry.After(now) {
		return domain.ErrFileClaimed
	}

	file.LockedBy = worker
	file.LeaseExpiry = now.Add(ttl)
	s.files[id] = file
	return nil
}

// Release drops the claim held by worker.
func (s *FileStore) Release(_ context.Context, id, worker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok {
		return nil
	}
	if file.LockedBy != worker {
		return nil
	}

	file.LockedBy = ""
	file.LeaseExpiry = time.Time{}
	s.files[id] = file
	return nil
}
