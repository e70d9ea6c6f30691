package driven

import (
	"context"
	"time"

	"github.com/cartalabs/carta/internal/core/domain"
)

// FileStore persists SourceFile records and their processing state.
type FileStore interface {
	// Save stores or updates a file record.
	Save(ctx context.Context, file *domain.SourceFile) error

	// Get retrieves a file by ID. Returns domain.ErrNotFound when the
	// file does not exist.
	Get(ctx context.Context, id string) (*domain.SourceFile, error)

	// List returns all files in a room, newest first.
	List(ctx context.Context, roomID string) ([]domain.SourceFile, error)

	// ListUnfinished returns files in any room that are not in a
	// terminal status, oldest first. Used by the processing pump.
	ListUnfinished(ctx context.Context) ([]domain.SourceFile, error)

	// Delete removes a file record. Chunk removal cascades.
	Delete(ctx context.Context, id string) error

	// Claim atomically acquires the processing claim for a file on
	// behalf of worker, valid for ttl. It succeeds when the file is
	// unclaimed or the previous claim has expired; otherwise it
	// returns domain.ErrFileClaimed. No mutation of processing state
	// may happen without a live claim.
	Claim(ctx context.Context, id, worker string, ttl time.Duration) error

	// Release drops the claim held by worker. Releasing a claim that
	// is no longer held is not an error.
	Release(ctx context.Context, id, worker string) error
}
