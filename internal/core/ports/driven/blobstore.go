package driven

import "context"

// BlobStore keeps raw uploaded payloads until extraction consumes
// them. Payloads are addressed by their file ID.
type BlobStore interface {
	// Put stores the payload for a file.
	Put(ctx context.Context, fileID string, data []byte) error

	// Get retrieves the payload for a file. Returns domain.ErrNotFound
	// when no payload exists.
	Get(ctx context.Context, fileID string) ([]byte, error)

	// Delete removes the payload.
	Delete(ctx context.Context, fileID string) error
}
