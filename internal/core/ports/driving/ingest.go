package driving

import (
	"context"

	"github.com/cartalabs/carta/internal/core/domain"
)

// Ingestor registers uploads and removes files from the system.
type Ingestor interface {
	// Register creates a pending SourceFile for the payload. The
	// payload bytes are retained until processing extracts them.
	Register(ctx context.Context, roomID, name, mimeType string, data []byte) (*domain.SourceFile, error)

	// Purge deletes a file, its chunks and its index entries.
	Purge(ctx context.Context, fileID string) error
}
