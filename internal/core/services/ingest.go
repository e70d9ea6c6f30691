package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
	"github.com/cartalabs/carta/internal/core/ports/driving"
	"github.com/cartalabs/carta/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService registers uploads and purges files. Processing itself
// belongs to the Processor; ingestion only creates the pending record
// and retains the payload.
type IngestService struct {
	files   driven.FileStore
	chunks  driven.ChunkStore
	blobs   driven.BlobStore
	lexical driven.LexicalIndex
}

// NewIngestService creates an ingest service.
func NewIngestService(
	files driven.FileStore,
	chunks driven.ChunkStore,
	blobs driven.BlobStore,
	lexical driven.LexicalIndex,
) *IngestService {
	return &IngestService{
		files:   files,
		chunks:  chunks,
		blobs:   blobs,
		lexical: lexical,
	}
}

// Register creates a pending SourceFile and stores its payload.
func (s *IngestService) Register(
	ctx context.Context, roomID, name, mimeType string, data []byte,
) (*domain.SourceFile, error) {
	if roomID == "" || name == "" {
		return nil, fmt.Errorf("%w: room ID and name are required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	file := &domain.SourceFile{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		Name:      name,
		Size:      int64(len(data)),
		MimeType:  mimeType,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.blobs.Put(ctx, file.ID, data); err != nil {
		return nil, fmt.Errorf("store payload: %w", err)
	}
	if err := s.files.Save(ctx, file); err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}

	logger.Info("Registered %s (%d bytes, %s) as %s", name, len(data), mimeType, file.ID)
	return file, nil
}

// Purge deletes a file, its payload, its chunks and its index entries.
func (s *IngestService) Purge(ctx context.Context, fileID string) error {
	chunks, err := s.chunks.ListByFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}

	for _, chunk := range chunks {
		if err := s.lexical.Delete(ctx, chunk.ID); err != nil {
			logger.Warn("deindex chunk %s: %v", chunk.ID, err)
		}
	}

	if err := s.chunks.DeleteByFile(ctx, fileID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := s.blobs.Delete(ctx, fileID); err != nil {
		logger.Warn("delete payload %s: %v", fileID, err)
	}
	if err := s.files.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	logger.Info("Purged file %s (%d chunks)", fileID, len(chunks))
	return nil
}
