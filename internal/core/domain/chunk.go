package domain

import "time"

// Chunk represents one retrievable unit of a SourceFile. Chunks are
// created in bulk right after chunking with a nil embedding, then each
// receives its embedding exactly once. Only chunks with an embedding
// are eligible for retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// RoomID scopes the chunk to the same tenant room as its file.
	RoomID string

	// FileID links to the owning SourceFile.
	FileID string

	// FileName is the display name inherited from the file.
	FileName string

	// Content is the normalised, heading-annotated chunk text.
	Content string

	// Position is the ordinal position within the file.
	Position int

	// Embedding is the vector representation. Nil until assigned.
	Embedding []float32

	// CreatedAt is when the chunk row was created.
	CreatedAt time.Time
}

// Embedded reports whether the chunk has received its vector and is
// therefore eligible for retrieval.
func (c *Chunk) Embedded() bool {
	return len(c.Embedding) > 0
}
