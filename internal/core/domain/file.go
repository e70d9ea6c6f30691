package domain

import (
	"fmt"
	"time"
)

// ProcessingStatus is the persisted lifecycle status of a SourceFile.
type ProcessingStatus string

// Processing statuses.
const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// SourceFile represents one uploaded artifact moving through the
// ingestion pipeline. It is created on upload and mutated only by the
// batch processor until it reaches a terminal status.
type SourceFile struct {
	// ID is the unique identifier for the file.
	ID string

	// RoomID scopes the file to a single tenant room.
	RoomID string

	// Name is the human-readable display name (usually the filename).
	Name string

	// Size is the uploaded payload size in bytes.
	Size int64

	// MimeType is the declared content type of the upload.
	MimeType string

	// Status is the persisted processing status.
	Status ProcessingStatus

	// ChunkCount is the total number of chunks produced for this file.
	// Zero until the chunking pass has run; set exactly once.
	ChunkCount int

	// ProcessedChunks counts chunks that have an embedding assigned.
	// Never decreases; ProcessedChunks <= ChunkCount always holds.
	ProcessedChunks int

	// ErrorMessage holds the human-readable failure reason when Status
	// is StatusFailed.
	ErrorMessage string

	// LockedBy identifies the worker currently holding the processing
	// claim for this file. Empty when unclaimed.
	LockedBy string

	// LeaseExpiry is when the current claim lapses. A claim past its
	// expiry may be taken over by another worker.
	LeaseExpiry time.Time

	// CreatedAt is when the file was uploaded.
	CreatedAt time.Time

	// UpdatedAt is when the file record last changed.
	UpdatedAt time.Time
}

// Phase is the explicit processing phase of a file. It replaces
// inference from field combinations (chunk_count==0 meaning "not yet
// chunked") with a single derivation.
type Phase int

// Processing phases.
const (
	// PhasePending means the file is uploaded but untouched.
	PhasePending Phase = iota

	// PhaseChunking means processing has started but chunks have not
	// been produced yet.
	PhaseChunking

	// PhaseEmbedding means chunks exist and embedding is in progress.
	PhaseEmbedding

	// PhaseCompleted means every chunk has an embedding.
	PhaseCompleted

	// PhaseFailed means processing stopped with a recorded reason.
	PhaseFailed
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseChunking:
		return "chunking"
	case PhaseEmbedding:
		return "embedding"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProcessingState is the tagged state of a file's pipeline progress.
type ProcessingState struct {
	// Phase is the current phase.
	Phase Phase

	// Processed is the number of embedded chunks (PhaseEmbedding only).
	Processed int

	// Total is the expected chunk count (PhaseEmbedding only).
	Total int

	// Reason is the failure message (PhaseFailed only).
	Reason string
}

// State derives the explicit processing state from the persisted
// fields. It is the single place field combinations are interpreted.
func (f *SourceFile) State() ProcessingState {
	switch {
	case f.Status == StatusFailed:
		return ProcessingState{Phase: PhaseFailed, Reason: f.ErrorMessage}
	case f.Status == StatusCompleted:
		return ProcessingState{Phase: PhaseCompleted, Processed: f.ProcessedChunks, Total: f.ChunkCount}
	case f.Status == StatusProcessing && f.ChunkCount == 0:
		return ProcessingState{Phase: PhaseChunking}
	case f.Status == StatusProcessing:
		return ProcessingState{Phase: PhaseEmbedding, Processed: f.ProcessedChunks, Total: f.ChunkCount}
	default:
		return ProcessingState{Phase: PhasePending}
	}
}

// Terminal reports whether the file needs no further processing.
func (f *SourceFile) Terminal() bool {
	return f.Status == StatusCompleted || f.Status == StatusFailed
}

// MarkChunked records the outcome of the one-time chunking pass.
// The chunk count may be set exactly once.
func (f *SourceFile) MarkChunked(count int) error {
	if f.ChunkCount != 0 {
		return fmt.Errorf("%w: chunk count already set to %d", ErrInvalidTransition, f.ChunkCount)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative chunk count %d", ErrInvalidInput, count)
	}
	f.ChunkCount = count
	f.ProcessedChunks = 0
	if count == 0 {
		// Nothing to embed: an empty document completes immediately.
		f.Status = StatusCompleted
	} else {
		f.Status = StatusProcessing
	}
	return nil
}

// AdvanceEmbedded records that n more chunks received embeddings.
// Progress is monotonic; completing the last chunk flips the status.
func (f *SourceFile) AdvanceEmbedded(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative progress %d", ErrInvalidInput, n)
	}
	if f.ProcessedChunks+n > f.ChunkCount {
		return fmt.Errorf("%w: %d processed of %d total", ErrInvalidTransition, f.ProcessedChunks+n, f.ChunkCount)
	}
	f.ProcessedChunks += n
	if f.ProcessedChunks == f.ChunkCount && f.ChunkCount > 0 {
		f.Status = StatusCompleted
	}
	return nil
}

// MarkFailed records a terminal failure with a human-readable reason.
// The file is not retried automatically; reprocessing must be explicit.
func (f *SourceFile) MarkFailed(reason string) {
	f.Status = StatusFailed
	f.ErrorMessage = reason
}

// ResetForReprocess returns a failed file to the pending state so the
// processor can pick it up again from scratch.
func (f *SourceFile) ResetForReprocess() error {
	if f.Status != StatusFailed {
		return fmt.Errorf("%w: cannot reprocess file in status %q", ErrInvalidTransition, f.Status)
	}
	f.Status = StatusPending
	f.ChunkCount = 0
	f.ProcessedChunks = 0
	f.ErrorMessage = ""
	return nil
}
