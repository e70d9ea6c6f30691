package driving

import (
	"context"

	"github.com/cartalabs/carta/internal/core/domain"
)

// Processor advances a file through the ingestion pipeline one bounded
// step at a time. The caller (CLI, watch pump, external scheduler)
// re-invokes Step until the file reports a terminal state.
type Processor interface {
	// Step performs one bounded unit of work for the file: the
	// one-time chunking pass, or one embedding batch. It is safe to
	// re-invoke; repeated calls make monotonic progress. Pipeline
	// failures are recorded on the file rather than returned; the
	// returned progress reflects the file after the step.
	Step(ctx context.Context, fileID string) (*Progress, error)

	// Run repeatedly invokes Step until the file reaches a terminal
	// state or the context is cancelled.
	Run(ctx context.Context, fileID string) (*Progress, error)

	// Reprocess resets a failed file to pending and purges any chunks
	// left from the failed attempt, so Step can start over.
	Reprocess(ctx context.Context, fileID string) error
}

// Progress reports a file's pipeline position after a processing step.
type Progress struct {
	// FileID identifies the file.
	FileID string

	// State is the explicit processing state.
	State domain.ProcessingState

	// Terminal is true when no further processing is needed.
	Terminal bool
}
