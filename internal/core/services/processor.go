package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cartalabs/carta/internal/chunking"
	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
	"github.com/cartalabs/carta/internal/core/ports/driving"
	"github.com/cartalabs/carta/internal/logger"
)

// Ensure Processor implements the interface.
var _ driving.Processor = (*Processor)(nil)

// DefaultBatchSize is the number of chunks embedded per step.
const DefaultBatchSize = 20

// DefaultLeaseTTL is how long a processing claim stays valid.
const DefaultLeaseTTL = 2 * time.Minute

// ProcessorConfig holds explicit processor configuration. No values
// are read from ambient state.
type ProcessorConfig struct {
	// BatchSize caps the chunks embedded per step (default 20).
	BatchSize int

	// LeaseTTL is the claim duration for one step (default 2m).
	LeaseTTL time.Duration

	// Worker identifies this process in claims. Defaults to a random ID.
	Worker string
}

// withDefaults fills unset config fields.
func (c ProcessorConfig) withDefaults() ProcessorConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = DefaultLeaseTTL
	}
	if c.Worker == "" {
		c.Worker = "worker-" + uuid.New().String()[:8]
	}
	return c
}

// Processor is the embedding batch processor: a resumable state
// machine that chunks a file once, then embeds fixed-size batches
// until every chunk carries a vector. Each Step call performs one
// bounded unit of work under a per-file claim, so wall-clock time per
// invocation does not grow with document size and concurrent
// schedulers cannot corrupt progress counters.
type Processor struct {
	cfg        ProcessorConfig
	files      driven.FileStore
	chunks     driven.ChunkStore
	blobs      driven.BlobStore
	extractors driven.ExtractorRegistry
	embedder   driven.EmbeddingService
	lexical    driven.LexicalIndex
	chunker    *chunking.Chunker
	annotator  *chunking.Annotator
}

// NewProcessor creates a processor. The chunker and annotator carry
// their own configuration; everything else comes from cfg.
func NewProcessor(
	cfg ProcessorConfig,
	files driven.FileStore,
	chunks driven.ChunkStore,
	blobs driven.BlobStore,
	extractors driven.ExtractorRegistry,
	embedder driven.EmbeddingService,
	lexical driven.LexicalIndex,
	chunker *chunking.Chunker,
	annotator *chunking.Annotator,
) *Processor {
	return &Processor{
		cfg:        cfg.withDefaults(),
		files:      files,
		chunks:     chunks,
		blobs:      blobs,
		extractors: extractors,
		embedder:   embedder,
		lexical:    lexical,
		chunker:    chunker,
		annotator:  annotator,
	}
}

// Step performs one bounded unit of work for the file.
func (p *Processor) Step(ctx context.Context, fileID string) (*driving.Progress, error) {
	if err := p.files.Claim(ctx, fileID, p.cfg.Worker, p.cfg.LeaseTTL); err != nil {
		return nil, fmt.Errorf("claim file %s: %w", fileID, err)
	}
	defer func() {
		if err := p.files.Release(context.WithoutCancel(ctx), fileID, p.cfg.Worker); err != nil {
			logger.Warn("release claim on %s: %v", fileID, err)
		}
	}()

	file, err := p.files.Get(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}

	if file.Terminal() {
		return progressFor(file), nil
	}

	switch file.State().Phase {
	case domain.PhasePending, domain.PhaseChunking:
		err = p.chunkFile(ctx, file)
	default:
		err = p.embedBatch(ctx, file)
	}
	if err != nil {
		// Recorded failures stay on the file; only infrastructure
		// errors (claim, persistence of the failure itself) escape.
		return nil, err
	}

	return progressFor(file), nil
}

// Run drives the file to a terminal state.
func (p *Processor) Run(ctx context.Context, fileID string) (*driving.Progress, error) {
	for {
		progress, err := p.Step(ctx, fileID)
		if err != nil {
			return nil, err
		}
		if progress.Terminal {
			return progress, nil
		}
		if err := ctx.Err(); err != nil {
			return progress, err
		}
	}
}

// Reprocess resets a failed file so processing can start over.
func (p *Processor) Reprocess(ctx context.Context, fileID string) error {
	if err := p.files.Claim(ctx, fileID, p.cfg.Worker, p.cfg.LeaseTTL); err != nil {
		return fmt.Errorf("claim file %s: %w", fileID, err)
	}
	defer func() {
		if err := p.files.Release(context.WithoutCancel(ctx), fileID, p.cfg.Worker); err != nil {
			logger.Warn("release claim on %s: %v", fileID, err)
		}
	}()

	file, err := p.files.Get(ctx, fileID)
	if err != nil {
		return fmt.Errorf("get file %s: %w", fileID, err)
	}

	if err := file.ResetForReprocess(); err != nil {
		return err
	}

	// Drop chunks left over from the failed attempt; they will be
	// recreated by the next chunking pass.
	stale, err := p.chunks.ListByFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("list chunks for %s: %w", fileID, err)
	}
	for _, chunk := range stale {
		if err := p.lexical.Delete(ctx, chunk.ID); err != nil {
			logger.Warn("deindex chunk %s: %v", chunk.ID, err)
		}
	}
	if err := p.chunks.DeleteByFile(ctx, fileID); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", fileID, err)
	}

	if err := p.files.Save(ctx, file); err != nil {
		return fmt.Errorf("save file %s: %w", fileID, err)
	}

	logger.Info("File %s reset for reprocessing", fileID)
	return nil
}

// chunkFile is phase A: extract, chunk, annotate and bulk-insert the
// chunk rows without embeddings. It runs exactly once per file and
// does no embedding work, keeping the step bounded.
func (p *Processor) chunkFile(ctx context.Context, file *domain.SourceFile) error {
	logger.Section("Chunking " + file.Name)

	data, err := p.blobs.Get(ctx, file.ID)
	if err != nil {
		return p.fail(ctx, file, fmt.Sprintf("read payload: %v", err))
	}

	text, err := p.extractors.Extract(ctx, data, file.MimeType, file.Name)
	if err != nil {
		return p.fail(ctx, file, fmt.Sprintf("extract text: %v", err))
	}

	pieces := p.chunker.Chunk(text)
	pieces = p.annotator.Annotate(pieces, text)
	logger.Debug("Chunked %s into %d pieces", file.Name, len(pieces))

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:        uuid.New().String(),
			RoomID:    file.RoomID,
			FileID:    file.ID,
			FileName:  file.Name,
			Content:   piece,
			Position:  i,
			CreatedAt: now,
		}
	}

	if err := p.chunks.SaveAll(ctx, chunks); err != nil {
		return p.fail(ctx, file, fmt.Sprintf("persist chunks: %v", err))
	}

	// The lexical index stays in sync with chunk content from the
	// moment rows exist; retrieval eligibility is still gated on the
	// embedding at query time.
	if err := p.lexical.IndexAll(ctx, chunks); err != nil {
		return p.fail(ctx, file, fmt.Sprintf("index chunks: %v", err))
	}

	if err := file.MarkChunked(len(chunks)); err != nil {
		return err
	}
	if err := p.files.Save(ctx, file); err != nil {
		return fmt.Errorf("save file %s: %w", file.ID, err)
	}

	return nil
}

// embedBatch is phase B: embed up to BatchSize pending chunks in one
// provider request and record the progress.
func (p *Processor) embedBatch(ctx context.Context, file *domain.SourceFile) error {
	pending, err := p.chunks.ListUnembedded(ctx, file.ID, p.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("list pending chunks for %s: %w", file.ID, err)
	}

	if len(pending) == 0 {
		// Nothing left; reconcile the counters and complete.
		if err := file.AdvanceEmbedded(file.ChunkCount - file.ProcessedChunks); err != nil {
			return err
		}
		if err := p.files.Save(ctx, file); err != nil {
			return fmt.Errorf("save file %s: %w", file.ID, err)
		}
		logger.Info("File %s completed (%d chunks)", file.Name, file.ChunkCount)
		return nil
	}

	texts := make([]string, len(pending))
	for i, chunk := range pending {
		texts[i] = chunk.Content
	}

	logger.Debug("Embedding batch of %d for %s (%d/%d done)",
		len(pending), file.Name, file.ProcessedChunks, file.ChunkCount)

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		// Whole-batch failure: no partial assignment.
		return p.fail(ctx, file, fmt.Sprintf("embed batch: %v", err))
	}
	if len(vectors) != len(pending) {
		return p.fail(ctx, file, fmt.Sprintf("embed batch: got %d vectors for %d chunks", len(vectors), len(pending)))
	}

	for i, chunk := range pending {
		if err := p.chunks.SetEmbedding(ctx, chunk.ID, vectors[i]); err != nil {
			return p.fail(ctx, file, fmt.Sprintf("store embedding: %v", err))
		}
	}

	if err := file.AdvanceEmbedded(len(pending)); err != nil {
		return err
	}
	if err := p.files.Save(ctx, file); err != nil {
		return fmt.Errorf("save file %s: %w", file.ID, err)
	}

	if file.Status == domain.StatusCompleted {
		logger.Info("File %s completed (%d chunks)", file.Name, file.ChunkCount)
	}
	return nil
}

// fail records a terminal failure on the file. The pipeline error is
// not re-thrown past the processor boundary; callers discover it by
// polling file status. Persistence failure of the record itself does
// propagate.
func (p *Processor) fail(ctx context.Context, file *domain.SourceFile, reason string) error {
	logger.Warn("File %s failed: %s", file.ID, reason)
	file.MarkFailed(reason)
	if err := p.files.Save(ctx, file); err != nil {
		return fmt.Errorf("record failure for %s: %w", file.ID, err)
	}
	return nil
}

// progressFor builds the step report for a file.
func progressFor(file *domain.SourceFile) *driving.Progress {
	return &driving.Progress{
		FileID:   file.ID,
		State:    file.State(),
		Terminal: file.Terminal(),
	}
}
