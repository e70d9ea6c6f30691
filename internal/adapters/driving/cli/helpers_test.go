package cli

import (
	"context"

	"github.com/cartalabs/carta/internal/adapters/driven/storage/memory"
	"github.com/cartalabs/carta/internal/chunking"
	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
	"github.com/cartalabs/carta/internal/core/services"
)

// fakeEmbedder satisfies the embedding port without network access.
type fakeEmbedder struct{}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func (fakeEmbedder) Dimensions() int              { return 2 }
func (fakeEmbedder) ModelName() string            { return "fake-embed" }
func (fakeEmbedder) Ping(_ context.Context) error { return nil }
func (fakeEmbedder) Close() error                 { return nil }

// fakeLexical is a no-hit keyword index.
type fakeLexical struct{}

var _ driven.LexicalIndex = (*fakeLexical)(nil)

func (fakeLexical) Index(_ context.Context, _ domain.Chunk) error      { return nil }
func (fakeLexical) IndexAll(_ context.Context, _ []domain.Chunk) error { return nil }
func (fakeLexical) Delete(_ context.Context, _ string) error           { return nil }
func (fakeLexical) Search(_ context.Context, _, _ string, _ int) ([]driven.KeywordHit, error) {
	return nil, nil
}
func (fakeLexical) Close() error { return nil }

// passthroughExtractors treats any payload as plain text.
type passthroughExtractors struct{}

var _ driven.ExtractorRegistry = (*passthroughExtractors)(nil)

func (passthroughExtractors) Extract(_ context.Context, data []byte, _, _ string) (string, error) {
	return string(data), nil
}

// setupTestServices wires the command package against in-memory
// implementations. The returned cleanup restores the empty state.
func setupTestServices() func() {
	fileStore = memory.NewFileStore()
	chunkStore = memory.NewChunkStore()
	blobStore = memory.NewBlobStore()
	lexicalIndex = fakeLexical{}
	embedder = fakeEmbedder{}

	processor = services.NewProcessor(
		services.ProcessorConfig{BatchSize: 4, Worker: "cli-test"},
		fileStore, chunkStore, blobStore,
		passthroughExtractors{}, embedder, lexicalIndex,
		chunking.NewChunker(), chunking.NewAnnotator(),
	)
	ingestService = services.NewIngestService(fileStore, chunkStore, blobStore, lexicalIndex)
	searchService = services.NewSearchService(chunkStore, lexicalIndex, embedder)

	return func() {
		cfg = nil
		fileStore = nil
		chunkStore = nil
		blobStore = nil
		lexicalIndex = nil
		embedder = nil
		processor = nil
		ingestService = nil
		searchService = nil
	}
}
