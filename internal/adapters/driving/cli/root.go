// Package cli implements the carta command-line interface. Commands
// are thin adapters: they parse flags, call core services through the
// driving ports and format the answer.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/cartalabs/carta/internal/adapters/driven/config/file"
	"github.com/cartalabs/carta/internal/adapters/driven/embedding/ollama"
	"github.com/cartalabs/carta/internal/adapters/driven/embedding/openai"
	"github.com/cartalabs/carta/internal/adapters/driven/lexical"
	"github.com/cartalabs/carta/internal/adapters/driven/storage/sqlite"
	"github.com/cartalabs/carta/internal/chunking"
	"github.com/cartalabs/carta/internal/core/ports/driven"
	"github.com/cartalabs/carta/internal/core/ports/driving"
	"github.com/cartalabs/carta/internal/core/services"
	"github.com/cartalabs/carta/internal/extractors"
	"github.com/cartalabs/carta/internal/extractors/markdown"
	"github.com/cartalabs/carta/internal/extractors/plaintext"
	"github.com/cartalabs/carta/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

// Wired services. Built lazily by ensureServices; tests inject their
// own implementations.
var (
	cfg *configfile.Config

	fileStore     driven.FileStore
	chunkStore    driven.ChunkStore
	blobStore     driven.BlobStore
	lexicalIndex  driven.LexicalIndex
	embedder      driven.EmbeddingService
	ingestService driving.Ingestor
	processor     driving.Processor
	searchService driving.SearchService

	closers []func() error
)

var rootCmd = &cobra.Command{
	Use:   "carta",
	Short: "Document ingestion and hybrid search",
	Long: `Carta ingests documents into rooms, chunks and embeds them in
resumable batches, and answers queries with hybrid vector and keyword
retrieval.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.carta/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command.
func Execute() error {
	defer closeAll()
	return rootCmd.Execute()
}

// ensureServices builds the full service graph from configuration.
// Already-populated services (from tests) are left alone.
func ensureServices() error {
	if ingestService != nil {
		return nil
	}

	loaded, err := configfile.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	store, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	closers = append(closers, store.Close)
	fileStore = store.FileStore()
	chunkStore = store.ChunkStore()
	blobStore = store.BlobStore()

	index, err := lexical.New(cfg.Storage.IndexDir)
	if err != nil {
		return fmt.Errorf("open keyword index: %w", err)
	}
	closers = append(closers, index.Close)
	lexicalIndex = index

	embedder, err = buildEmbedder(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, embedder.Close)

	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(markdown.New())

	chunker := chunking.NewChunker(
		chunking.WithTargetSize(cfg.Chunking.TargetSize),
		chunking.WithOverlap(cfg.Chunking.Overlap),
	)
	annotator := chunking.NewAnnotator(
		chunking.WithMaxLen(cfg.Annotate.MaxLen),
		chunking.WithMaxChunks(cfg.Annotate.MaxChunks),
	)

	processor = services.NewProcessor(
		services.ProcessorConfig{BatchSize: cfg.Processor.BatchSize},
		fileStore, chunkStore, blobStore,
		registry, embedder, lexicalIndex,
		chunker, annotator,
	)
	ingestService = services.NewIngestService(fileStore, chunkStore, blobStore, lexicalIndex)
	searchService = services.NewSearchService(chunkStore, lexicalIndex, embedder)

	return nil
}

// buildEmbedder selects the embedding provider from configuration.
func buildEmbedder(cfg *configfile.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "", "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		}), nil
	default:
		return nil, errors.New("unknown embedding provider: " + cfg.Embedding.Provider)
	}
}

func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	closers = nil
}
