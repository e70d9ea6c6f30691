package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/cartalabs/carta/internal/chunking"
	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/services"
)

// Config is the application configuration. Every field carries an
// explicit value after Load; nothing is read from ambient state later.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Annotate  AnnotateConfig  `toml:"annotate"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Search    SearchConfig    `toml:"search"`
	Processor ProcessorConfig `toml:"processor"`
}

// StorageConfig locates the on-disk state.
type StorageConfig struct {
	// DataDir holds the SQLite database (default ~/.carta/data).
	DataDir string `toml:"data_dir"`

	// IndexDir holds the keyword index (default ~/.carta/index).
	IndexDir string `toml:"index_dir"`
}

// ChunkingConfig controls document splitting.
type ChunkingConfig struct {
	TargetSize int `toml:"target_size"`
	Overlap    int `toml:"overlap"`
}

// AnnotateConfig bounds the heading annotation pass.
type AnnotateConfig struct {
	MaxLen    int `toml:"max_len"`
	MaxChunks int `toml:"max_chunks"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama" (default "openai").
	Provider string `toml:"provider"`

	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`

	// APIKey may also come from the CARTA_OPENAI_API_KEY or
	// OPENAI_API_KEY environment variables, which take precedence.
	APIKey string `toml:"api_key"`

	Dimensions int `toml:"dimensions"`
}

// SearchConfig holds retrieval defaults.
type SearchConfig struct {
	TopK          int     `toml:"top_k"`
	Threshold     float64 `toml:"threshold"`
	VectorWeight  float64 `toml:"vector_weight"`
	KeywordWeight float64 `toml:"keyword_weight"`
}

// ProcessorConfig tunes the batch processor.
type ProcessorConfig struct {
	BatchSize int `toml:"batch_size"`

	// LeaseSeconds is the claim duration per step.
	LeaseSeconds int `toml:"lease_seconds"`

	// PumpIntervalSeconds is the sweep interval of the background pump.
	PumpIntervalSeconds int `toml:"pump_interval_seconds"`

	// WatchDir, when set, is scanned for new uploads.
	WatchDir string `toml:"watch_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			TargetSize: chunking.DefaultTargetSize,
			Overlap:    chunking.DefaultOverlap,
		},
		Annotate: AnnotateConfig{
			MaxLen:    chunking.DefaultMaxAnnotateLen,
			MaxChunks: chunking.DefaultMaxAnnotateChunks,
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
		},
		Search: SearchConfig{
			TopK:          domain.DefaultTopK,
			Threshold:     domain.DefaultThreshold,
			VectorWeight:  domain.DefaultVectorWeight,
			KeywordWeight: domain.DefaultKeywordWeight,
		},
		Processor: ProcessorConfig{
			BatchSize:           services.DefaultBatchSize,
			LeaseSeconds:        int(services.DefaultLeaseTTL.Seconds()),
			PumpIntervalSeconds: int(services.DefaultPumpInterval.Seconds()),
		},
	}
}

// Load reads the configuration at path, layered over the defaults.
// An empty path means ~/.carta/config.toml. A missing file is not an
// error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".carta", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Environment beats file for the secret.
	if key := os.Getenv("CARTA_OPENAI_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = key
	}

	return cfg, nil
}

// Save writes the configuration to path with restricted permissions,
// creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// The file can hold an API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
