package domain

// Default fusion parameters. These are tuned values, exposed as
// configuration rather than buried in the retriever.
const (
	DefaultVectorWeight  = 0.6
	DefaultKeywordWeight = 0.4
	DefaultThreshold     = 0.2
	DefaultTopK          = 10
)

// SearchOptions configures a hybrid search.
type SearchOptions struct {
	// RoomID scopes the search to one tenant room (required).
	RoomID string

	// TopK is the maximum number of results (default 10).
	TopK int

	// Threshold is the minimum vector similarity for a result that has
	// no keyword hit. Zero means use the default (0.2); a negative
	// value disables the similarity filter.
	Threshold float64

	// VectorWeight scales the similarity component (default 0.6).
	VectorWeight float64

	// KeywordWeight scales the keyword rank component (default 0.4).
	KeywordWeight float64
}

// WithDefaults fills unset options with the default fusion parameters.
// A zero TopK, Threshold, VectorWeight and KeywordWeight means "use
// defaults"; a negative Threshold is preserved and lets every
// similarity through.
func (o SearchOptions) WithDefaults() SearchOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.VectorWeight == 0 && o.KeywordWeight == 0 {
		o.VectorWeight = DefaultVectorWeight
		o.KeywordWeight = DefaultKeywordWeight
	}
	return o
}

// SearchResult is one ranked chunk from a hybrid search.
type SearchResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Content is the chunk text.
	Content string

	// FileName is the display name of the owning file.
	FileName string

	// Similarity is the cosine similarity to the query embedding.
	// Zero when the chunk matched on keywords only.
	Similarity float64

	// KeywordRank is the lexical relevance score. Zero when the chunk
	// matched on vector similarity only. Unbounded scale.
	KeywordRank float64

	// CombinedScore is Similarity*VectorWeight + KeywordRank*KeywordWeight.
	CombinedScore float64
}
