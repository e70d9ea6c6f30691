package driving

import (
	"context"

	"github.com/cartalabs/carta/internal/core/domain"
)

// SearchService answers natural-language queries against a room's
// embedded chunks with hybrid (vector + keyword) retrieval.
type SearchService interface {
	// Search returns the top-ranked chunks for the query. Store or
	// provider failures propagate; there is no degraded mode.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
