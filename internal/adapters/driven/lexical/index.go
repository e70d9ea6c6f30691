// Package lexical provides the Bleve-backed keyword index adapter.
// Chunk content is analysed with the English analyzer and scoped to a
// room through a keyword-analysed room field, so queries never cross
// room boundaries.
package lexical

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.LexicalIndex = (*Index)(nil)

// chunkDoc is the shape stored in the index.
type chunkDoc struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

// Index is a Bleve-backed implementation of driven.LexicalIndex.
type Index struct {
	index bleve.Index
}

// New opens the index at dir, creating it on first use. An empty dir
// yields an in-memory index for tests and ephemeral runs.
func New(dir string) (*Index, error) {
	if dir == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &Index{index: index}, nil
	}

	index, err := bleve.Open(dir)
	if err == nil {
		return &Index{index: index}, nil
	}
	if err != bleve.ErrorIndexPathDoesNotExist {
		return nil, fmt.Errorf("open index: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	index, err = bleve.New(dir, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "en"
	indexMapping.DefaultField = "content"

	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.Index = true
	docMapping.AddFieldMappingsAt("content", contentField)

	roomField := bleve.NewTextFieldMapping()
	roomField.Store = false
	roomField.Index = true
	roomField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("room_id", roomField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Index adds or updates a chunk in the index.
func (i *Index) Index(_ context.Context, chunk domain.Chunk) error {
	doc := chunkDoc{RoomID: chunk.RoomID, Content: chunk.Content}
	if err := i.index.Index(chunk.ID, doc); err != nil {
		return fmt.Errorf("index chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// IndexAll adds a batch of chunks in one operation.
func (i *Index) IndexAll(_ context.Context, chunks []domain.Chunk) error {
	batch := i.index.NewBatch()
	for _, chunk := range chunks {
		doc := chunkDoc{RoomID: chunk.RoomID, Content: chunk.Content}
		if err := batch.Index(chunk.ID, doc); err != nil {
			return fmt.Errorf("batch chunk %s: %w", chunk.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	return nil
}

// Delete removes a chunk from the index.
func (i *Index) Delete(_ context.Context, chunkID string) error {
	if err := i.index.Delete(chunkID); err != nil {
		return fmt.Errorf("delete chunk %s: %w", chunkID, err)
	}
	return nil
}

// Search matches query against chunk content in one room. Quoted
// segments must match as phrases; the remaining terms are combined
// with OR, so any significant term can produce a hit.
func (i *Index) Search(ctx context.Context, roomID, query string, limit int) ([]driven.KeywordHit, error) {
	if limit <= 0 {
		limit = 10
	}

	contentQuery := buildContentQuery(query)
	if contentQuery == nil {
		return nil, nil
	}

	roomQuery := bleve.NewTermQuery(roomID)
	roomQuery.SetField("room_id")

	full := bleve.NewConjunctionQuery(roomQuery, contentQuery)
	req := bleve.NewSearchRequestOptions(full, limit, 0, false)

	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	hits := make([]driven.KeywordHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		hits = append(hits, driven.KeywordHit{ChunkID: hit.ID, Score: hit.Score})
	}
	return hits, nil
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}

// buildContentQuery splits the query into quoted phrases and free
// terms. Returns nil when nothing remains to match.
func buildContentQuery(query string) blevequery.Query {
	var parts []blevequery.Query

	segments := strings.Split(query, `"`)
	var free []string
	for idx, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if idx%2 == 1 {
			// Inside quotes: exact phrase.
			phrase := bleve.NewMatchPhraseQuery(segment)
			phrase.SetField("content")
			parts = append(parts, phrase)
		} else {
			free = append(free, segment)
		}
	}

	if terms := strings.Join(free, " "); strings.TrimSpace(terms) != "" {
		match := bleve.NewMatchQuery(terms)
		match.SetField("content")
		parts = append(parts, match)
	}

	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	default:
		return bleve.NewDisjunctionQuery(parts...)
	}
}
