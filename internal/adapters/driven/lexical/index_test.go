package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartalabs/carta/internal/core/domain"
)

func setupIndex(t *testing.T) *Index {
	t.Helper()
	index, err := New("")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, index.Close())
	})
	return index
}

func indexChunks(t *testing.T, index *Index, chunks ...domain.Chunk) {
	t.Helper()
	require.NoError(t, index.IndexAll(context.Background(), chunks))
}

func TestIndexPersistsToDisk(t *testing.T) {
	dir := t.TempDir() + "/keyword.bleve"

	index, err := New(dir)
	require.NoError(t, err)
	indexChunks(t, index, domain.Chunk{ID: "c1", RoomID: "r1", Content: "persistent data"})
	require.NoError(t, index.Close())

	// Reopen and find the same document.
	index, err = New(dir)
	require.NoError(t, err)
	defer index.Close()

	hits, err := index.Search(context.Background(), "r1", "persistent", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].ChunkID)
}

func TestSearchMatchesTerms(t *testing.T) {
	index := setupIndex(t)
	indexChunks(t, index,
		domain.Chunk{ID: "c1", RoomID: "r1", Content: "the deployment pipeline failed on staging"},
		domain.Chunk{ID: "c2", RoomID: "r1", Content: "lunch menu for the cafeteria"},
	)

	hits, err := index.Search(context.Background(), "r1", "deployment staging", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].ChunkID)
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestSearchAnyTermQualifies(t *testing.T) {
	index := setupIndex(t)
	indexChunks(t, index,
		domain.Chunk{ID: "c1", RoomID: "r1", Content: "kubernetes cluster upgrade notes"},
		domain.Chunk{ID: "c2", RoomID: "r1", Content: "postgres backup schedule"},
	)

	// OR semantics: each chunk matches one term of the query.
	hits, err := index.Search(context.Background(), "r1", "kubernetes postgres", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchScopedToRoom(t *testing.T) {
	index := setupIndex(t)
	indexChunks(t, index,
		domain.Chunk{ID: "c1", RoomID: "r1", Content: "shared terminology appears here"},
		domain.Chunk{ID: "c2", RoomID: "r2", Content: "shared terminology appears here"},
	)

	hits, err := index.Search(context.Background(), "r1", "terminology", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].ChunkID)
}

func TestSearchPhraseQuery(t *testing.T) {
	index := setupIndex(t)
	indexChunks(t, index,
		domain.Chunk{ID: "c1", RoomID: "r1", Content: "error budget policy for the platform team"},
		domain.Chunk{ID: "c2", RoomID: "r1", Content: "policy error: budget exceeded limits elsewhere"},
	)

	hits, err := index.Search(context.Background(), "r1", `"error budget policy"`, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "c1", hits[0].ChunkID)
}

func TestSearchLimit(t *testing.T) {
	index := setupIndex(t)
	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		indexChunks(t, index, domain.Chunk{ID: id, RoomID: "r1", Content: "common token"})
	}

	hits, err := index.Search(context.Background(), "r1", "token", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchEmptyQuery(t *testing.T) {
	index := setupIndex(t)
	hits, err := index.Search(context.Background(), "r1", `  ""  `, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDeleteRemovesChunk(t *testing.T) {
	index := setupIndex(t)
	indexChunks(t, index, domain.Chunk{ID: "c1", RoomID: "r1", Content: "ephemeral content"})

	require.NoError(t, index.Delete(context.Background(), "c1"))

	hits, err := index.Search(context.Background(), "r1", "ephemeral", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUpdateReplacesContent(t *testing.T) {
	index := setupIndex(t)
	ctx := context.Background()
	require.NoError(t, index.Index(ctx, domain.Chunk{ID: "c1", RoomID: "r1", Content: "original wording"}))
	require.NoError(t, index.Index(ctx, domain.Chunk{ID: "c1", RoomID: "r1", Content: "revised wording"}))

	hits, err := index.Search(ctx, "r1", "original", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = index.Search(ctx, "r1", "revised", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
