package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartalabs/carta/internal/core/domain"
)

func seedChunks(t *testing.T, store *ChunkStore) {
	t.Helper()
	chunks := []domain.Chunk{
		{ID: "c1", RoomID: "r1", FileID: "f1", Position: 0},
		{ID: "c2", RoomID: "r1", FileID: "f1", Position: 1},
		{ID: "c3", RoomID: "r1", FileID: "f1", Position: 2, Embedding: []float32{0.1}},
		{ID: "c4", RoomID: "r2", FileID: "f2", Position: 0, Embedding: []float32{0.2}},
	}
	require.NoError(t, store.SaveAll(context.Background(), chunks))
}

func TestChunkStoreListByFile(t *testing.T) {
	store := NewChunkStore()
	seedChunks(t, store)

	chunks, err := store.ListByFile(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position, "ordered by position")
	}
}

func TestChunkStoreListUnembedded(t *testing.T) {
	store := NewChunkStore()
	seedChunks(t, store)
	ctx := context.Background()

	pending, err := store.ListUnembedded(ctx, "f1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "c1", pending[0].ID)
	assert.Equal(t, "c2", pending[1].ID)

	// Limit caps the batch.
	pending, err = store.ListUnembedded(ctx, "f1", 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c1", pending[0].ID)

	// Assigning an embedding removes the chunk from the pending set.
	require.NoError(t, store.SetEmbedding(ctx, "c1", []float32{0.5}))
	pending, err = store.ListUnembedded(ctx, "f1", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c2", pending[0].ID)
}

func TestChunkStoreListEmbeddedScopedByRoom(t *testing.T) {
	store := NewChunkStore()
	seedChunks(t, store)

	embedded, err := store.ListEmbedded(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, embedded, 1)
	assert.Equal(t, "c3", embedded[0].ID)
}

func TestChunkStoreDeleteByFile(t *testing.T) {
	store := NewChunkStore()
	seedChunks(t, store)
	ctx := context.Background()

	require.NoError(t, store.DeleteByFile(ctx, "f1"))

	chunks, err := store.ListByFile(ctx, "f1")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	// Other files are untouched.
	chunks, err = store.ListByFile(ctx, "f2")
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestBlobStoreRoundTrip(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "f1", []byte("payload")))

	data, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, store.Delete(ctx, "f1"))
	_, err = store.Get(ctx, "f1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
