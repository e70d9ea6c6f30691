package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFileState(t *testing.T) {
	tests := []struct {
		name string
		file SourceFile
		want ProcessingState
	}{
		{
			name: "fresh upload is pending",
			file: SourceFile{Status: StatusPending},
			want: ProcessingState{Phase: PhasePending},
		},
		{
			name: "processing without chunks is chunking",
			file: SourceFile{Status: StatusProcessing, ChunkCount: 0},
			want: ProcessingState{Phase: PhaseChunking},
		},
		{
			name: "processing with chunks is embedding",
			file: SourceFile{Status: StatusProcessing, ChunkCount: 10, ProcessedChunks: 7},
			want: ProcessingState{Phase: PhaseEmbedding, Processed: 7, Total: 10},
		},
		{
			name: "all chunks embedded is completed",
			file: SourceFile{Status: StatusCompleted, ChunkCount: 10, ProcessedChunks: 10},
			want: ProcessingState{Phase: PhaseCompleted, Processed: 10, Total: 10},
		},
		{
			name: "failed carries reason",
			file: SourceFile{Status: StatusFailed, ErrorMessage: "extraction failed"},
			want: ProcessingState{Phase: PhaseFailed, Reason: "extraction failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.file.State())
		})
	}
}

func TestMarkChunked(t *testing.T) {
	f := SourceFile{Status: StatusPending}

	require.NoError(t, f.MarkChunked(5))
	assert.Equal(t, StatusProcessing, f.Status)
	assert.Equal(t, 5, f.ChunkCount)
	assert.Equal(t, 0, f.ProcessedChunks)

	// Chunk count is set exactly once.
	err := f.MarkChunked(7)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 5, f.ChunkCount)
}

func TestMarkChunkedEmptyDocument(t *testing.T) {
	f := SourceFile{Status: StatusPending}

	require.NoError(t, f.MarkChunked(0))
	assert.Equal(t, StatusCompleted, f.Status)
	assert.True(t, f.Terminal())
}

func TestAdvanceEmbedded(t *testing.T) {
	f := SourceFile{Status: StatusPending}
	require.NoError(t, f.MarkChunked(10))

	require.NoError(t, f.AdvanceEmbedded(7))
	assert.Equal(t, 7, f.ProcessedChunks)
	assert.Equal(t, StatusProcessing, f.Status)
	assert.Equal(t, PhaseEmbedding, f.State().Phase)

	require.NoError(t, f.AdvanceEmbedded(3))
	assert.Equal(t, 10, f.ProcessedChunks)
	assert.Equal(t, StatusCompleted, f.Status)

	// Progress past the total is rejected.
	err := f.AdvanceEmbedded(1)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 10, f.ProcessedChunks)
}

func TestMarkFailedAndReprocess(t *testing.T) {
	f := SourceFile{Status: StatusProcessing, ChunkCount: 10, ProcessedChunks: 3}

	f.MarkFailed("provider authentication failed")
	assert.Equal(t, StatusFailed, f.Status)
	assert.Equal(t, "provider authentication failed", f.ErrorMessage)
	assert.True(t, f.Terminal())

	require.NoError(t, f.ResetForReprocess())
	assert.Equal(t, StatusPending, f.Status)
	assert.Equal(t, 0, f.ChunkCount)
	assert.Equal(t, 0, f.ProcessedChunks)
	assert.Empty(t, f.ErrorMessage)
}

func TestResetForReprocessRequiresFailure(t *testing.T) {
	f := SourceFile{Status: StatusProcessing, ChunkCount: 4}
	require.ErrorIs(t, f.ResetForReprocess(), ErrInvalidTransition)
}

func TestChunkEmbedded(t *testing.T) {
	c := Chunk{Content: "hello"}
	assert.False(t, c.Embedded())

	c.Embedding = []float32{0.1, 0.2}
	assert.True(t, c.Embedded())
}
