package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartalabs/carta/internal/core/domain"
)

func TestExtractPassthrough(t *testing.T) {
	text, err := New().Extract(context.Background(), []byte("line one\nline two"), "text/plain", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte{0xff, 0xfe, 0x00}, "text/plain", "a.txt")
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}

func TestExtractRejectsBinary(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("text\x00more"), "text/plain", "a.bin")
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}
