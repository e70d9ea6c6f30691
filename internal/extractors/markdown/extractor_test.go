package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartalabs/carta/internal/core/domain"
)

func TestExtractKeepsHeadings(t *testing.T) {
	input := "# Title\n\n## Section\n\nBody text here."
	text, err := New().Extract(context.Background(), []byte(input), "text/markdown", "doc.md")
	require.NoError(t, err)
	assert.Contains(t, text, "# Title")
	assert.Contains(t, text, "## Section")
	assert.Contains(t, text, "Body text here.")
}

func TestExtractStripsDecoration(t *testing.T) {
	input := "Some **bold** and *italic* and `code` and [a link](https://example.com)."
	text, err := New().Extract(context.Background(), []byte(input), "text/markdown", "doc.md")
	require.NoError(t, err)
	assert.Equal(t, "Some bold and italic and code and a link.", text)
}

func TestExtractRemovesImagesKeepsFencedCode(t *testing.T) {
	input := "Before\n\n![diagram](img.png)\n\n```go\nfunc main() {}\n```\n\nAfter"
	text, err := New().Extract(context.Background(), []byte(input), "text/markdown", "doc.md")
	require.NoError(t, err)
	assert.NotContains(t, text, "img.png")
	assert.NotContains(t, text, "```")
	assert.Contains(t, text, "func main() {}")
	assert.Contains(t, text, "After")
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte{0xc3, 0x28}, "text/markdown", "doc.md")
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}
