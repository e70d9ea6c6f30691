package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateHeadingInheritance(t *testing.T) {
	source := "## A\nfoo\n### B\nbar"

	annotated := NewAnnotator().Annotate([]string{"bar"}, source)
	require.Len(t, annotated, 1)
	assert.Equal(t, "## A\n### B\n\nbar", annotated[0])
}

func TestAnnotateNoDuplicateHeading(t *testing.T) {
	source := "## A\nfoo\n### B\nbar"

	annotated := NewAnnotator().Annotate([]string{"## A\nfoo"}, source)
	require.Len(t, annotated, 1)
	assert.Equal(t, "## A\nfoo", annotated[0], "chunk starting with a heading must not be prefixed")
}

func TestAnnotateMostRecentWins(t *testing.T) {
	source := "## First\none\n## Second\ntwo\n### Sub\nthree"

	annotated := NewAnnotator().Annotate([]string{"three"}, source)
	require.Len(t, annotated, 1)
	assert.Equal(t, "## Second\n### Sub\n\nthree", annotated[0])
}

func TestAnnotateOnlyH3(t *testing.T) {
	source := "### Deep\ncontent here"

	annotated := NewAnnotator().Annotate([]string{"content here"}, source)
	require.Len(t, annotated, 1)
	assert.Equal(t, "### Deep\n\ncontent here", annotated[0])
}

func TestAnnotateNoHeadings(t *testing.T) {
	source := "plain text without any structure"
	chunks := []string{"plain text", "without any structure"}

	annotated := NewAnnotator().Annotate(chunks, source)
	assert.Equal(t, chunks, annotated)
}

func TestAnnotateChunkNotFound(t *testing.T) {
	source := "## A\nsome body text"

	// Mismatched chunk is returned unchanged, never an error.
	annotated := NewAnnotator().Annotate([]string{"unrelated text"}, source)
	require.Len(t, annotated, 1)
	assert.Equal(t, "unrelated text", annotated[0])
}

func TestAnnotateOversizedDocumentSkipped(t *testing.T) {
	source := "## A\n" + strings.Repeat("x", 200)
	chunks := []string{strings.Repeat("x", 200)}

	annotated := NewAnnotator(WithMaxLen(100)).Annotate(chunks, source)
	assert.Equal(t, chunks, annotated, "oversized documents skip annotation")
}

func TestAnnotateTooManyChunksSkipped(t *testing.T) {
	source := "## A\none two three"
	chunks := []string{"one", "two", "three"}

	annotated := NewAnnotator(WithMaxChunks(2)).Annotate(chunks, source)
	assert.Equal(t, chunks, annotated)
}

func TestAnnotateForwardOnlyScan(t *testing.T) {
	// Two identical chunk bodies under different headings must each
	// pick up their own section context.
	source := "## One\nsame body\n## Two\nsame body"
	chunks := []string{"same body", "same body"}

	annotated := NewAnnotator().Annotate(chunks, source)
	require.Len(t, annotated, 2)
	assert.Equal(t, "## One\n\nsame body", annotated[0])
	assert.Equal(t, "## Two\n\nsame body", annotated[1])
}

func TestAnnotateChunkerIntegration(t *testing.T) {
	source := "## Install\nRun the installer and follow the prompts to completion.\n" +
		"### Linux\nUse the tarball release. Unpack it into a directory on your PATH. " +
		"Then verify the binary runs and prints a version number as expected."

	chunker := NewChunker(WithTargetSize(80), WithOverlap(0))
	chunks := chunker.Chunk(source)
	require.NotEmpty(t, chunks)

	annotated := NewAnnotator().Annotate(chunks, source)
	require.Len(t, annotated, len(chunks))

	for i, chunk := range annotated {
		// Every chunk either starts with a heading or received context.
		assert.True(t, strings.HasPrefix(chunk, "#"),
			"chunk %d should carry heading context: %q", i, chunk)
	}
}

func TestExtractHeadings(t *testing.T) {
	norm := "# Title\nintro\n## Section\nbody\n#### NotTracked\n### Sub\ntail"

	headings := ExtractHeadings(norm)
	require.Len(t, headings, 3)

	assert.Equal(t, HeadingInfo{Level: 1, Text: "Title", Offset: 0}, headings[0])
	assert.Equal(t, 2, headings[1].Level)
	assert.Equal(t, "Section", headings[1].Text)
	assert.Equal(t, 3, headings[2].Level)
	assert.Equal(t, "Sub", headings[2].Text)

	// Offsets index into the normalised text.
	assert.Equal(t, "## Section", norm[headings[1].Offset:headings[1].Offset+10])
}
