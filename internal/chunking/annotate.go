package chunking

import (
	"strings"

	"github.com/cartalabs/carta/internal/logger"
)

// DefaultMaxAnnotateLen is the document length above which annotation
// is skipped entirely.
const DefaultMaxAnnotateLen = 100000

// DefaultMaxAnnotateChunks is the chunk count above which annotation
// is skipped entirely.
const DefaultMaxAnnotateChunks = 300

// HeadingInfo records one markdown heading found in the normalised
// source text. In-memory only; it is never persisted.
type HeadingInfo struct {
	// Level is the heading level (1-3).
	Level int

	// Text is the heading text without the marker.
	Text string

	// Offset is the character offset of the heading line within the
	// normalised source.
	Offset int
}

// Annotator prefixes chunks with their nearest enclosing section
// headings so a chunk keeps its structural context after splitting.
type Annotator struct {
	maxLen    int
	maxChunks int
}

// AnnotateOption configures the annotator.
type AnnotateOption func(*Annotator)

// WithMaxLen sets the document length ceiling for annotation.
func WithMaxLen(n int) AnnotateOption {
	return func(a *Annotator) {
		if n > 0 {
			a.maxLen = n
		}
	}
}

// WithMaxChunks sets the chunk count ceiling for annotation.
func WithMaxChunks(n int) AnnotateOption {
	return func(a *Annotator) {
		if n > 0 {
			a.maxChunks = n
		}
	}
}

// NewAnnotator creates an annotator with the given options.
func NewAnnotator(opts ...AnnotateOption) *Annotator {
	a := &Annotator{
		maxLen:    DefaultMaxAnnotateLen,
		maxChunks: DefaultMaxAnnotateChunks,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Annotate returns the chunks with heading context prefixed. Chunks
// must have been produced in text order from the same source text;
// each chunk is located in the normalised source with a forward-only
// scan so the whole pass stays linear. Oversized inputs are returned
// unchanged, as is any chunk that cannot be located.
func (a *Annotator) Annotate(chunks []string, originalText string) []string {
	if len(chunks) == 0 {
		return chunks
	}
	if len(originalText) > a.maxLen || len(chunks) > a.maxChunks {
		logger.Debug("annotate: skipping oversized input (%d chars, %d chunks)", len(originalText), len(chunks))
		return chunks
	}

	// Chunk boundaries were computed against the normalised form.
	norm := Normalize(originalText)
	headings := ExtractHeadings(norm)
	if len(headings) == 0 {
		return chunks
	}

	out := make([]string, len(chunks))
	searchFrom := 0

	for i, chunk := range chunks {
		rel := strings.Index(norm[searchFrom:], chunk)
		if rel < 0 {
			// Mismatched source text; leave the chunk alone.
			logger.Warn("annotate: chunk %d not found in source, leaving unannotated", i)
			out[i] = chunk
			continue
		}
		offset := searchFrom + rel
		// Anchor just past the chunk start, not its end: consecutive
		// chunks overlap, so the next one may begin inside this one.
		searchFrom = offset + 1

		out[i] = prefixHeadings(chunk, headings, offset)
	}

	return out
}

// ExtractHeadings walks the normalised text line by line and records
// every level 1-3 markdown heading with its character offset.
func ExtractHeadings(norm string) []HeadingInfo {
	var headings []HeadingInfo

	offset := 0
	for _, line := range strings.Split(norm, "\n") {
		if level := headingLevel(line); level > 0 {
			headings = append(headings, HeadingInfo{
				Level:  level,
				Text:   strings.TrimSpace(line[level:]),
				Offset: offset,
			})
		}
		offset += len(line) + 1
	}

	return headings
}

// prefixHeadings prepends the nearest preceding level-2 and level-3
// headings to the chunk. Each level is resolved independently,
// most-recent-wins. A chunk that already starts with a heading marker
// is returned as is.
func prefixHeadings(chunk string, headings []HeadingInfo, offset int) string {
	if strings.HasPrefix(chunk, "#") {
		return chunk
	}

	var h2, h3 string
	for _, h := range headings {
		if h.Offset >= offset {
			break
		}
		switch h.Level {
		case 2:
			h2 = h.Text
		case 3:
			h3 = h.Text
		}
	}

	if h2 == "" && h3 == "" {
		return chunk
	}

	var b strings.Builder
	if h2 != "" {
		b.WriteString("## ")
		b.WriteString(h2)
		b.WriteByte('\n')
	}
	if h3 != "" {
		b.WriteString("### ")
		b.WriteString(h3)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(chunk)
	return b.String()
}
