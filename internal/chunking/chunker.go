package chunking

import (
	"strings"
	"unicode/utf8"
)

// DefaultTargetSize is the default chunk size in characters.
const DefaultTargetSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Chunker splits normalised text into bounded-size chunks, preferring
// to break at a heading, then a sentence end, then a word boundary.
type Chunker struct {
	targetSize int
	overlap    int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTargetSize sets the chunk size in characters.
func WithTargetSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.targetSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// NewChunker creates a chunker with the given options. Misconfigured
// values are clamped rather than rejected.
func NewChunker(opts ...Option) *Chunker {
	c := &Chunker{
		targetSize: DefaultTargetSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed target size
	if c.overlap >= c.targetSize {
		c.overlap = c.targetSize / 4
	}

	return c
}

// Chunk normalises text and splits it into ordered chunk strings.
// Every chunk is trimmed and non-empty. Degenerate input (a single
// token longer than the target size) still terminates: the window
// always advances, falling back to a raw cut when no boundary exists.
func (c *Chunker) Chunk(text string) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.targetSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + c.targetSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakPoint(text, start, end)
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			chunks = append(chunks, piece)
		}

		if end >= len(text) {
			break
		}

		next := end - c.overlap
		if next <= start {
			// Overlap would stall the window; drop it for this step.
			next = end
		}
		start = next
	}

	return chunks
}

// breakPoint moves end backward from the tentative cut to the best
// boundary strictly after start: heading line, then sentence
// terminator, then whitespace. A terminator sitting exactly on the
// tentative cut still counts, so a chunk may exceed the target size by
// one character of boundary slack. Falls back to the raw cut (snapped
// to a rune boundary) when nothing qualifies.
func (c *Chunker) breakPoint(text string, start, end int) int {
	if h := lastHeadingStart(text, start, end); h > start {
		return h
	}

	limit := end + 1
	if limit > len(text) {
		limit = len(text)
	}

	// Sentence terminators, searched strictly after start.
	if rel := strings.LastIndexAny(text[start+1:limit], ".!?\n"); rel >= 0 {
		return start + 1 + rel + 1
	}

	if rel := strings.LastIndexByte(text[start+1:limit], ' '); rel >= 0 {
		return start + 1 + rel + 1
	}

	// Raw cut as last resort. Snap to a rune boundary so a multi-byte
	// character is never split.
	cut := end
	for cut > start && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == start {
		cut = end
		for cut < len(text) && !utf8.RuneStart(text[cut]) {
			cut++
		}
	}
	return cut
}

// lastHeadingStart returns the start offset of the nearest markdown
// heading line in (start, end], or -1 if none.
func lastHeadingStart(text string, start, end int) int {
	for seg := end; seg > start; {
		rel := strings.LastIndex(text[start:seg], "\n#")
		if rel < 0 {
			return -1
		}
		lineStart := start + rel + 1
		if headingLevel(text[lineStart:]) > 0 {
			return lineStart
		}
		seg = start + rel + 1
	}
	return -1
}

// headingLevel returns the markdown heading level (1-3) of the line, or
// 0 when the line is not a heading.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 3 {
		return 0
	}
	if level >= len(line) || line[level] != ' ' {
		return 0
	}
	return level
}
