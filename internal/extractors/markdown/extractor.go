package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown payloads. Heading markers survive
// extraction so downstream chunking can break at section boundaries;
// inline decoration is stripped.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Extract converts markdown to text with formatting simplified.
func (e *Extractor) Extract(_ context.Context, data []byte, _, fileName string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrCorruptInput, fileName)
	}
	return simplifyMarkdown(string(data)), nil
}

var (
	fenceLine  = regexp.MustCompile("(?m)^\\s*```.*$")
	imageRef   = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkRef    = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	boldMarker = regexp.MustCompile(`(\*\*|__)([^*_]+)(\*\*|__)`)
	emphMarker = regexp.MustCompile(`(\*|_)([^*_]+)(\*|_)`)
	inlineCode = regexp.MustCompile("`([^`]+)`")
)

// simplifyMarkdown strips common markdown decoration while keeping
// the text itself. Code fence lines go away but the code between them
// stays; it is still searchable content.
func simplifyMarkdown(content string) string {
	content = fenceLine.ReplaceAllString(content, "")
	content = imageRef.ReplaceAllString(content, "")
	content = linkRef.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = boldMarker.ReplaceAllString(content, "$2")
	content = emphMarker.ReplaceAllString(content, "$2")

	// Collapse the blank lines left behind by removed elements.
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
