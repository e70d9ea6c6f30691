package extractors

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/cartalabs/carta/internal/core/domain"
	"github.com/cartalabs/carta/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction to the extractor registered for the
// payload's MIME type. When no MIME type is given, the file extension
// decides.
type Registry struct {
	byMIME map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string]driven.Extractor),
	}
}

// Register adds an extractor for all of its supported MIME types.
// A later registration for the same type wins.
func (r *Registry) Register(extractor driven.Extractor) {
	for _, mimeType := range extractor.SupportedMIMETypes() {
		r.byMIME[mimeType] = extractor
	}
}

// SupportedMIMETypes returns all MIME types that can be extracted.
func (r *Registry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.byMIME))
	for mimeType := range r.byMIME {
		types = append(types, mimeType)
	}
	return types
}

// Extract converts the payload to plain text using the extractor
// registered for its MIME type.
func (r *Registry) Extract(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	resolved := resolveMIMEType(mimeType, fileName)

	extractor, ok := r.byMIME[resolved]
	if !ok {
		return "", fmt.Errorf("%w: no extractor for %q (file %s)", domain.ErrUnsupportedFormat, resolved, fileName)
	}

	return extractor.Extract(ctx, data, resolved, fileName)
}

// resolveMIMEType strips parameters from the declared type and falls
// back to the file extension when nothing was declared.
func resolveMIMEType(mimeType, fileName string) string {
	if mimeType != "" {
		if base, _, err := mime.ParseMediaType(mimeType); err == nil {
			return base
		}
		return strings.ToLower(strings.TrimSpace(mimeType))
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".text", ".log":
		return "text/plain"
	default:
		if byExt := mime.TypeByExtension(filepath.Ext(fileName)); byExt != "" {
			if base, _, err := mime.ParseMediaType(byExt); err == nil {
				return base
			}
		}
		return ""
	}
}
