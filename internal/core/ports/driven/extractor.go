package driven

import "context"

// Extractor turns an uploaded payload into plain text.
// Failures are fatal for the file: the processor records them and
// marks the file failed.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract converts the payload to plain text. Returns
	// domain.ErrUnsupportedFormat or domain.ErrCorruptInput on failure.
	Extract(ctx context.Context, data []byte, mimeType, fileName string) (string, error)
}

// ExtractorRegistry selects an extractor by MIME type.
type ExtractorRegistry interface {
	// Extract dispatches to the extractor registered for mimeType.
	// Returns domain.ErrUnsupportedFormat when none is registered.
	Extract(ctx context.Context, data []byte, mimeType, fileName string) (string, error)
}
