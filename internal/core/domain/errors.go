package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates a processing-state mutation that
	// would violate the file lifecycle (e.g. setting chunk count twice).
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrFileClaimed indicates another worker holds the processing
	// claim for the file and its lease has not expired.
	ErrFileClaimed = errors.New("file claimed by another worker")

	// Extraction errors.

	// ErrUnsupportedFormat indicates no extractor handles the MIME type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptInput indicates the payload could not be decoded.
	ErrCorruptInput = errors.New("corrupt input")

	// Embedding provider errors.

	// ErrAuthFailed indicates the embedding provider rejected the credentials.
	ErrAuthFailed = errors.New("provider authentication failed")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Nothing can be processed or searched without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the lexical index is not configured.
	// Keyword relevance is disabled without it.
	ErrIndexUnavailable = errors.New("lexical index unavailable")
)
