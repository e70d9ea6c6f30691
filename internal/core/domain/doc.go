// Package domain defines the core business entities for Carta.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceFile: An uploaded artifact with processing state
//   - Chunk: A retrievable unit within a file
//   - ProcessingState: The explicit pipeline phase of a file
//   - SearchResult: One ranked hit from a hybrid search
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
