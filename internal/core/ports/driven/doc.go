// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - FileStore: SourceFile persistence, including the per-file
//     claim/lease used to serialise processing
//   - ChunkStore: chunk persistence (bulk insert, point embedding update)
//   - Extractor: raw bytes + MIME type to plain text
//   - EmbeddingService: batch embedding generation
//   - LexicalIndex: keyword relevance over chunk content
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
