// Package extractors provides implementations of the Extractor
// interface for supported upload formats. Each extractor knows how to
// turn one family of MIME types into plain text.
//
// Extractors are registered with the Registry at startup.
package extractors
