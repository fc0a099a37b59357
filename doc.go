// Package holdex reconstructs security holdings from the linearized text of a
// financial statement.
//
// The input is a page-by-page text dump with no preserved table geometry, the
// kind of stream a document-to-text converter produces. The engine scans the
// lines for security identifiers (ISINs), resolves a descriptive name in a
// bounded window before each identifier and a monetary value in a bounded
// window after it, excludes figures that belong to summary or subtotal rows,
// and reconciles the survivors into a scored ExtractionResult.
//
// The whole pipeline is a single synchronous pass over in-memory text: no I/O,
// no shared mutable state, always terminating. Collaborators that do perform
// I/O (the Gemini-based extractor in package vision, the quote cross-check in
// package quotes) feed their results back in as plain Holding candidates.
package holdex
