// Package diag defines the diagnostic model whose locations are lazy span
// handles.
//
// # Purpose
//
//   - Let analysis attach locations as span.LazySpan handles without computing
//     any range, so reporting stays cheap and survives edits.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//   - Place handles at render time (Materialize) with a fixed policy for
//     handles that no longer resolve exactly.
//
// # Scope
//
// Package diag does not perform any formatting beyond the golden line format,
// IO, or CLI integration. Rendering lives in internal/diagfmt; concurrent
// resolution and caching live in internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the handle pointing to the issue.
//   - Context – optional enclosing handle used when Primary cannot be placed.
//   - Notes – optional secondary handles/messages for additional context.
//
// # Placement
//
// Materialize turns a Diagnostic into a Resolved one. Each handle is placed:
//
//   - Precise – the handle resolved.
//   - Fallback – the node was desugared and its origin carries an enclosing
//     range, or the handle failed and Context resolved instead.
//   - Unlocated – nothing resolved; the message is kept, the underline dropped.
//
// The resolution error is kept on the Located value so renderers can explain
// why a diagnostic moved.
//
// # Emitting diagnostics
//
// Producers construct a ReportBuilder via NewReportBuilder (or ReportError /
// ReportWarning / ReportInfo) and chain WithNote / WithContext before calling
// Emit. BagReporter aggregates into a Bag, which supports deduplication and
// merging; DedupReporter filters repeats on the way.
package diag
