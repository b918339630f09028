package span

import (
	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/syntax"
)

// DB is the read-only view of the incremental database a resolution runs against.
// *hir.Snapshot implements it.
type DB interface {
	// BodySourceMap returns the source map of body, or false when the body's
	// generation is no longer current.
	BodySourceMap(body hir.Body) (*hir.SourceMap, bool)
	// ItemSource returns the origin of a top-level item, or false when stale.
	ItemSource(item hir.Item) (hir.Origin, bool)
	// Tree returns the syntax tree of a file.
	Tree(file source.FileID) (*syntax.Tree, bool)
}

var _ DB = (*hir.Snapshot)(nil)
