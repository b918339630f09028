package span

import "spanres/internal/syntax"

// LazyPathSpan is a handle to a `a::b::c` path.
type LazyPathSpan struct{ lazyNode }

func (LazyPathSpan) Shape() syntax.Kind { return syntax.KindPath }

func (s LazyPathSpan) Segment(i int) LazyPathSegmentSpan {
	return LazyPathSegmentSpan{s.child(i, syntax.KindPathSegment)}
}

type LazyPathSegmentSpan struct{ lazyNode }

func (LazyPathSegmentSpan) Shape() syntax.Kind { return syntax.KindPathSegment }

func (s LazyPathSegmentSpan) Ident() LazySpanAtom {
	return s.token(syntax.TokenIdent)
}
