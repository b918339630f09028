package span

import (
	"spanres/internal/hir"
	"spanres/internal/syntax"
)

// LazyPatSpan is a handle to any pattern of a body.
type LazyPatSpan struct{ lazyNode }

// NewLazyPatSpan starts a chain at pattern pat of body.
func NewLazyPatSpan(pat hir.PatID, body hir.Body) LazyPatSpan {
	return LazyPatSpan{lazyNode{chain: NewChain(patRoot{pat: pat, body: body})}}
}

// NewLazyRecordPatSpan starts a chain at pat, known by the caller to be a
// record pattern.
func NewLazyRecordPatSpan(pat hir.PatID, body hir.Body) LazyRecordPatSpan {
	return NewLazyPatSpan(pat, body).IntoRecordPat()
}

func (LazyPatSpan) Shape() syntax.Kind { return syntax.KindPat }

// IntoPathPat reinterprets the handle as a path pattern. The caller must know
// the pattern is one; the chain is not inspected.
func (s LazyPatSpan) IntoPathPat() LazyPathPatSpan { return LazyPathPatSpan(s) }

// IntoPathTuplePat reinterprets the handle as a path-tuple pattern.
func (s LazyPatSpan) IntoPathTuplePat() LazyPathTuplePatSpan { return LazyPathTuplePatSpan(s) }

// IntoRecordPat reinterprets the handle as a record pattern.
func (s LazyPatSpan) IntoRecordPat() LazyRecordPatSpan { return LazyRecordPatSpan(s) }

// LazyPathPatSpan is a handle to a path pattern (`Foo::Bar`).
type LazyPathPatSpan struct{ lazyNode }

func (LazyPathPatSpan) Shape() syntax.Kind { return syntax.KindPathPat }

func (s LazyPathPatSpan) Path() LazyPathSpan {
	return LazyPathSpan{s.field(syntax.FieldPath, syntax.KindPath)}
}

// LazyPathTuplePatSpan is a handle to a path-tuple pattern (`Some(x)`).
type LazyPathTuplePatSpan struct{ lazyNode }

func (LazyPathTuplePatSpan) Shape() syntax.Kind { return syntax.KindPathTuplePat }

func (s LazyPathTuplePatSpan) Path() LazyPathSpan {
	return LazyPathSpan{s.field(syntax.FieldPath, syntax.KindPath)}
}

func (s LazyPathTuplePatSpan) Elems() LazyPatListSpan {
	return LazyPatListSpan{s.field(syntax.FieldElems, syntax.KindPatList)}
}

// LazyPatListSpan is a handle to the element list of a path-tuple pattern.
type LazyPatListSpan struct{ lazyNode }

func (LazyPatListSpan) Shape() syntax.Kind { return syntax.KindPatList }

func (s LazyPatListSpan) Elem(i int) LazyPatSpan {
	return LazyPatSpan{s.child(i, syntax.KindPat)}
}

// LazyRecordPatSpan is a handle to a record pattern (`Point { x, y }`).
type LazyRecordPatSpan struct{ lazyNode }

func (LazyRecordPatSpan) Shape() syntax.Kind { return syntax.KindRecordPat }

func (s LazyRecordPatSpan) Path() LazyPathSpan {
	return LazyPathSpan{s.field(syntax.FieldPath, syntax.KindPath)}
}

func (s LazyRecordPatSpan) Fields() LazyRecordPatFieldListSpan {
	return LazyRecordPatFieldListSpan{s.field(syntax.FieldFields, syntax.KindRecordPatFieldList)}
}

// LazyRecordPatFieldListSpan is a handle to the braced field list of a record pattern.
type LazyRecordPatFieldListSpan struct{ lazyNode }

func (LazyRecordPatFieldListSpan) Shape() syntax.Kind { return syntax.KindRecordPatFieldList }

func (s LazyRecordPatFieldListSpan) Field(i int) LazyRecordPatFieldSpan {
	return LazyRecordPatFieldSpan{s.child(i, syntax.KindRecordPatField)}
}

// LazyRecordPatFieldSpan is a handle to one `name` or `name: pat` entry.
type LazyRecordPatFieldSpan struct{ lazyNode }

func (LazyRecordPatFieldSpan) Shape() syntax.Kind { return syntax.KindRecordPatField }

func (s LazyRecordPatFieldSpan) Name() LazySpanAtom {
	return s.token(syntax.TokenName)
}

// Pat is the sub-pattern after the colon; shorthand fields have none.
func (s LazyRecordPatFieldSpan) Pat() LazyPatSpan {
	return LazyPatSpan{s.field(syntax.FieldPat, syntax.KindPat)}
}
