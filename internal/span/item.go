package span

import (
	"spanres/internal/hir"
	"spanres/internal/syntax"
)

// LazyItemSpan is a handle to any top-level item.
type LazyItemSpan struct{ lazyNode }

// NewLazyItemSpan starts a chain at item.
func NewLazyItemSpan(item hir.Item) LazyItemSpan {
	return LazyItemSpan{lazyNode{chain: NewChain(itemRoot{item: item})}}
}

// NewLazyFuncSpan starts a chain at item, which the caller knows is a function.
func NewLazyFuncSpan(item hir.Item) LazyFuncSpan {
	return NewLazyItemSpan(item).IntoFunc()
}

func (LazyItemSpan) Shape() syntax.Kind { return syntax.KindItem }

func (s LazyItemSpan) IntoFunc() LazyFuncSpan { return LazyFuncSpan(s) }

type LazyFuncSpan struct{ lazyNode }

func (LazyFuncSpan) Shape() syntax.Kind { return syntax.KindFunc }

func (s LazyFuncSpan) Name() LazySpanAtom { return s.token(syntax.TokenName) }

func (s LazyFuncSpan) Params() LazyFuncParamListSpan {
	return LazyFuncParamListSpan{s.field(syntax.FieldParams, syntax.KindFuncParamList)}
}

func (s LazyFuncSpan) RetTy() LazyTySpan {
	return LazyTySpan{s.field(syntax.FieldRetTy, syntax.KindType)}
}

type LazyFuncParamListSpan struct{ lazyNode }

func (LazyFuncParamListSpan) Shape() syntax.Kind { return syntax.KindFuncParamList }

func (s LazyFuncParamListSpan) Param(i int) LazyFuncParamSpan {
	return LazyFuncParamSpan{s.child(i, syntax.KindFuncParam)}
}

type LazyFuncParamSpan struct{ lazyNode }

func (LazyFuncParamSpan) Shape() syntax.Kind { return syntax.KindFuncParam }

func (s LazyFuncParamSpan) Name() LazySpanAtom { return s.token(syntax.TokenName) }

func (s LazyFuncParamSpan) Ty() LazyTySpan {
	return LazyTySpan{s.field(syntax.FieldTy, syntax.KindType)}
}

// LazyTySpan is a handle to any type expression.
type LazyTySpan struct{ lazyNode }

func (LazyTySpan) Shape() syntax.Kind { return syntax.KindType }

func (s LazyTySpan) IntoPathType() LazyPathTypeSpan { return LazyPathTypeSpan(s) }

type LazyPathTypeSpan struct{ lazyNode }

func (LazyPathTypeSpan) Shape() syntax.Kind { return syntax.KindPathType }

func (s LazyPathTypeSpan) Path() LazyPathSpan {
	return LazyPathSpan{s.field(syntax.FieldPath, syntax.KindPath)}
}

var (
	_ LazySpan = LazySpanAtom{}
	_ LazySpan = LazyDetachedSpan{}
	_ LazySpan = LazyPatSpan{}
	_ LazySpan = LazyPathPatSpan{}
	_ LazySpan = LazyPathTuplePatSpan{}
	_ LazySpan = LazyPatListSpan{}
	_ LazySpan = LazyRecordPatSpan{}
	_ LazySpan = LazyRecordPatFieldListSpan{}
	_ LazySpan = LazyRecordPatFieldSpan{}
	_ LazySpan = LazyPathSpan{}
	_ LazySpan = LazyPathSegmentSpan{}
	_ LazySpan = LazyExprSpan{}
	_ LazySpan = LazyCallExprSpan{}
	_ LazySpan = LazyCallArgListSpan{}
	_ LazySpan = LazyCallArgSpan{}
	_ LazySpan = LazyBinExprSpan{}
	_ LazySpan = LazyFieldExprSpan{}
	_ LazySpan = LazyRecordInitExprSpan{}
	_ LazySpan = LazyRecordFieldListSpan{}
	_ LazySpan = LazyRecordFieldSpan{}
	_ LazySpan = LazyPathExprSpan{}
	_ LazySpan = LazyMatchExprSpan{}
	_ LazySpan = LazyMatchArmListSpan{}
	_ LazySpan = LazyMatchArmSpan{}
	_ LazySpan = LazyItemSpan{}
	_ LazySpan = LazyFuncSpan{}
	_ LazySpan = LazyFuncParamListSpan{}
	_ LazySpan = LazyFuncParamSpan{}
	_ LazySpan = LazyTySpan{}
	_ LazySpan = LazyPathTypeSpan{}
)
