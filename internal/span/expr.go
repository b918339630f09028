package span

import (
	"spanres/internal/hir"
	"spanres/internal/syntax"
)

// LazyExprSpan is a handle to any expression of a body.
type LazyExprSpan struct{ lazyNode }

// NewLazyExprSpan starts a chain at expression expr of body.
func NewLazyExprSpan(expr hir.ExprID, body hir.Body) LazyExprSpan {
	return LazyExprSpan{lazyNode{chain: NewChain(exprRoot{expr: expr, body: body})}}
}

func (LazyExprSpan) Shape() syntax.Kind { return syntax.KindExpr }

func (s LazyExprSpan) IntoCallExpr() LazyCallExprSpan             { return LazyCallExprSpan(s) }
func (s LazyExprSpan) IntoBinExpr() LazyBinExprSpan               { return LazyBinExprSpan(s) }
func (s LazyExprSpan) IntoFieldExpr() LazyFieldExprSpan           { return LazyFieldExprSpan(s) }
func (s LazyExprSpan) IntoRecordInitExpr() LazyRecordInitExprSpan { return LazyRecordInitExprSpan(s) }
func (s LazyExprSpan) IntoPathExpr() LazyPathExprSpan             { return LazyPathExprSpan(s) }
func (s LazyExprSpan) IntoMatchExpr() LazyMatchExprSpan           { return LazyMatchExprSpan(s) }

type LazyCallExprSpan struct{ lazyNode }

func (LazyCallExprSpan) Shape() syntax.Kind { return syntax.KindCallExpr }

func (s LazyCallExprSpan) Callee() LazyExprSpan {
	return LazyExprSpan{s.field(syntax.FieldCallee, syntax.KindExpr)}
}

func (s LazyCallExprSpan) Args() LazyCallArgListSpan {
	return LazyCallArgListSpan{s.field(syntax.FieldArgs, syntax.KindCallArgList)}
}

type LazyCallArgListSpan struct{ lazyNode }

func (LazyCallArgListSpan) Shape() syntax.Kind { return syntax.KindCallArgList }

func (s LazyCallArgListSpan) Arg(i int) LazyCallArgSpan {
	return LazyCallArgSpan{s.child(i, syntax.KindCallArg)}
}

type LazyCallArgSpan struct{ lazyNode }

func (LazyCallArgSpan) Shape() syntax.Kind { return syntax.KindCallArg }

// Label is the `name:` part of a labelled argument.
func (s LazyCallArgSpan) Label() LazySpanAtom { return s.token(syntax.TokenLabel) }

func (s LazyCallArgSpan) Expr() LazyExprSpan {
	return LazyExprSpan{s.field(syntax.FieldExpr, syntax.KindExpr)}
}

type LazyBinExprSpan struct{ lazyNode }

func (LazyBinExprSpan) Shape() syntax.Kind { return syntax.KindBinExpr }

func (s LazyBinExprSpan) Lhs() LazyExprSpan {
	return LazyExprSpan{s.field(syntax.FieldLhs, syntax.KindExpr)}
}

func (s LazyBinExprSpan) Op() LazySpanAtom { return s.token(syntax.TokenOp) }

func (s LazyBinExprSpan) Rhs() LazyExprSpan {
	return LazyExprSpan{s.field(syntax.FieldRhs, syntax.KindExpr)}
}

type LazyFieldExprSpan struct{ lazyNode }

func (LazyFieldExprSpan) Shape() syntax.Kind { return syntax.KindFieldExpr }

func (s LazyFieldExprSpan) Receiver() LazyExprSpan {
	return LazyExprSpan{s.field(syntax.FieldReceiver, syntax.KindExpr)}
}

func (s LazyFieldExprSpan) Name() LazySpanAtom { return s.token(syntax.TokenName) }

type LazyRecordInitExprSpan struct{ lazyNode }

func (LazyRecordInitExprSpan) Shape() syntax.Kind { return syntax.KindRecordInitExpr }

func (s LazyRecordInitExprSpan) Path() LazyPathSpan {
	return LazyPathSpan{s.field(syntax.FieldPath, syntax.KindPath)}
}

func (s LazyRecordInitExprSpan) Fields() LazyRecordFieldListSpan {
	return LazyRecordFieldListSpan{s.field(syntax.FieldFields, syntax.KindRecordFieldList)}
}

type LazyRecordFieldListSpan struct{ lazyNode }

func (LazyRecordFieldListSpan) Shape() syntax.Kind { return syntax.KindRecordFieldList }

func (s LazyRecordFieldListSpan) Field(i int) LazyRecordFieldSpan {
	return LazyRecordFieldSpan{s.child(i, syntax.KindRecordField)}
}

type LazyRecordFieldSpan struct{ lazyNode }

func (LazyRecordFieldSpan) Shape() syntax.Kind { return syntax.KindRecordField }

func (s LazyRecordFieldSpan) Label() LazySpanAtom { return s.token(syntax.TokenLabel) }

func (s LazyRecordFieldSpan) Expr() LazyExprSpan {
	return LazyExprSpan{s.field(syntax.FieldExpr, syntax.KindExpr)}
}

type LazyPathExprSpan struct{ lazyNode }

func (LazyPathExprSpan) Shape() syntax.Kind { return syntax.KindPathExpr }

func (s LazyPathExprSpan) Path() LazyPathSpan {
	return LazyPathSpan{s.field(syntax.FieldPath, syntax.KindPath)}
}

type LazyMatchExprSpan struct{ lazyNode }

func (LazyMatchExprSpan) Shape() syntax.Kind { return syntax.KindMatchExpr }

func (s LazyMatchExprSpan) Scrutinee() LazyExprSpan {
	return LazyExprSpan{s.field(syntax.FieldScrut, syntax.KindExpr)}
}

func (s LazyMatchExprSpan) Arms() LazyMatchArmListSpan {
	return LazyMatchArmListSpan{s.field(syntax.FieldArms, syntax.KindMatchArmList)}
}

type LazyMatchArmListSpan struct{ lazyNode }

func (LazyMatchArmListSpan) Shape() syntax.Kind { return syntax.KindMatchArmList }

func (s LazyMatchArmListSpan) Arm(i int) LazyMatchArmSpan {
	return LazyMatchArmSpan{s.child(i, syntax.KindMatchArm)}
}

type LazyMatchArmSpan struct{ lazyNode }

func (LazyMatchArmSpan) Shape() syntax.Kind { return syntax.KindMatchArm }

func (s LazyMatchArmSpan) Pat() LazyPatSpan {
	return LazyPatSpan{s.field(syntax.FieldPat, syntax.KindPat)}
}

func (s LazyMatchArmSpan) Body() LazyExprSpan {
	return LazyExprSpan{s.field(syntax.FieldBody, syntax.KindExpr)}
}
