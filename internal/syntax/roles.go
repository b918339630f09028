package syntax

// Field roles: named child nodes.
const (
	FieldPath     = "path"
	FieldFields   = "fields"
	FieldElems    = "elems"
	FieldPat      = "pat"
	FieldCallee   = "callee"
	FieldArgs     = "args"
	FieldExpr     = "expr"
	FieldLhs      = "lhs"
	FieldRhs      = "rhs"
	FieldReceiver = "receiver"
	FieldParams   = "params"
	FieldRetTy    = "ret_ty"
	FieldTy       = "ty"
	FieldBody     = "body"
	FieldScrut    = "scrutinee"
	FieldArms     = "arms"
	FieldStart    = "start"
	FieldEnd      = "end"
)

// Token roles: named leaf tokens.
const (
	TokenName  = "name"
	TokenIdent = "ident"
	TokenLabel = "label"
	TokenOp    = "op"
	TokenLit   = "lit"
)

// Shape lists the roles a node kind may carry. The table is fixed at compile
// time and is used to validate trees built by hand (fixtures, tests).
type Shape struct {
	Fields []string
	Tokens []string
	List   bool // ordered children allowed
}

var shapes = [kindCount]Shape{
	KindFile:               {List: true},
	KindFunc:               {Fields: []string{FieldParams, FieldRetTy, FieldBody}, Tokens: []string{TokenName}},
	KindFuncParamList:      {List: true},
	KindFuncParam:          {Fields: []string{FieldTy}, Tokens: []string{TokenName}},
	KindPath:               {List: true},
	KindPathSegment:        {Tokens: []string{TokenIdent}},
	KindWildcardPat:        {},
	KindLitPat:             {Tokens: []string{TokenLit}},
	KindPathPat:            {Fields: []string{FieldPath}},
	KindPathTuplePat:       {Fields: []string{FieldPath, FieldElems}},
	KindRecordPat:          {Fields: []string{FieldPath, FieldFields}},
	KindRangePat:           {Fields: []string{FieldStart, FieldEnd}, Tokens: []string{TokenOp}},
	KindPatList:            {List: true},
	KindRecordPatFieldList: {List: true},
	KindRecordPatField:     {Fields: []string{FieldPat}, Tokens: []string{TokenName}},
	KindLitExpr:            {Tokens: []string{TokenLit}},
	KindPathExpr:           {Fields: []string{FieldPath}},
	KindCallExpr:           {Fields: []string{FieldCallee, FieldArgs}},
	KindBinExpr:            {Fields: []string{FieldLhs, FieldRhs}, Tokens: []string{TokenOp}},
	KindFieldExpr:          {Fields: []string{FieldReceiver}, Tokens: []string{TokenName}},
	KindRecordInitExpr:     {Fields: []string{FieldPath, FieldFields}},
	KindMatchExpr:          {Fields: []string{FieldScrut, FieldArms}},
	KindBlockExpr:          {List: true},
	KindCallArgList:        {List: true},
	KindCallArg:            {Fields: []string{FieldExpr}, Tokens: []string{TokenLabel}},
	KindRecordFieldList:    {List: true},
	KindRecordField:        {Fields: []string{FieldExpr}, Tokens: []string{TokenLabel}},
	KindMatchArmList:       {List: true},
	KindMatchArm:           {Fields: []string{FieldPat, FieldBody}},
	KindPathType:           {Fields: []string{FieldPath}},
	KindTupleType:          {List: true},
}

// ShapeOf returns the declared shape of k.
func ShapeOf(k Kind) Shape {
	if k >= kindCount {
		return Shape{}
	}
	return shapes[k]
}

// HasField reports whether the shape declares the named field.
func (s Shape) HasField(name string) bool {
	for _, f := range s.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// HasToken reports whether the shape declares the named token.
func (s Shape) HasToken(name string) bool {
	for _, tok := range s.Tokens {
		if tok == name {
			return true
		}
	}
	return false
}
