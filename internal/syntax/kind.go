package syntax

import "fmt"

// Kind is the syntactic shape of a node.
type Kind uint16

const (
	KindInvalid Kind = iota

	KindFile

	// Items.
	KindItem // abstract: any item
	KindFunc
	KindFuncParamList
	KindFuncParam

	// Paths.
	KindPath
	KindPathSegment

	// Patterns.
	KindPat // abstract: any pattern
	KindWildcardPat
	KindLitPat
	KindPathPat
	KindPathTuplePat
	KindRecordPat
	KindRangePat
	KindPatList
	KindRecordPatFieldList
	KindRecordPatField

	// Expressions.
	KindExpr // abstract: any expression
	KindLitExpr
	KindPathExpr
	KindCallExpr
	KindBinExpr
	KindFieldExpr
	KindRecordInitExpr
	KindMatchExpr
	KindBlockExpr
	KindCallArgList
	KindCallArg
	KindRecordFieldList
	KindRecordField
	KindMatchArmList
	KindMatchArm

	// Types.
	KindType // abstract: any type
	KindPathType
	KindTupleType

	kindCount
)

// Category groups kinds that an abstract kind stands for.
type Category uint8

const (
	CatOther Category = iota
	CatItem
	CatPat
	CatExpr
	CatType
)

type kindInfo struct {
	name     string
	cat      Category
	abstract bool
}

var kinds = [kindCount]kindInfo{
	KindInvalid:            {name: "invalid"},
	KindFile:               {name: "file"},
	KindItem:               {name: "item", cat: CatItem, abstract: true},
	KindFunc:               {name: "func", cat: CatItem},
	KindFuncParamList:      {name: "func_param_list"},
	KindFuncParam:          {name: "func_param"},
	KindPath:               {name: "path"},
	KindPathSegment:        {name: "path_segment"},
	KindPat:                {name: "pat", cat: CatPat, abstract: true},
	KindWildcardPat:        {name: "wildcard_pat", cat: CatPat},
	KindLitPat:             {name: "lit_pat", cat: CatPat},
	KindPathPat:            {name: "path_pat", cat: CatPat},
	KindPathTuplePat:       {name: "path_tuple_pat", cat: CatPat},
	KindRecordPat:          {name: "record_pat", cat: CatPat},
	KindRangePat:           {name: "range_pat", cat: CatPat},
	KindPatList:            {name: "pat_list"},
	KindRecordPatFieldList: {name: "record_pat_field_list"},
	KindRecordPatField:     {name: "record_pat_field"},
	KindExpr:               {name: "expr", cat: CatExpr, abstract: true},
	KindLitExpr:            {name: "lit_expr", cat: CatExpr},
	KindPathExpr:           {name: "path_expr", cat: CatExpr},
	KindCallExpr:           {name: "call_expr", cat: CatExpr},
	KindBinExpr:            {name: "bin_expr", cat: CatExpr},
	KindFieldExpr:          {name: "field_expr", cat: CatExpr},
	KindRecordInitExpr:     {name: "record_init_expr", cat: CatExpr},
	KindMatchExpr:          {name: "match_expr", cat: CatExpr},
	KindBlockExpr:          {name: "block_expr", cat: CatExpr},
	KindCallArgList:        {name: "call_arg_list"},
	KindCallArg:            {name: "call_arg"},
	KindRecordFieldList:    {name: "record_field_list"},
	KindRecordField:        {name: "record_field"},
	KindMatchArmList:       {name: "match_arm_list"},
	KindMatchArm:           {name: "match_arm"},
	KindType:               {name: "type", cat: CatType, abstract: true},
	KindPathType:           {name: "path_type", cat: CatType},
	KindTupleType:          {name: "tuple_type", cat: CatType},
}

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("kind(%d)", uint16(k))
	}
	return kinds[k].name
}

func (k Kind) Category() Category {
	if k >= kindCount {
		return CatOther
	}
	return kinds[k].cat
}

// IsAbstract reports whether k names a whole category rather than a concrete node.
func (k Kind) IsAbstract() bool {
	return k < kindCount && kinds[k].abstract
}

// Satisfies reports whether a node of kind k can stand where want is expected.
// An abstract want accepts every concrete kind of its category.
func (k Kind) Satisfies(want Kind) bool {
	if k == want {
		return true
	}
	return want.IsAbstract() && !k.IsAbstract() && k.Category() == want.Category()
}

// ParseKind maps a snake_case kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k := Kind(1); k < kindCount; k++ {
		if kinds[k].name == name {
			return k, true
		}
	}
	return KindInvalid, false
}
