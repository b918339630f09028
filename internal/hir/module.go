package hir

import (
	"fmt"

	"spanres/internal/source"
)

// Body is a semantic container: it owns a node-id space and a SourceMap.
// The value is comparable and fixes the generation it was taken from.
type Body struct {
	ID   BodyID
	Gen  Generation
	File source.FileID // top module file origins are anchored in
}

func (b Body) String() string {
	return fmt.Sprintf("body%d.g%d", b.ID, b.Gen)
}

// Item is a top-level item. Items map straight to syntax nodes without a body.
type Item struct {
	ID   ItemID
	Gen  Generation
	File source.FileID
}

func (it Item) String() string {
	return fmt.Sprintf("item%d.g%d", it.ID, it.Gen)
}

// PatKind is the semantic shape of a pattern as seen by analysis.
type PatKind uint8

const (
	PatWildcard PatKind = iota + 1
	PatLit
	PatPath
	PatPathTuple
	PatRecord
	PatRange
)

func (k PatKind) String() string {
	switch k {
	case PatWildcard:
		return "wildcard"
	case PatLit:
		return "lit"
	case PatPath:
		return "path"
	case PatPathTuple:
		return "path_tuple"
	case PatRecord:
		return "record"
	case PatRange:
		return "range"
	default:
		return "unknown"
	}
}

// ExprKind is the semantic shape of an expression.
type ExprKind uint8

const (
	ExprLit ExprKind = iota + 1
	ExprPath
	ExprCall
	ExprBin
	ExprField
	ExprRecordInit
	ExprMatch
	ExprBlock
)

func (k ExprKind) String() string {
	switch k {
	case ExprLit:
		return "lit"
	case ExprPath:
		return "path"
	case ExprCall:
		return "call"
	case ExprBin:
		return "bin"
	case ExprField:
		return "field"
	case ExprRecordInit:
		return "record_init"
	case ExprMatch:
		return "match"
	case ExprBlock:
		return "block"
	default:
		return "unknown"
	}
}

// ParsePatKind maps a name produced by PatKind.String back to the kind.
func ParsePatKind(s string) (PatKind, bool) {
	for k := PatWildcard; k <= PatRange; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// ParseExprKind maps a name produced by ExprKind.String back to the kind.
func ParseExprKind(s string) (ExprKind, bool) {
	for k := ExprLit; k <= ExprBlock; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}
