// Package hir holds the semantic-side identities the span resolver starts from.
//
// Lowering assigns every pattern and expression of a body an opaque id and
// records, in the body's SourceMap, which syntax node the id came from. Ids
// are unique within their Body and die with it: when a file is reparsed the
// body is rebuilt under a new Generation and older ids stop resolving.
package hir

import "fmt"

// PatID identifies a pattern within a body.
type PatID uint32

// ExprID identifies an expression within a body.
type ExprID uint32

// ItemID identifies a top-level item within a snapshot.
type ItemID uint32

// BodyID identifies a body (function body, const initializer).
type BodyID uint32

// Generation increases every time a container is rebuilt.
type Generation uint64

// Invalid ID constants (zero is sentinel).
const (
	NoPatID  PatID  = 0
	NoExprID ExprID = 0
	NoItemID ItemID = 0
	NoBodyID BodyID = 0
)

func (id PatID) IsValid() bool  { return id != NoPatID }
func (id ExprID) IsValid() bool { return id != NoExprID }
func (id ItemID) IsValid() bool { return id != NoItemID }
func (id BodyID) IsValid() bool { return id != NoBodyID }

// NodeKind tags a NodeRef.
type NodeKind uint8

const (
	NodePat NodeKind = iota + 1
	NodeExpr
)

func (k NodeKind) String() string {
	switch k {
	case NodePat:
		return "pat"
	case NodeExpr:
		return "expr"
	default:
		return "node"
	}
}

// NodeRef is a kind-tagged semantic node id. Parent links in a SourceMap use
// it because a pattern's parent may be an expression and vice versa.
type NodeRef struct {
	Kind NodeKind
	ID   uint32
}

func PatRef(id PatID) NodeRef   { return NodeRef{Kind: NodePat, ID: uint32(id)} }
func ExprRef(id ExprID) NodeRef { return NodeRef{Kind: NodeExpr, ID: uint32(id)} }

func (r NodeRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}
