package span

import (
	"fmt"

	"spanres/internal/hir"
	"spanres/internal/syntax"
)

// ChainInitiator identifies a semantic entity and its container and produces
// the origin a chain starts from. Init must be pure: it reads db and nothing else.
type ChainInitiator interface {
	Init(db DB) ResolvedOrigin
	// Shape is the node kind the root statically resolves to.
	Shape() syntax.Kind
	// Descriptor returns the plain-data form of the root.
	Descriptor() RootDescriptor
	String() string
}

type patRoot struct {
	pat  hir.PatID
	body hir.Body
}

func (r patRoot) Init(db DB) ResolvedOrigin {
	return resolveInBody(db, r.body, hir.PatRef(r.pat))
}

func (patRoot) Shape() syntax.Kind { return syntax.KindPat }

func (r patRoot) Descriptor() RootDescriptor {
	return RootDescriptor{Kind: RootPat, ID: uint32(r.pat), Container: uint32(r.body.ID), Gen: uint64(r.body.Gen), File: uint32(r.body.File)}
}

func (r patRoot) String() string { return fmt.Sprintf("pat#%d@%s", r.pat, r.body) }

type exprRoot struct {
	expr hir.ExprID
	body hir.Body
}

func (r exprRoot) Init(db DB) ResolvedOrigin {
	return resolveInBody(db, r.body, hir.ExprRef(r.expr))
}

func (exprRoot) Shape() syntax.Kind { return syntax.KindExpr }

func (r exprRoot) Descriptor() RootDescriptor {
	return RootDescriptor{Kind: RootExpr, ID: uint32(r.expr), Container: uint32(r.body.ID), Gen: uint64(r.body.Gen), File: uint32(r.body.File)}
}

func (r exprRoot) String() string { return fmt.Sprintf("expr#%d@%s", r.expr, r.body) }

type itemRoot struct {
	item hir.Item
}

func (r itemRoot) Init(db DB) ResolvedOrigin {
	origin, ok := db.ItemSource(r.item)
	if !ok {
		return UnresolvableOrigin(fmt.Sprintf("%s superseded", r.item))
	}
	if !origin.IsDirect() {
		return UnresolvableOrigin(fmt.Sprintf("%s has no direct origin", r.item))
	}
	return ExactOrigin(r.item.File, origin.Node)
}

func (itemRoot) Shape() syntax.Kind { return syntax.KindItem }

func (r itemRoot) Descriptor() RootDescriptor {
	return RootDescriptor{Kind: RootItem, ID: uint32(r.item.ID), Gen: uint64(r.item.Gen), File: uint32(r.item.File)}
}

func (r itemRoot) String() string { return fmt.Sprintf("item#%d.g%d", r.item.ID, r.item.Gen) }
