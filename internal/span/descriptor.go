package span

import (
	"fmt"

	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/syntax"
)

// RootKind tags a RootDescriptor.
type RootKind uint8

const (
	RootPat RootKind = iota + 1
	RootExpr
	RootItem
)

// RootDescriptor is a chain root as plain data. Hosts that keep handles in
// long-lived storage copy it into their own records.
type RootDescriptor struct {
	Kind      RootKind
	ID        uint32
	Container uint32 // body id; unused for items
	Gen       uint64
	File      uint32
}

// Initiator rebuilds the root the descriptor was taken from.
func (d RootDescriptor) Initiator() (ChainInitiator, error) {
	file := source.FileID(d.File)
	gen := hir.Generation(d.Gen)
	switch d.Kind {
	case RootPat:
		return patRoot{pat: hir.PatID(d.ID), body: hir.Body{ID: hir.BodyID(d.Container), Gen: gen, File: file}}, nil
	case RootExpr:
		return exprRoot{expr: hir.ExprID(d.ID), body: hir.Body{ID: hir.BodyID(d.Container), Gen: gen, File: file}}, nil
	case RootItem:
		return itemRoot{item: hir.Item{ID: hir.ItemID(d.ID), Gen: gen, File: file}}, nil
	default:
		return nil, fmt.Errorf("unknown root kind %d", d.Kind)
	}
}

// ChainFromParts rebuilds a chain from a root descriptor and its steps.
func ChainFromParts(root RootDescriptor, steps []Transition) (Chain, error) {
	init, err := root.Initiator()
	if err != nil {
		return Chain{}, err
	}
	c := NewChain(init)
	for i, st := range steps {
		switch st.Kind {
		case NamedField, NamedToken:
			if st.Name == "" {
				return Chain{}, fmt.Errorf("step %d: empty name", i)
			}
		case IndexedChild:
			if st.Index < 0 {
				return Chain{}, fmt.Errorf("step %d: negative index", i)
			}
		default:
			return Chain{}, fmt.Errorf("step %d: unknown transition kind %d", i, st.Kind)
		}
		if st.Kind == NamedToken {
			st.Yields = syntax.KindInvalid
		}
		c = c.Append(st)
	}
	return c, nil
}

// RootCurrent reports whether the container named by d is still current in db.
// Handles whose root is not current resolve as Unresolvable.
func RootCurrent(db DB, d RootDescriptor) bool {
	gen := hir.Generation(d.Gen)
	file := source.FileID(d.File)
	switch d.Kind {
	case RootPat, RootExpr:
		_, ok := db.BodySourceMap(hir.Body{ID: hir.BodyID(d.Container), Gen: gen, File: file})
		return ok
	case RootItem:
		_, ok := db.ItemSource(hir.Item{ID: hir.ItemID(d.ID), Gen: gen, File: file})
		return ok
	default:
		return false
	}
}
