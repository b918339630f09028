package span

import (
	"spanres/internal/source"
	"spanres/internal/syntax"
)

// LazySpan is implemented by every handle type of this package and nothing else.
type LazySpan interface {
	Chain() Chain
	// Shape is the node kind the handle stands for.
	Shape() syntax.Kind
	Resolve(db DB) (source.Span, error)
	lazySpan()
}

// lazyNode is embedded by every handle type. Its helpers are unexported so
// accessors exist only where a handle type declares them.
type lazyNode struct {
	chain Chain
}

func (n lazyNode) Chain() Chain { return n.chain }

func (n lazyNode) Resolve(db DB) (source.Span, error) { return n.chain.Resolve(db) }

func (lazyNode) lazySpan() {}

func (n lazyNode) field(name string, yields syntax.Kind) lazyNode {
	return lazyNode{chain: n.chain.Append(FieldStep(name, yields))}
}

func (n lazyNode) child(i int, yields syntax.Kind) lazyNode {
	return lazyNode{chain: n.chain.Append(ChildStep(i, yields))}
}

func (n lazyNode) token(name string) LazySpanAtom {
	return LazySpanAtom{lazyNode{chain: n.chain.Append(TokenStep(name))}}
}

// LazySpanAtom is a handle to a single token. It has no accessors.
type LazySpanAtom struct{ lazyNode }

func (LazySpanAtom) Shape() syntax.Kind { return syntax.KindInvalid }

// LazyDetachedSpan wraps a chain whose handle type was lost, e.g. one
// reloaded from a cache. It can only be resolved.
type LazyDetachedSpan struct{ lazyNode }

// Detached wraps c without any accessors.
func Detached(c Chain) LazyDetachedSpan { return LazyDetachedSpan{lazyNode{chain: c}} }

func (s LazyDetachedSpan) Shape() syntax.Kind { return s.chain.Shape() }
