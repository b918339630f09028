package span

import (
	"context"
	"errors"

	"spanres/internal/source"
	"spanres/internal/syntax"
	"spanres/internal/trace"
)

// Resolve evaluates the chain of node against db.
func Resolve(db DB, node LazySpan) (source.Span, error) {
	return node.Chain().Resolve(db)
}

// Resolve evaluates the chain: it runs the root, then applies every
// transition left to right. The first failure ends evaluation.
func (c Chain) Resolve(db DB) (source.Span, error) {
	return c.evaluate(db, nil)
}

// StepTrace is one row of Explain: the range reached after a step.
// Index -1 is the root.
type StepTrace struct {
	Index int
	Label string
	Span  source.Span
	Err   error
}

// Explain evaluates the chain of node and reports the range after the root
// and after each transition. The last row carries the error, if any.
func Explain(db DB, node LazySpan) []StepTrace {
	c := node.Chain()
	rows := make([]StepTrace, 0, c.Len()+1)
	_, err := c.evaluate(db, func(i int, sp source.Span) {
		label := "root " + c.rootString()
		if i >= 0 {
			label = c.steps[i].String()
		}
		rows = append(rows, StepTrace{Index: i, Label: label, Span: sp})
	})
	if err != nil {
		idx := -1
		label := "root " + c.rootString()
		var se *StepError
		if errors.As(err, &se) && se.Index >= 0 {
			idx = se.Index
			label = se.Step.String()
		}
		rows = append(rows, StepTrace{Index: idx, Label: label, Err: err})
	}
	return rows
}

type cursor struct {
	node    syntax.NodeID
	token   source.Span
	isToken bool
}

func (c Chain) rootString() string {
	if c.root == nil {
		return "<nil>"
	}
	return c.root.String()
}

func (c Chain) evaluate(db DB, visit func(i int, sp source.Span)) (source.Span, error) {
	if c.root == nil {
		return source.Span{}, &UnresolvableOriginError{Root: "<nil>", Reason: "chain has no root"}
	}
	rootName := c.root.String()

	origin := c.root.Init(db)
	switch origin.Status {
	case OriginExact:
	case OriginIndirect:
		return source.Span{}, &DesugaredError{Root: rootName, Reason: origin.Reason, Fallback: origin.Fallback, HasFallback: origin.HasFallback}
	default:
		return source.Span{}, &UnresolvableOriginError{Root: rootName, Reason: origin.Reason}
	}

	tree, ok := db.Tree(origin.File)
	if !ok {
		return source.Span{}, &StepError{Root: rootName, Index: -1, Reason: ReasonMissingTree}
	}
	if found := tree.Kind(origin.Node); !found.Satisfies(c.root.Shape()) {
		return source.Span{}, &StepError{Root: rootName, Index: -1, Reason: ReasonShapeMismatch, Found: found}
	}

	cur := cursor{node: origin.Node}
	if visit != nil {
		sp, _ := tree.Span(cur.node)
		visit(-1, sp)
	}
	for i, st := range c.steps {
		next, reason, found := apply(tree, cur, st)
		if reason != 0 {
			return source.Span{}, &StepError{Root: rootName, Index: i, Step: st, Reason: reason, Found: found}
		}
		cur = next
		if visit != nil {
			visit(i, cur.span(tree))
		}
	}
	return cur.span(tree), nil
}

func (cur cursor) span(tree *syntax.Tree) source.Span {
	if cur.isToken {
		return cur.token
	}
	sp, _ := tree.Span(cur.node)
	return sp
}

func apply(tree *syntax.Tree, cur cursor, st Transition) (cursor, StepReason, syntax.Kind) {
	if cur.isToken {
		return cur, ReasonTokenHasNoChildren, syntax.KindInvalid
	}
	var (
		next syntax.NodeID
		ok   bool
	)
	switch st.Kind {
	case NamedField:
		if next, ok = tree.Field(cur.node, st.Name); !ok {
			return cur, ReasonMissingField, syntax.KindInvalid
		}
	case IndexedChild:
		if next, ok = tree.Child(cur.node, st.Index); !ok {
			return cur, ReasonIndexOutOfRange, syntax.KindInvalid
		}
	case NamedToken:
		tok, ok := tree.Token(cur.node, st.Name)
		if !ok {
			return cur, ReasonMissingToken, syntax.KindInvalid
		}
		return cursor{token: tok, isToken: true}, 0, syntax.KindInvalid
	default:
		return cur, ReasonShapeMismatch, syntax.KindInvalid
	}
	if st.Yields != syntax.KindInvalid {
		if found := tree.Kind(next); !found.Satisfies(st.Yields) {
			return cur, ReasonShapeMismatch, found
		}
	}
	return cursor{node: next}, 0, syntax.KindInvalid
}

// Resolver resolves handles and reports each resolution to a tracer.
type Resolver struct {
	DB     DB
	Tracer trace.Tracer
}

// NewResolver creates a Resolver; a nil tracer means the one in the context.
func NewResolver(db DB, t trace.Tracer) *Resolver {
	return &Resolver{DB: db, Tracer: t}
}

// Resolve evaluates node. The context only carries tracing state; resolution
// never blocks.
func (r *Resolver) Resolve(ctx context.Context, node LazySpan) (source.Span, error) {
	tr := r.Tracer
	if tr == nil {
		tr = trace.FromContext(ctx)
	}
	chain := node.Chain()
	sp := trace.Begin(tr, trace.ScopeChain, "resolve", trace.ParentID(ctx))
	res, err := chain.Resolve(r.DB)
	if tr.Enabled() {
		sp.Str("chain", chain.String()).Int("steps", chain.Len())
		if err != nil {
			sp.Str("failure", Classify(err).String())
			sp.End(err.Error())
		} else {
			sp.End(res.String())
		}
	}
	return res, err
}
