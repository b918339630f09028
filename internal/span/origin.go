package span

import (
	"fmt"

	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/syntax"
)

// OriginStatus classifies a ResolvedOrigin.
type OriginStatus uint8

const (
	// OriginUnresolvable: nothing in the current snapshot locates the node.
	OriginUnresolvable OriginStatus = iota
	// OriginExact: the node maps to a syntax node of a file.
	OriginExact
	// OriginIndirect: the node was desugared or expanded; only a fallback may exist.
	OriginIndirect
)

func (s OriginStatus) String() string {
	switch s {
	case OriginExact:
		return "exact"
	case OriginIndirect:
		return "indirect"
	default:
		return "unresolvable"
	}
}

// ResolvedOrigin is the outcome of running a chain root. It holds coordinates
// into the snapshot, never text.
type ResolvedOrigin struct {
	Status      OriginStatus
	File        source.FileID
	Node        syntax.NodeID // OriginExact only
	Fallback    source.Span   // OriginIndirect with HasFallback
	HasFallback bool
	Reason      string
}

// ExactOrigin anchors a root at node in file.
func ExactOrigin(file source.FileID, node syntax.NodeID) ResolvedOrigin {
	return ResolvedOrigin{Status: OriginExact, File: file, Node: node}
}

// IndirectOrigin reports a desugared/expanded root with an optional fallback range.
func IndirectOrigin(fallback source.Span, ok bool, reason string) ResolvedOrigin {
	return ResolvedOrigin{Status: OriginIndirect, File: fallback.File, Fallback: fallback, HasFallback: ok, Reason: reason}
}

// UnresolvableOrigin reports a root nothing can locate.
func UnresolvableOrigin(reason string) ResolvedOrigin {
	return ResolvedOrigin{Status: OriginUnresolvable, Reason: reason}
}

// resolveInBody maps ref through the source map of body.
//
// A node with a raw origin resolves exactly. A desugared or expanded node
// falls back to the construct it came from, else to its nearest ancestor that
// has a raw origin or a construct. A node missing from the map entirely is
// unresolvable unless such an ancestor exists.
func resolveInBody(db DB, body hir.Body, ref hir.NodeRef) ResolvedOrigin {
	smap, ok := db.BodySourceMap(body)
	if !ok {
		return UnresolvableOrigin(fmt.Sprintf("%s superseded", body))
	}
	tree, ok := db.Tree(body.File)
	if !ok {
		return UnresolvableOrigin(fmt.Sprintf("no syntax tree for file %d", body.File))
	}

	origin, recorded := smap.NodeToSource(ref)
	if recorded && origin.IsDirect() {
		return ExactOrigin(body.File, origin.Node)
	}

	if recorded && origin.HasConstruct() {
		if sp, ok := tree.Span(origin.Node); ok {
			return IndirectOrigin(sp, true, origin.Kind.String())
		}
	}

	if sp, ok := nearestMappedAncestor(tree, smap, ref); ok {
		reason := "no source map entry"
		if recorded {
			reason = origin.Kind.String()
		}
		return IndirectOrigin(sp, true, reason)
	}
	if recorded {
		return IndirectOrigin(source.Span{File: body.File}, false, origin.Kind.String())
	}
	return UnresolvableOrigin(fmt.Sprintf("%s has no origin in %s", ref, body))
}

// nearestMappedAncestor walks semantic parent links. The walk is bounded by
// the number of links so a malformed map cannot loop forever.
func nearestMappedAncestor(tree *syntax.Tree, smap *hir.SourceMap, ref hir.NodeRef) (source.Span, bool) {
	cur := ref
	for range smap.Links() {
		parent, ok := smap.Parent(cur)
		if !ok {
			break
		}
		if o, ok := smap.NodeToSource(parent); ok && (o.IsDirect() || o.HasConstruct()) {
			if sp, ok := tree.Span(o.Node); ok {
				return sp, true
			}
		}
		cur = parent
	}
	return source.Span{}, false
}
