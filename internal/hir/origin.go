package hir

import (
	"fmt"

	"spanres/internal/syntax"
)

// OriginKind says how a semantic node relates to syntax.
type OriginKind uint8

const (
	// OriginNone marks a node that was synthesized with no syntactic counterpart.
	OriginNone OriginKind = iota
	// OriginRaw points at the syntax node the semantic node was lowered from.
	OriginRaw
	// OriginDesugared marks a node produced by desugaring; Node is the construct it came from, if known.
	OriginDesugared
	// OriginExpanded marks a node produced by expansion; Node is the construct it came from, if known.
	OriginExpanded
)

func (k OriginKind) String() string {
	switch k {
	case OriginNone:
		return "none"
	case OriginRaw:
		return "raw"
	case OriginDesugared:
		return "desugared"
	case OriginExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}

// Origin is the provenance lowering records for one semantic node.
type Origin struct {
	Kind OriginKind
	Node syntax.NodeID
}

func Raw(node syntax.NodeID) Origin { return Origin{Kind: OriginRaw, Node: node} }

// Desugared records a node built from construct; pass syntax.NoNodeID when unknown.
func Desugared(construct syntax.NodeID) Origin {
	return Origin{Kind: OriginDesugared, Node: construct}
}

// Expanded records a node built by expanding construct.
func Expanded(construct syntax.NodeID) Origin {
	return Origin{Kind: OriginExpanded, Node: construct}
}

// IsDirect reports whether the origin names the node's own syntax.
func (o Origin) IsDirect() bool {
	return o.Kind == OriginRaw && o.Node.IsValid()
}

// HasConstruct reports whether an indirect origin still names some syntax to fall back to.
func (o Origin) HasConstruct() bool {
	return (o.Kind == OriginDesugared || o.Kind == OriginExpanded) && o.Node.IsValid()
}

func (o Origin) String() string {
	if o.Node.IsValid() {
		return fmt.Sprintf("%s(%d)", o.Kind, o.Node)
	}
	return o.Kind.String()
}
