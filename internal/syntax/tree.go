package syntax

import (
	"spanres/internal/source"
)

// NodeID addresses a node inside one Tree. Zero is the invalid id.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

type fieldEdge struct {
	name  source.StringID
	child NodeID
}

type tokenEdge struct {
	name source.StringID
	span source.Span
}

// Node is one syntax node. Role lookups go through Tree, which owns the names.
type Node struct {
	Kind     Kind
	Span     source.Span
	Parent   NodeID
	fields   []fieldEdge
	children []NodeID
	tokens   []tokenEdge
}

// Tree is the syntax tree of one file. It is mutated only while being built;
// afterwards every method is safe for concurrent readers.
type Tree struct {
	File  source.FileID
	Root  NodeID
	nodes *Arena[Node]
	names *source.Interner
}

// NewTree creates an empty tree for file.
func NewTree(file source.FileID) *Tree {
	return &Tree{
		File:  file,
		nodes: NewArena[Node](64),
		names: source.NewInterner(),
	}
}

// NewNode allocates a node covering [start, end). The first node becomes the root.
func (t *Tree) NewNode(kind Kind, start, end uint32) NodeID {
	id := NodeID(t.nodes.Allocate(Node{
		Kind: kind,
		Span: source.Span{File: t.File, Start: start, End: end},
	}))
	if t.Root == NoNodeID {
		t.Root = id
	}
	return id
}

// SetField attaches child under the named field of parent, replacing any previous child.
func (t *Tree) SetField(parent NodeID, name string, child NodeID) {
	p := t.nodes.Get(uint32(parent))
	if p == nil {
		return
	}
	key := t.names.Intern(name)
	t.adopt(parent, child)
	for i := range p.fields {
		if p.fields[i].name == key {
			p.fields[i].child = child
			return
		}
	}
	p.fields = append(p.fields, fieldEdge{name: key, child: child})
}

// AppendChild adds child to the ordered child list of parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	p := t.nodes.Get(uint32(parent))
	if p == nil {
		return
	}
	t.adopt(parent, child)
	p.children = append(p.children, child)
}

// SetToken records a leaf token with the given role on node.
func (t *Tree) SetToken(node NodeID, name string, start, end uint32) {
	n := t.nodes.Get(uint32(node))
	if n == nil {
		return
	}
	key := t.names.Intern(name)
	sp := source.Span{File: t.File, Start: start, End: end}
	for i := range n.tokens {
		if n.tokens[i].name == key {
			n.tokens[i].span = sp
			return
		}
	}
	n.tokens = append(n.tokens, tokenEdge{name: key, span: sp})
}

// RemoveChild drops the i-th list element of parent. It models an edit that
// shrinks a list between two analyses.
func (t *Tree) RemoveChild(parent NodeID, i int) bool {
	p := t.nodes.Get(uint32(parent))
	if p == nil || i < 0 || i >= len(p.children) {
		return false
	}
	p.children = append(p.children[:i:i], p.children[i+1:]...)
	return true
}

func (t *Tree) adopt(parent, child NodeID) {
	if c := t.nodes.Get(uint32(child)); c != nil {
		c.Parent = parent
	}
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return int(t.nodes.Len())
}

// Node returns the node for id, or nil when id is out of range.
func (t *Tree) Node(id NodeID) *Node {
	return t.nodes.Get(uint32(id))
}

// Kind returns the kind of id, KindInvalid for unknown ids.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

// Span returns the range covered by id.
func (t *Tree) Span(id NodeID) (source.Span, bool) {
	n := t.Node(id)
	if n == nil {
		return source.Span{}, false
	}
	return n.Span, true
}

// Field fetches the child stored under a named field.
func (t *Tree) Field(id NodeID, name string) (NodeID, bool) {
	n := t.Node(id)
	if n == nil {
		return NoNodeID, false
	}
	key, ok := t.names.Find(name)
	if !ok {
		return NoNodeID, false
	}
	for _, f := range n.fields {
		if f.name == key {
			return f.child, f.child.IsValid()
		}
	}
	return NoNodeID, false
}

// Child fetches the i-th element of the ordered child list of id.
func (t *Tree) Child(id NodeID, i int) (NodeID, bool) {
	n := t.Node(id)
	if n == nil || i < 0 || i >= len(n.children) {
		return NoNodeID, false
	}
	return n.children[i], true
}

// ChildCount returns the length of the ordered child list of id.
func (t *Tree) ChildCount(id NodeID) int {
	if n := t.Node(id); n != nil {
		return len(n.children)
	}
	return 0
}

// Children returns a copy of the ordered child list.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// Token fetches the span of a leaf token by role.
func (t *Tree) Token(id NodeID, name string) (source.Span, bool) {
	n := t.Node(id)
	if n == nil {
		return source.Span{}, false
	}
	key, ok := t.names.Find(name)
	if !ok {
		return source.Span{}, false
	}
	for _, tok := range n.tokens {
		if tok.name == key {
			return tok.span, true
		}
	}
	return source.Span{}, false
}

// Fields returns name -> child for every named field of id.
func (t *Tree) Fields(id NodeID) map[string]NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	out := make(map[string]NodeID, len(n.fields))
	for _, f := range n.fields {
		out[t.names.MustLookup(f.name)] = f.child
	}
	return out
}

// Tokens returns name -> span for every token of id.
func (t *Tree) Tokens(id NodeID) map[string]source.Span {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	out := make(map[string]source.Span, len(n.tokens))
	for _, tok := range n.tokens {
		out[t.names.MustLookup(tok.name)] = tok.span
	}
	return out
}

// Walk visits every node in allocation order until fn returns false.
func (t *Tree) Walk(fn func(id NodeID, n *Node) bool) {
	for i := range t.nodes.Slice() {
		id := NodeID(i + 1)
		if !fn(id, t.nodes.Get(uint32(id))) {
			return
		}
	}
}
