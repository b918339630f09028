package hir

// SourceMap maps the semantic nodes of one body back to syntax. It is partial:
// synthesized nodes may have no entry, and parent links let a resolver find
// the nearest ancestor that does.
//
// A SourceMap is filled during lowering and read-only afterwards.
type SourceMap struct {
	origins map[NodeRef]Origin
	parents map[NodeRef]NodeRef
}

func NewSourceMap() *SourceMap {
	return &SourceMap{
		origins: make(map[NodeRef]Origin),
		parents: make(map[NodeRef]NodeRef),
	}
}

// Record stores the origin of ref.
func (m *SourceMap) Record(ref NodeRef, origin Origin) {
	m.origins[ref] = origin
}

// SetParent records the semantic parent of child.
func (m *SourceMap) SetParent(child, parent NodeRef) {
	m.parents[child] = parent
}

// NodeToSource returns the recorded origin of ref.
func (m *SourceMap) NodeToSource(ref NodeRef) (Origin, bool) {
	if m == nil {
		return Origin{}, false
	}
	o, ok := m.origins[ref]
	return o, ok
}

// PatToSource is NodeToSource for patterns.
func (m *SourceMap) PatToSource(id PatID) (Origin, bool) {
	return m.NodeToSource(PatRef(id))
}

// ExprToSource is NodeToSource for expressions.
func (m *SourceMap) ExprToSource(id ExprID) (Origin, bool) {
	return m.NodeToSource(ExprRef(id))
}

// Parent returns the semantic parent of ref.
func (m *SourceMap) Parent(ref NodeRef) (NodeRef, bool) {
	if m == nil {
		return NodeRef{}, false
	}
	p, ok := m.parents[ref]
	return p, ok
}

// Len returns the number of nodes with a recorded origin.
func (m *SourceMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.origins)
}

// Links returns the number of recorded parent links.
func (m *SourceMap) Links() int {
	if m == nil {
		return 0
	}
	return len(m.parents)
}
