package hir

import (
	"sort"

	"spanres/internal/source"
	"spanres/internal/syntax"
)

// BodyData is everything lowering produced for one body.
type BodyData struct {
	Body      Body
	SourceMap *SourceMap
	Pats      map[PatID]PatKind
	Exprs     map[ExprID]ExprKind
}

type itemData struct {
	item Item
	node syntax.NodeID
}

// Snapshot is an in-memory, versioned view of analysed files: syntax trees,
// bodies with their source maps, and items. It is built single-threaded and
// must not be mutated while resolutions run against it; concurrent readers
// are fine.
type Snapshot struct {
	Files *source.FileSet

	rev      Generation
	trees    map[source.FileID]*syntax.Tree
	bodies   map[BodyID]*BodyData
	items    map[ItemID]*itemData
	nextBody BodyID
	nextItem ItemID
}

// NewSnapshot creates an empty snapshot over files.
func NewSnapshot(files *source.FileSet) *Snapshot {
	if files == nil {
		files = source.NewFileSet()
	}
	return &Snapshot{
		Files:  files,
		trees:  make(map[source.FileID]*syntax.Tree),
		bodies: make(map[BodyID]*BodyData),
		items:  make(map[ItemID]*itemData),
	}
}

// Revision returns the latest generation handed out.
func (s *Snapshot) Revision() Generation {
	return s.rev
}

func (s *Snapshot) nextGen() Generation {
	s.rev++
	return s.rev
}

// AddTree registers the syntax tree of its file, replacing an older one.
func (s *Snapshot) AddTree(t *syntax.Tree) {
	s.trees[t.File] = t
}

// Tree returns the syntax tree of file.
func (s *Snapshot) Tree(file source.FileID) (*syntax.Tree, bool) {
	t, ok := s.trees[file]
	return t, ok
}

// NewBody allocates a body anchored in file with an empty source map.
func (s *Snapshot) NewBody(file source.FileID) *BodyData {
	s.nextBody++
	return s.installBody(s.nextBody, file)
}

// NewBodyWithID allocates a body under a caller-chosen id (fixtures).
func (s *Snapshot) NewBodyWithID(id BodyID, file source.FileID) *BodyData {
	if id > s.nextBody {
		s.nextBody = id
	}
	return s.installBody(id, file)
}

// Rebuild replaces the body with a fresh, empty one under a new generation.
// Handles rooted at the previous generation no longer resolve.
func (s *Snapshot) Rebuild(id BodyID, file source.FileID) (*BodyData, bool) {
	if _, ok := s.bodies[id]; !ok {
		return nil, false
	}
	return s.installBody(id, file), true
}

func (s *Snapshot) installBody(id BodyID, file source.FileID) *BodyData {
	data := &BodyData{
		Body:      Body{ID: id, Gen: s.nextGen(), File: file},
		SourceMap: NewSourceMap(),
		Pats:      make(map[PatID]PatKind),
		Exprs:     make(map[ExprID]ExprKind),
	}
	s.bodies[id] = data
	return data
}

// BodyData returns the current data for id.
func (s *Snapshot) BodyData(id BodyID) (*BodyData, bool) {
	d, ok := s.bodies[id]
	return d, ok
}

// BodySourceMap returns the source map of body when its generation is current.
func (s *Snapshot) BodySourceMap(body Body) (*SourceMap, bool) {
	d, ok := s.bodies[body.ID]
	if !ok || d.Body.Gen != body.Gen {
		return nil, false
	}
	return d.SourceMap, true
}

// Bodies returns the current bodies ordered by id.
func (s *Snapshot) Bodies() []Body {
	out := make([]Body, 0, len(s.bodies))
	for _, d := range s.bodies {
		out = append(out, d.Body)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NewItem registers a top-level item lowered from node.
func (s *Snapshot) NewItem(file source.FileID, node syntax.NodeID) Item {
	s.nextItem++
	return s.NewItemWithID(s.nextItem, file, node)
}

// NewItemWithID registers an item under a caller-chosen id.
func (s *Snapshot) NewItemWithID(id ItemID, file source.FileID, node syntax.NodeID) Item {
	if id > s.nextItem {
		s.nextItem = id
	}
	it := Item{ID: id, Gen: s.nextGen(), File: file}
	s.items[id] = &itemData{item: it, node: node}
	return it
}

// Item returns the current handle for id.
func (s *Snapshot) Item(id ItemID) (Item, bool) {
	d, ok := s.items[id]
	if !ok {
		return Item{}, false
	}
	return d.item, true
}

// ItemSource returns the origin of item when its generation is current.
func (s *Snapshot) ItemSource(item Item) (Origin, bool) {
	d, ok := s.items[item.ID]
	if !ok || d.item.Gen != item.Gen {
		return Origin{}, false
	}
	return Raw(d.node), true
}
