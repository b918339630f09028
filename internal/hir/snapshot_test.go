package hir

import (
	"testing"

	"spanres/internal/source"
	"spanres/internal/syntax"
)

func TestSnapshotBodyGenerations(t *testing.T) {
	snap := NewSnapshot(nil)
	file := source.FileID(1)

	first := snap.NewBody(file)
	first.SourceMap.Record(PatRef(1), Raw(syntax.NodeID(3)))
	old := first.Body

	if _, ok := snap.BodySourceMap(old); !ok {
		t.Fatal("current body must have a source map")
	}

	rebuilt, ok := snap.Rebuild(old.ID, file)
	if !ok {
		t.Fatal("Rebuild failed")
	}
	if rebuilt.Body.ID != old.ID || rebuilt.Body.Gen <= old.Gen {
		t.Fatalf("rebuilt body %s does not supersede %s", rebuilt.Body, old)
	}
	if _, ok := snap.BodySourceMap(old); ok {
		t.Fatal("superseded body still resolves")
	}
	smap, ok := snap.BodySourceMap(rebuilt.Body)
	if !ok || smap.Len() != 0 {
		t.Fatal("rebuilt body must start with an empty source map")
	}
	if _, ok := snap.Rebuild(BodyID(42), file); ok {
		t.Fatal("rebuilding an unknown body succeeded")
	}
}

func TestSnapshotBodiesSorted(t *testing.T) {
	snap := NewSnapshot(nil)
	snap.NewBodyWithID(5, 1)
	snap.NewBodyWithID(2, 1)
	next := snap.NewBody(1)
	if next.Body.ID != 6 {
		t.Fatalf("next body id = %d, want 6", next.Body.ID)
	}
	bodies := snap.Bodies()
	if len(bodies) != 3 || bodies[0].ID != 2 || bodies[1].ID != 5 || bodies[2].ID != 6 {
		t.Fatalf("unexpected order: %v", bodies)
	}
}

func TestSnapshotItems(t *testing.T) {
	snap := NewSnapshot(nil)
	it := snap.NewItem(1, syntax.NodeID(4))

	o, ok := snap.ItemSource(it)
	if !ok || !o.IsDirect() || o.Node != 4 {
		t.Fatalf("ItemSource = %v, %v", o, ok)
	}
	stale := it
	stale.Gen--
	if _, ok := snap.ItemSource(stale); ok {
		t.Fatal("stale item resolved")
	}
	got, ok := snap.Item(it.ID)
	if !ok || got != it {
		t.Fatalf("Item(%d) = %v, %v", it.ID, got, ok)
	}
}

func TestSourceMapParents(t *testing.T) {
	m := NewSourceMap()
	m.Record(ExprRef(1), Raw(syntax.NodeID(2)))
	m.SetParent(PatRef(3), ExprRef(1))

	if o, ok := m.ExprToSource(1); !ok || o.Node != 2 {
		t.Fatalf("ExprToSource = %v, %v", o, ok)
	}
	if _, ok := m.PatToSource(3); ok {
		t.Fatal("pat 3 has no origin")
	}
	if p, ok := m.Parent(PatRef(3)); !ok || p != ExprRef(1) {
		t.Fatalf("Parent = %v, %v", p, ok)
	}
	if m.Len() != 1 || m.Links() != 1 {
		t.Fatalf("Len = %d, Links = %d", m.Len(), m.Links())
	}

	var nilMap *SourceMap
	if _, ok := nilMap.NodeToSource(PatRef(1)); ok {
		t.Fatal("nil map resolved")
	}
	if nilMap.Len() != 0 {
		t.Fatal("nil map has entries")
	}
}

func TestOriginPredicates(t *testing.T) {
	cases := []struct {
		o         Origin
		direct    bool
		construct bool
	}{
		{Raw(5), true, false},
		{Raw(syntax.NoNodeID), false, false},
		{Desugared(5), false, true},
		{Desugared(syntax.NoNodeID), false, false},
		{Expanded(7), false, true},
		{Origin{}, false, false},
	}
	for _, tc := range cases {
		if tc.o.IsDirect() != tc.direct || tc.o.HasConstruct() != tc.construct {
			t.Errorf("%s: direct=%v construct=%v", tc.o, tc.o.IsDirect(), tc.o.HasConstruct())
		}
	}
}

func TestParseKinds(t *testing.T) {
	for k := PatWildcard; k <= PatRange; k++ {
		if got, ok := ParsePatKind(k.String()); !ok || got != k {
			t.Fatalf("ParsePatKind(%q) = %v, %v", k, got, ok)
		}
	}
	for k := ExprLit; k <= ExprBlock; k++ {
		if got, ok := ParseExprKind(k.String()); !ok || got != k {
			t.Fatalf("ParseExprKind(%q) = %v, %v", k, got, ok)
		}
	}
}
