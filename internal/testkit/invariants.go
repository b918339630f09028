package testkit

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"spanres/internal/source"
	"spanres/internal/span"
	"spanres/internal/syntax"
)

// CheckTreeInvariants runs the structural checks span resolution relies on:
//  1. the root span is non-empty and within file content bounds
//  2. every node and token points at sf and lies within the content
//  3. every child (field or list element) lies inside its parent, and every
//     token inside its node
//  4. fields and tokens are declared by the node kind's shape; only list
//     kinds have ordered children
//
// Nested containment is what makes resolution narrow monotonically.
func CheckTreeInvariants(t *syntax.Tree, sf *source.File) error {
	if t == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	if t.File != sf.ID {
		return fmt.Errorf("tree belongs to file %d, not %d", t.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	// 1) root span sanity
	root, ok := t.Span(t.Root)
	if !ok {
		return fmt.Errorf("tree has no root")
	}
	if root.End <= root.Start {
		return fmt.Errorf("root span is empty: %v", root)
	}

	var firstErr error
	t.Walk(func(id syntax.NodeID, n *syntax.Node) bool {
		firstErr = checkNode(t, id, n, sf.ID, lenContent)
		return firstErr == nil
	})
	return firstErr
}

func checkNode(t *syntax.Tree, id syntax.NodeID, n *syntax.Node, file source.FileID, lenContent uint32) error {
	// 2) bounds
	if err := checkBounds(n.Span, file, lenContent); err != nil {
		return fmt.Errorf("node %d (%s): %w", id, n.Kind, err)
	}
	shape := syntax.ShapeOf(n.Kind)

	// 3) + 4) fields, sorted for a stable first error
	fields := t.Fields(id)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !shape.HasField(name) {
			return fmt.Errorf("node %d (%s): undeclared field %q", id, n.Kind, name)
		}
		csp, ok := t.Span(fields[name])
		if !ok {
			return fmt.Errorf("node %d (%s): field %q points at unknown node %d", id, n.Kind, name, fields[name])
		}
		if !n.Span.Contains(csp) {
			return fmt.Errorf("node %d (%s): field %q span %v outside %v", id, n.Kind, name, csp, n.Span)
		}
	}

	children := t.Children(id)
	if len(children) > 0 && !shape.List {
		return fmt.Errorf("node %d (%s): kind has no child list", id, n.Kind)
	}
	for i, child := range children {
		csp, ok := t.Span(child)
		if !ok {
			return fmt.Errorf("node %d (%s): child %d is unknown node %d", id, n.Kind, i, child)
		}
		if !n.Span.Contains(csp) {
			return fmt.Errorf("node %d (%s): child %d span %v outside %v", id, n.Kind, i, csp, n.Span)
		}
	}

	tokens := t.Tokens(id)
	names = names[:0]
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !shape.HasToken(name) {
			return fmt.Errorf("node %d (%s): undeclared token %q", id, n.Kind, name)
		}
		tsp := tokens[name]
		if err := checkBounds(tsp, file, lenContent); err != nil {
			return fmt.Errorf("node %d (%s): token %q: %w", id, n.Kind, name, err)
		}
		if !n.Span.Contains(tsp) {
			return fmt.Errorf("node %d (%s): token %q span %v outside %v", id, n.Kind, name, tsp, n.Span)
		}
	}
	return nil
}

func checkBounds(sp source.Span, file source.FileID, lenContent uint32) error {
	if sp.File != file {
		return fmt.Errorf("span file mismatch: got=%d want=%d", sp.File, file)
	}
	if sp.Start > sp.End {
		return fmt.Errorf("inverted span %v", sp)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	return nil
}

// CheckNarrowing resolves h step by step and verifies that every range lies
// inside the one before it. A failing step ends the check without error;
// only successfully reached ranges are compared.
func CheckNarrowing(db span.DB, h span.LazySpan) error {
	rows := span.Explain(db, h)
	var prev source.Span
	havePrev := false
	for _, row := range rows {
		if row.Err != nil {
			break
		}
		if havePrev && !prev.Contains(row.Span) {
			return fmt.Errorf("%s: %s reached %v, outside %v", h.Chain(), row.Label, row.Span, prev)
		}
		prev, havePrev = row.Span, true
	}
	return nil
}
