package lsp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spanres/internal/diag"
	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/span"
	"spanres/internal/syntax"
)

// "a", "é" (2 bytes), "🙂" (4 bytes, 2 UTF-16 units), "b", newline, "xy".
const utf16Src = "aé\U0001F642b\nxy"

func newFile(t *testing.T) (*source.FileSet, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.sp", []byte(utf16Src))
	return fs, fs.Get(id)
}

func TestPositionForOffset(t *testing.T) {
	_, file := newFile(t)
	cases := []struct {
		offset uint32
		want   Position
	}{
		{0, Position{0, 0}},
		{1, Position{0, 1}},
		{3, Position{0, 2}},
		{7, Position{0, 4}},
		{8, Position{0, 5}},
		{9, Position{1, 0}},
		{11, Position{1, 2}},
		{99, Position{1, 2}},
	}
	for _, tc := range cases {
		if got := PositionForOffset(file, tc.offset); got != tc.want {
			t.Errorf("PositionForOffset(%d) = %+v, want %+v", tc.offset, got, tc.want)
		}
	}
}

func TestOffsetForPosition(t *testing.T) {
	_, file := newFile(t)
	cases := []struct {
		pos  Position
		want uint32
	}{
		{Position{0, 0}, 0},
		{Position{0, 2}, 3},
		{Position{0, 3}, 3}, // inside the surrogate pair
		{Position{0, 4}, 7},
		{Position{0, 99}, 8},
		{Position{1, 1}, 10},
		{Position{5, 0}, 11},
		{Position{-1, 0}, 0},
	}
	for _, tc := range cases {
		if got := OffsetForPosition(file, tc.pos); got != tc.want {
			t.Errorf("OffsetForPosition(%+v) = %d, want %d", tc.pos, got, tc.want)
		}
	}
}

func TestPositionRoundTrip(t *testing.T) {
	_, file := newFile(t)
	for _, off := range []uint32{0, 1, 3, 7, 8, 9, 10, 11} {
		if got := OffsetForPosition(file, PositionForOffset(file, off)); got != off {
			t.Errorf("round trip of %d gave %d", off, got)
		}
	}
}

func TestRangeForSpanNilFile(t *testing.T) {
	if got := RangeForSpan(nil, source.Span{Start: 1, End: 2}); got != (Range{}) {
		t.Fatalf("expected zero range, got %+v", got)
	}
}

type lspWorld struct {
	files *source.FileSet
	snap  *hir.Snapshot
	body  hir.Body
	file  source.FileID
}

func newLSPWorld(t *testing.T) *lspWorld {
	t.Helper()
	fs, file := newFile(t)
	fid := source.FileID(0)
	if fs.Get(fid) != file {
		t.Fatal("expected the first file to have id 0")
	}
	tree := syntax.NewTree(fid)
	root := tree.NewNode(syntax.KindBlockExpr, 0, 11)
	pat := tree.NewNode(syntax.KindWildcardPat, 3, 7)
	tree.AppendChild(root, pat)

	snap := hir.NewSnapshot(fs)
	snap.AddTree(tree)
	data := snap.NewBody(fid)
	data.Pats[1] = hir.PatWildcard
	data.SourceMap.Record(hir.PatRef(1), hir.Raw(pat))
	data.Pats[2] = hir.PatWildcard
	data.SourceMap.Record(hir.PatRef(2), hir.Desugared(root))
	data.Pats[3] = hir.PatWildcard
	return &lspWorld{files: fs, snap: snap, body: data.Body, file: fid}
}

func TestLocationOf(t *testing.T) {
	w := newLSPWorld(t)
	r := span.NewResolver(w.snap, nil)
	ctx := context.Background()

	loc, placement, err := LocationOf(ctx, r, w.files, span.NewLazyPatSpan(1, w.body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if placement != diag.Precise {
		t.Fatalf("placement = %v, want precise", placement)
	}
	if !strings.HasPrefix(loc.URI, "file://") || !strings.HasSuffix(loc.URI, "/main.sp") {
		t.Fatalf("unexpected uri %q", loc.URI)
	}
	if want := (Range{Start: Position{0, 2}, End: Position{0, 4}}); loc.Range != want {
		t.Fatalf("range = %+v, want %+v", loc.Range, want)
	}

	loc, placement, err = LocationOf(ctx, r, w.files, span.NewLazyPatSpan(2, w.body))
	if err != nil || placement != diag.Fallback {
		t.Fatalf("desugared: placement %v err %v", placement, err)
	}
	if want := (Range{Start: Position{0, 0}, End: Position{1, 2}}); loc.Range != want {
		t.Fatalf("fallback range = %+v, want %+v", loc.Range, want)
	}

	_, placement, err = LocationOf(ctx, r, w.files, span.NewLazyPatSpan(3, w.body))
	var unres *span.UnresolvableOriginError
	if !errors.As(err, &unres) || placement != diag.Unlocated {
		t.Fatalf("expected unresolvable, got %v %v", placement, err)
	}
}

func TestPublishGroupsAndSkipsUnlocated(t *testing.T) {
	w := newLSPWorld(t)
	diags := []diag.Diagnostic{
		diag.NewError(diag.AnaUnreachablePattern, span.NewLazyPatSpan(1, w.body), "unreachable").
			WithNote(span.NewLazyPatSpan(2, w.body), "desugared here"),
		diag.New(diag.SevWarning, diag.AnaUnusedBinding, span.NewLazyPatSpan(2, w.body), "unused"),
		diag.NewError(diag.AnaTypeMismatch, span.NewLazyPatSpan(3, w.body), "lost"),
	}
	params, skipped := Publish(w.files, diag.MaterializeAll(w.snap, diags), "spanres")
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(params) != 1 || len(params[0].Diagnostics) != 2 {
		t.Fatalf("unexpected params %+v", params)
	}
	first := params[0].Diagnostics[0]
	if first.Severity != SeverityError || first.Code != "ANA2006" || first.Data != nil {
		t.Fatalf("unexpected first diagnostic %+v", first)
	}
	if len(first.RelatedInformation) != 1 || first.RelatedInformation[0].Message != "desugared here" {
		t.Fatalf("expected one related note, got %+v", first.RelatedInformation)
	}
	second := params[0].Diagnostics[1]
	if second.Severity != SeverityWarning || second.Data == nil || second.Data.Placement != "fallback" {
		t.Fatalf("unexpected second diagnostic %+v", second)
	}

	var sb strings.Builder
	if err := WritePublish(&sb, params); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), `"placement": "fallback"`) {
		t.Fatalf("json output missing placement:\n%s", sb.String())
	}
}

func TestURIForPath(t *testing.T) {
	if uri := URIForPath("/tmp/a b.sp"); uri != "file:///tmp/a%20b.sp" {
		t.Fatalf("uri = %q", uri)
	}
	if URIForPath("") != "" {
		t.Fatal("empty path should give an empty uri")
	}
	if uri := URIForPath("rel.sp"); !strings.HasPrefix(uri, "file:///") || !strings.HasSuffix(uri, "/rel.sp") {
		t.Fatalf("relative uri = %q", uri)
	}
}

func TestLocationForSpanUsesBaseDir(t *testing.T) {
	files := source.NewFileSetWithBase("/fixtures/case1")
	fid := files.AddVirtual("main.sp", []byte("fn main() {}\n"))

	loc, ok := LocationForSpan(files, source.Span{File: fid, Start: 3, End: 7})
	if !ok {
		t.Fatal("location not found")
	}
	if loc.URI != "file:///fixtures/case1/main.sp" {
		t.Fatalf("uri = %q", loc.URI)
	}
	if loc.Range.Start.Character != 3 || loc.Range.End.Character != 7 {
		t.Fatalf("range = %+v", loc.Range)
	}
}
