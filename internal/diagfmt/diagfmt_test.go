package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"spanres/internal/diag"
	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/span"
	"spanres/internal/syntax"
)

const src = "fn main() {\n\tmatch p { Pt{ x, y } => 1 }\n}\n"

type fixture struct {
	fs   *source.FileSet
	snap *hir.Snapshot
	body hir.Body
	tree *syntax.Tree
}

// newFixture places the record pattern `Pt{ x, y }` on line 2.
func newFixture(t *testing.T) fixture {
	t.Helper()
	fs := source.NewFileSet()
	fs.SetBaseDir("/home/user/project")
	fid := fs.AddVirtual("/home/user/project/src/main.sp", []byte(src))

	patStart := uint32(strings.Index(src, "Pt{"))
	patEnd := patStart + uint32(len("Pt{ x, y }"))
	tree := syntax.NewTree(fid)
	match := tree.NewNode(syntax.KindMatchExpr, 13, uint32(strings.LastIndex(src, "}")-2))
	rec := tree.NewNode(syntax.KindRecordPat, patStart, patEnd)
	tree.AppendChild(match, rec)
	fields := tree.NewNode(syntax.KindRecordPatFieldList, patStart+2, patEnd)
	tree.SetField(rec, syntax.FieldFields, fields)
	for _, name := range []string{"x", "y"} {
		off := uint32(strings.Index(src, name+","))
		if name == "y" {
			off = uint32(strings.Index(src, "y "))
		}
		f := tree.NewNode(syntax.KindRecordPatField, off, off+1)
		tree.AppendChild(fields, f)
		tree.SetToken(f, syntax.TokenName, off, off+1)
	}

	snap := hir.NewSnapshot(fs)
	snap.AddTree(tree)
	data := snap.NewBody(fid)
	data.SourceMap.Record(hir.PatRef(1), hir.Raw(rec))
	data.SourceMap.Record(hir.PatRef(2), hir.Desugared(match))
	data.SourceMap.Record(hir.PatRef(3), hir.Desugared(syntax.NoNodeID))
	return fixture{fs: fs, snap: snap, body: data.Body, tree: tree}
}

func (f fixture) resolved() []diag.Resolved {
	rec := span.NewLazyRecordPatSpan(1, f.body)
	diags := []diag.Diagnostic{
		diag.NewError(diag.AnaUnknownField, rec.Fields().Field(1).Name(), "no field `y` on Pt").
			WithNote(rec, "pattern here"),
		diag.New(diag.SevWarning, diag.AnaUnreachablePattern, span.NewLazyPatSpan(2, f.body), "unreachable"),
		diag.NewError(diag.AnaTypeMismatch, span.NewLazyPatSpan(3, f.body), "lost"),
	}
	out := diag.MaterializeAll(f.snap, diags)
	diag.SortResolved(out)
	return out
}

func TestPathModes(t *testing.T) {
	f := newFixture(t)
	items := f.resolved()

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/main.sp:2:"},
		{"Relative path", PathModeRelative, "\nsrc/main.sp:2:"},
		{"Basename only", PathModeBasename, "main.sp:2:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, items, f.fs, PrettyOpts{PathMode: tt.mode})
			if !strings.Contains("\n"+buf.String(), tt.contains) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.contains, buf.String())
			}
		})
	}
}

func TestPrettyCaretsAndPlacement(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	Pretty(&buf, f.resolved(), f.fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowReasons: true})
	out := buf.String()

	yCol := strings.Index("\tmatch p { Pt{ x, y } => 1 }", "y")
	wantCaret := "  | " + strings.Repeat(" ", yCol-1+4) + "^\n"
	if !strings.Contains(out, wantCaret) {
		t.Errorf("missing caret line %q in:\n%s", wantCaret, out)
	}
	if !strings.Contains(out, "main.sp:2:2~: WARNING ANA2006: unreachable") {
		t.Errorf("fallback header missing:\n%s", out)
	}
	if !strings.Contains(out, "~~~~") {
		t.Errorf("fallback underline missing:\n%s", out)
	}
	if !strings.Contains(out, "<unlocated>: ERROR ANA2005: lost") {
		t.Errorf("unlocated header missing:\n%s", out)
	}
	if !strings.Contains(out, "location unavailable") {
		t.Errorf("reason missing:\n%s", out)
	}
	if !strings.Contains(out, "note: main.sp:2:12: pattern here") {
		t.Errorf("note missing:\n%s", out)
	}
}

func TestJSONOutput(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	if err := JSON(&buf, f.resolved(), f.fs, JSONOpts{IncludePositions: true, PathMode: PathModeRelative, IncludeNotes: true, IncludeReasons: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 3 {
		t.Fatalf("count = %d", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Placement != "fallback" || first.Location == nil || first.Failure != "desugared" {
		t.Fatalf("unexpected first diagnostic: %+v", first)
	}
	second := out.Diagnostics[1]
	if second.Location == nil || second.Location.File != "src/main.sp" || second.Location.StartLine != 2 {
		t.Fatalf("unexpected location: %+v", second.Location)
	}
	if len(second.Notes) != 1 {
		t.Fatalf("notes: %+v", second.Notes)
	}
	last := out.Diagnostics[2]
	if last.Location != nil || last.Placement != "unlocated" || last.Reason == "" {
		t.Fatalf("unexpected unlocated diagnostic: %+v", last)
	}

	limited := BuildDiagnosticsOutput(f.resolved(), f.fs, JSONOpts{Max: 1})
	if limited.Count != 1 {
		t.Fatalf("Max not applied: %d", limited.Count)
	}
}

func TestExplainTable(t *testing.T) {
	f := newFixture(t)
	h := span.NewLazyRecordPatSpan(1, f.body).Fields().Field(7).Name()
	rows := span.Explain(f.snap, h)

	var buf bytes.Buffer
	if err := ExplainTable(&buf, h.Chain(), rows, f.fs, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"pat#1@body1.g1 .fields [7] $name", "root", ".fields", "{ x, y }", "failed", "index out of range"} {
		if !strings.Contains(out, want) {
			t.Errorf("explain output lacks %q:\n%s", want, out)
		}
	}
}

func TestFormatTree(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	if err := FormatTreePretty(&buf, f.tree, f.fs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "match_expr #1") {
		t.Fatalf("unexpected root line:\n%s", out)
	}
	if !strings.Contains(out, "└─ [0] record_pat #2") || !strings.Contains(out, ".fields record_pat_field_list") {
		t.Fatalf("unexpected tree:\n%s", out)
	}
	if !strings.Contains(out, "$name=2:") {
		t.Fatalf("tokens missing:\n%s", out)
	}

	buf.Reset()
	if err := FormatTreeJSON(&buf, f.tree); err != nil {
		t.Fatal(err)
	}
	var node TreeNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &node); err != nil {
		t.Fatal(err)
	}
	if node.Kind != "match_expr" || len(node.Children) != 1 || node.Children[0].Role != "[0]" {
		t.Fatalf("unexpected JSON tree: %+v", node)
	}
}
