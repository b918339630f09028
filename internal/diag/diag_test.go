package diag

import (
	"strings"
	"testing"

	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/span"
	"spanres/internal/syntax"
)

// src places `Pt{ x, y }` at [10,20).
const src = "fn main(){Pt{ x, y } = p; }"

type fixture struct {
	snap *hir.Snapshot
	body hir.Body
	rec  span.LazyRecordPatSpan
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	fs := source.NewFileSet()
	fs.SetBaseDir("/")
	fid := fs.AddVirtual("/work/main.sp", []byte(src))

	tree := syntax.NewTree(fid)
	root := tree.NewNode(syntax.KindBlockExpr, 9, 27)
	rec := tree.NewNode(syntax.KindRecordPat, 10, 20)
	tree.AppendChild(root, rec)
	fields := tree.NewNode(syntax.KindRecordPatFieldList, 12, 20)
	tree.SetField(rec, syntax.FieldFields, fields)
	for _, off := range []uint32{14, 17} {
		f := tree.NewNode(syntax.KindRecordPatField, off, off+1)
		tree.AppendChild(fields, f)
		tree.SetToken(f, syntax.TokenName, off, off+1)
	}

	snap := hir.NewSnapshot(fs)
	snap.AddTree(tree)
	data := snap.NewBody(fid)
	data.SourceMap.Record(hir.PatRef(1), hir.Raw(rec))
	data.SourceMap.Record(hir.PatRef(2), hir.Desugared(root))
	data.SourceMap.Record(hir.PatRef(3), hir.Desugared(syntax.NoNodeID))

	return fixture{snap: snap, body: data.Body, rec: span.NewLazyRecordPatSpan(1, data.Body)}
}

func TestMaterializePlacement(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name    string
		d       Diagnostic
		want    Placement
		start   uint32
		failure span.FailureKind
	}{
		{
			name:  "precise",
			d:     NewError(AnaUnknownField, f.rec.Fields().Field(1).Name(), "no field y"),
			want:  Precise,
			start: 17,
		},
		{
			name:    "desugared fallback",
			d:       NewError(AnaTypeMismatch, span.NewLazyPatSpan(2, f.body), "mismatch"),
			want:    Fallback,
			start:   9,
			failure: span.FailureDesugared,
		},
		{
			name:    "context fallback",
			d:       NewError(AnaUnknownField, f.rec.Fields().Field(4).Name(), "gone").WithContext(f.rec),
			want:    Fallback,
			start:   10,
			failure: span.FailureStep,
		},
		{
			name:    "unlocated",
			d:       NewError(AnaUnusedBinding, span.NewLazyPatSpan(3, f.body), "synth"),
			want:    Unlocated,
			failure: span.FailureDesugared,
		},
		{
			name: "no primary",
			d:    Diagnostic{Severity: SevInfo, Code: AnaInfo, Message: "global"},
			want: Unlocated,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Materialize(f.snap, &tc.d)
			if got.Primary.Placement != tc.want {
				t.Fatalf("placement = %s, want %s (err %v)", got.Primary.Placement, tc.want, got.Primary.Err)
			}
			if tc.want != Unlocated && got.Primary.Span.Start != tc.start {
				t.Fatalf("start = %d, want %d", got.Primary.Span.Start, tc.start)
			}
			if got.Primary.Failure != tc.failure {
				t.Fatalf("failure = %s, want %s", got.Primary.Failure, tc.failure)
			}
			if got.Message != tc.d.Message {
				t.Fatal("message must survive placement")
			}
		})
	}
}

func TestReportBuilderAndDedup(t *testing.T) {
	f := newFixture(t)
	bag := NewBag(10)
	rep := NewDedupReporter(BagReporter{Bag: bag})

	name := f.rec.Fields().Field(0).Name()
	for range 3 {
		ReportWarning(rep, AnaUnusedBinding, name, "unused x").
			WithNote(f.rec, "in this pattern").
			WithContext(f.rec).
			Emit()
	}
	ReportError(rep, AnaUnknownField, name, "unknown x").Emit()

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	first := bag.Items()[0]
	if first.Context == nil || len(first.Notes) != 1 {
		t.Fatalf("context or notes lost: %+v", first)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatal("severity queries wrong")
	}
}

func TestBagLimitAndMerge(t *testing.T) {
	f := newFixture(t)
	a := NewBag(1)
	if !a.Add(NewError(AnaInfo, f.rec, "one")) || a.Add(NewError(AnaInfo, f.rec, "two")) {
		t.Fatal("limit not enforced")
	}
	b := NewBag(4)
	b.Add(NewError(AnaInfo, f.rec, "one"))
	b.Add(NewError(AnaInfo, f.rec, "three"))
	a.Merge(b)
	if a.Len() != 3 || a.Cap() != 3 {
		t.Fatalf("merge: len %d cap %d", a.Len(), a.Cap())
	}
	a.Dedup()
	if a.Len() != 2 {
		t.Fatalf("dedup left %d", a.Len())
	}
}

func TestFormatGoldenDiagnostics(t *testing.T) {
	f := newFixture(t)
	diags := []Diagnostic{
		NewError(AnaUnknownField, f.rec.Fields().Field(1).Name(), "no field y\nhere").
			WithNote(f.rec, "pattern"),
		New(SevWarning, AnaTypeMismatch, span.NewLazyPatSpan(2, f.body), "mismatch"),
		NewError(SpnUnresolvable, span.NewLazyPatSpan(9, f.body), "vanished"),
	}
	resolved := MaterializeAll(f.snap, diags)
	SortResolved(resolved)
	if resolved[2].Primary.Placement != Unlocated {
		t.Fatal("unlocated diagnostics sort last")
	}

	want := strings.Join([]string{
		"error SPN1001 - vanished",
		"warning ANA2005 work/main.sp:1:10~ mismatch",
		"note ANA2002 work/main.sp:1:11 pattern",
		"error ANA2002 work/main.sp:1:18 no field y here",
	}, "\n")
	if got := FormatGoldenDiagnostics(resolved, f.snap.Files, true); got != want {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestParseCode(t *testing.T) {
	c, ok := ParseCode("ANA2002")
	if !ok || c != AnaUnknownField {
		t.Fatalf("ParseCode = %v, %v", c, ok)
	}
	if _, ok := ParseCode("E0000"); ok {
		t.Fatal("unknown code parsed")
	}
	if sev, ok := ParseSeverity("warning"); !ok || sev != SevWarning {
		t.Fatal("ParseSeverity(warning) failed")
	}
}
