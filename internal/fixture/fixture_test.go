package fixture

import (
	"slices"
	"strings"
	"testing"

	"spanres/internal/diag"
	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/span"
)

func loadRecord(t *testing.T) *Fixture {
	t.Helper()
	f, err := Load("testdata/record.toml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return f
}

func TestLoadRecordFixtureExpectations(t *testing.T) {
	f := loadRecord(t)
	if len(f.Expectations) != 9 {
		t.Fatalf("expected 9 expectations, got %d", len(f.Expectations))
	}
	for i := range f.Expectations {
		e := &f.Expectations[i]
		got, err := span.Resolve(f.Snapshot, e.Handle)
		if cerr := e.Check(got, err); cerr != nil {
			t.Errorf("expectation %d: %v", i, cerr)
		}
	}
}

func TestLoadRangeFixtureExpectations(t *testing.T) {
	f, err := Load("testdata/range.toml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Expectations) != 4 {
		t.Fatalf("expected 4 expectations, got %d", len(f.Expectations))
	}
	for i := range f.Expectations {
		e := &f.Expectations[i]
		got, err := span.Resolve(f.Snapshot, e.Handle)
		if cerr := e.Check(got, err); cerr != nil {
			t.Errorf("expectation %d: %v", i, cerr)
		}
	}
}

func TestLoadRecordFixtureDiagnostics(t *testing.T) {
	f := loadRecord(t)
	if len(f.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(f.Diagnostics))
	}
	first := f.Diagnostics[0]
	if first.Code != diag.AnaUnknownField || first.Severity != diag.SevError {
		t.Fatalf("unexpected first diagnostic %+v", first)
	}
	if first.Context == nil || len(first.Notes) != 1 {
		t.Fatalf("expected context and one note, got %+v", first)
	}
	if f.Diagnostics[1].Severity != diag.SevWarning {
		t.Fatalf("severity = %v, want warning", f.Diagnostics[1].Severity)
	}
	if f.Diagnostics[2].Severity != diag.SevError {
		t.Fatalf("default severity = %v, want error", f.Diagnostics[2].Severity)
	}

	resolved := diag.MaterializeAll(f.Snapshot, f.Diagnostics)
	want := source.Span{File: 0, Start: 17, End: 18}
	if resolved[0].Primary.Span != want || resolved[0].Primary.Placement != diag.Precise {
		t.Fatalf("primary = %+v, want precise %v", resolved[0].Primary, want)
	}
	if resolved[2].Primary.Placement != diag.Unlocated {
		t.Fatalf("orphan pattern should be unlocated, got %v", resolved[2].Primary.Placement)
	}
}

func TestParseHandleMatchesConstructors(t *testing.T) {
	f := loadRecord(t)
	data, ok := f.Snapshot.BodyData(1)
	if !ok {
		t.Fatal("missing body 1")
	}
	parsed, err := ParseHandle(f.Snapshot, "pat:1@1.into_record_pat.fields.field[0].name")
	if err != nil {
		t.Fatal(err)
	}
	built := span.NewLazyRecordPatSpan(1, data.Body).Fields().Field(0).Name()
	if !parsed.Chain().Equal(built.Chain()) {
		t.Fatalf("chains differ:\n%s\n%s", parsed.Chain(), built.Chain())
	}

	// Reinterpretation adds no step.
	direct, err := ParseHandle(f.Snapshot, "pat:1@1")
	if err != nil {
		t.Fatal(err)
	}
	reint, err := ParseHandle(f.Snapshot, "pat:1@1.into_record_pat")
	if err != nil {
		t.Fatal(err)
	}
	if !direct.Chain().Equal(reint.Chain()) {
		t.Fatal("reinterpretation changed the chain")
	}
}

func TestParseHandleErrors(t *testing.T) {
	f := loadRecord(t)
	cases := []struct {
		path string
		want string
	}{
		{"pat:1", "missing @body"},
		{"pat:x@1", "bad id"},
		{"pat:1@9", "unknown body 9"},
		{"pat:1@1:2", "bad generation"},
		{"item:7", "unknown item 7"},
		{"stmt:1@1", "unknown kind"},
		{"pat:1@1.fields", "pat has no accessor \"fields\""},
		{"pat:1@1.into_record_pat.fields.field", "has no accessor \"field\""},
		{"pat:1@1.into_record_pat.fields[0]", "has no indexed accessor \"fields\""},
		{"pat:1@1.into_record_pat.fields.field[x]", "bad index"},
		{"pat:1@1.into_record_pat.fields.field[0", "unterminated index"},
		{"pat:1@1.bogus", "unknown accessor \"bogus\""},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			_, err := ParseHandle(f.Snapshot, tc.path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestParseHandleExplicitGeneration(t *testing.T) {
	f := loadRecord(t)
	h, err := ParseHandle(f.Snapshot, "pat:1@1:g5")
	if err != nil {
		t.Fatal(err)
	}
	if got := h.Chain().Root().Descriptor().Gen; got != 5 {
		t.Fatalf("generation = %d, want 5", got)
	}
	if _, err := span.Resolve(f.Snapshot, h); span.Classify(err) != span.FailureUnresolvable {
		t.Fatalf("expected unresolvable, got %v", err)
	}
}

func TestParseRejectsMalformedFixtures(t *testing.T) {
	const header = `
[[file]]
path = "a.sp"
text = "abcdef"
`
	cases := []struct {
		name string
		body string
		want string
	}{
		{"no files", "", "no [[file]] entries"},
		{"bad kind", header + `
[[node]]
name = "n"
kind = "nope"
span = [0, 1]
`, "bad kind"},
		{"abstract kind", header + `
[[node]]
name = "n"
kind = "pat"
span = [0, 1]
`, "bad kind"},
		{"span past end", header + `
[[node]]
name = "n"
kind = "file"
span = [0, 99]
`, "past end"},
		{"undeclared parent", header + `
[[node]]
name = "n"
kind = "wildcard_pat"
span = [0, 1]
parent = "later"
`, "must be declared first"},
		{"field not in shape", header + `
[[node]]
name = "p"
kind = "record_pat"
span = [0, 6]

[[node]]
name = "n"
kind = "path"
span = [0, 1]
parent = "p"
field = "callee"
`, "has no field \"callee\""},
		{"child of non-list", header + `
[[node]]
name = "p"
kind = "record_pat"
span = [0, 6]

[[node]]
name = "n"
kind = "path"
span = [0, 1]
parent = "p"
`, "has no child list"},
		{"token not in shape", header + `
[[node]]
name = "n"
kind = "path"
span = [0, 1]
tokens = { name = [0, 1] }
`, "has no token \"name\""},
		{"raw without node", header + `
[[body]]
id = 1
  [[body.pat]]
  id = 1
  kind = "wildcard"
  origin = "raw"
`, "raw origin needs a node"},
		{"unknown parent ref", header + `
[[body]]
id = 1
  [[body.pat]]
  id = 1
  kind = "wildcard"
  parent = "pat:9"
`, "unknown pattern"},
		{"unknown code", header + `
[[node]]
name = "n"
kind = "wildcard_pat"
span = [0, 1]

[[body]]
id = 1
  [[body.pat]]
  id = 1
  kind = "wildcard"
  origin = "raw"
  node = "n"

[[diagnostic]]
code = "XYZ1"
primary = "pat:1@1"
`, "unknown code"},
		{"ok without span", header + `
[[node]]
name = "n"
kind = "wildcard_pat"
span = [0, 1]

[[body]]
id = 1
  [[body.pat]]
  id = 1
  kind = "wildcard"
  origin = "raw"
  node = "n"

[[expect]]
handle = "pat:1@1"
`, "needs span"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.body, t.TempDir())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestExpectationCheckReportsMismatch(t *testing.T) {
	f := loadRecord(t)
	e := f.Expectations[0]
	if err := e.Check(source.Span{File: 0, Start: 1, End: 2}, nil); err == nil {
		t.Fatal("expected a span mismatch")
	}
	if err := e.Check(source.Span{}, &span.UnresolvableOriginError{Root: "x", Reason: "y"}); err == nil {
		t.Fatal("expected a failure-kind mismatch")
	}
}

func TestNodeLookup(t *testing.T) {
	f := loadRecord(t)
	file, id, ok := f.Node("fx")
	if !ok {
		t.Fatal("node fx missing")
	}
	sp, ok := f.Tree(file).Span(id)
	if !ok || sp.Start != 17 || sp.End != 18 {
		t.Fatalf("fx span = %v", sp)
	}
	if _, _, ok := f.Node("nope"); ok {
		t.Fatal("unexpected node")
	}
	if _, ok := f.Snapshot.Item(hir.ItemID(1)); !ok {
		t.Fatal("item 1 missing")
	}
}

func TestAccessorsSorted(t *testing.T) {
	names := Accessors()
	if !slices.IsSorted(names) {
		t.Fatal("accessor names not sorted")
	}
	if !slices.Contains(names, "into_record_pat") || !slices.Contains(names, "field") {
		t.Fatalf("missing accessors in %v", names)
	}
}
