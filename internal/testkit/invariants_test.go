package testkit

import (
	"strings"
	"testing"

	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/span"
	"spanres/internal/syntax"
)

const text = "fn main(){Pt{    x, y  }  = p; }"

func buildTree(t *testing.T) (*source.FileSet, *syntax.Tree, map[string]syntax.NodeID) {
	t.Helper()
	fs := source.NewFileSet()
	fid := fs.AddVirtual("main.sp", []byte(text))
	tree := syntax.NewTree(fid)
	ids := map[string]syntax.NodeID{}
	ids["file"] = tree.NewNode(syntax.KindFile, 0, 32)
	ids["block"] = tree.NewNode(syntax.KindBlockExpr, 9, 32)
	tree.AppendChild(ids["file"], ids["block"])
	ids["rec"] = tree.NewNode(syntax.KindRecordPat, 10, 26)
	tree.AppendChild(ids["block"], ids["rec"])
	ids["fields"] = tree.NewNode(syntax.KindRecordPatFieldList, 12, 24)
	tree.SetField(ids["rec"], syntax.FieldFields, ids["fields"])
	ids["fx"] = tree.NewNode(syntax.KindRecordPatField, 17, 18)
	tree.AppendChild(ids["fields"], ids["fx"])
	tree.SetToken(ids["fx"], syntax.TokenName, 17, 18)
	return fs, tree, ids
}

func TestCheckTreeInvariantsAcceptsNestedTree(t *testing.T) {
	fs, tree, _ := buildTree(t)
	if err := CheckTreeInvariants(tree, fs.Get(tree.File)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckTreeInvariantsViolations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(tree *syntax.Tree, ids map[string]syntax.NodeID)
		want   string
	}{
		{"child escapes parent", func(tree *syntax.Tree, ids map[string]syntax.NodeID) {
			n := tree.NewNode(syntax.KindRecordPatField, 25, 30)
			tree.AppendChild(ids["fields"], n)
		}, "outside"},
		{"token escapes node", func(tree *syntax.Tree, ids map[string]syntax.NodeID) {
			tree.SetToken(ids["fx"], syntax.TokenName, 16, 18)
		}, "token \"name\""},
		{"undeclared field", func(tree *syntax.Tree, ids map[string]syntax.NodeID) {
			n := tree.NewNode(syntax.KindPath, 10, 12)
			tree.SetField(ids["rec"], syntax.FieldCallee, n)
		}, "undeclared field \"callee\""},
		{"undeclared token", func(tree *syntax.Tree, ids map[string]syntax.NodeID) {
			tree.SetToken(ids["rec"], syntax.TokenOp, 10, 11)
		}, "undeclared token \"op\""},
		{"children on non-list kind", func(tree *syntax.Tree, ids map[string]syntax.NodeID) {
			n := tree.NewNode(syntax.KindPath, 10, 12)
			tree.AppendChild(ids["rec"], n)
		}, "no child list"},
		{"past content", func(tree *syntax.Tree, ids map[string]syntax.NodeID) {
			tree.NewNode(syntax.KindWildcardPat, 30, 40)
		}, "beyond content"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs, tree, ids := buildTree(t)
			tc.mutate(tree, ids)
			err := CheckTreeInvariants(tree, fs.Get(tree.File))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestCheckTreeInvariantsRejectsNil(t *testing.T) {
	if err := CheckTreeInvariants(nil, nil); err == nil {
		t.Fatal("expected error for nil inputs")
	}
}

func TestCheckNarrowing(t *testing.T) {
	fs, tree, ids := buildTree(t)
	snap := hir.NewSnapshot(fs)
	snap.AddTree(tree)
	data := snap.NewBody(tree.File)
	data.Pats[1] = hir.PatRecord
	data.SourceMap.Record(hir.PatRef(1), hir.Raw(ids["rec"]))

	rec := span.NewLazyRecordPatSpan(1, data.Body)
	for _, h := range []span.LazySpan{
		rec,
		rec.Fields(),
		rec.Fields().Field(0).Name(),
		rec.Fields().Field(3).Name(), // fails at step 1; earlier rows still narrow
	} {
		if err := CheckNarrowing(snap, h); err != nil {
			t.Fatalf("%s: %v", h.Chain(), err)
		}
	}

	// A child wider than its parent breaks narrowing.
	wide := tree.NewNode(syntax.KindRecordPatField, 9, 30)
	tree.AppendChild(ids["fields"], wide)
	tree.SetToken(wide, syntax.TokenName, 9, 30)
	if err := CheckNarrowing(snap, rec.Fields().Field(1)); err == nil {
		t.Fatal("expected a narrowing violation")
	}
}

func TestCheckNormalized(t *testing.T) {
	fs := source.NewFileSet()
	nfc := fs.Get(fs.AddVirtual("nfc.sp", []byte("let caf\u00e9 = 1")))
	if err := CheckNormalized(nfc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nfd := fs.Get(fs.AddVirtual("nfd.sp", []byte("let cafe\u0301 = 1")))
	err := CheckNormalized(nfd)
	if err == nil || !strings.Contains(err.Error(), "at byte 7") {
		t.Fatalf("error = %v, want offending segment at byte 7", err)
	}
	if err := CheckNormalized(nil); err != nil {
		t.Fatal(err)
	}
}
