package span

import (
	"testing"

	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/syntax"
)

// recordSrc holds `Pt{    x, y  }` at [10,24); the record pattern node is
// recorded with the wider range [10,26).
const recordSrc = "fn main(){Pt{    x, y  }  = p; }"

type world struct {
	snap *hir.Snapshot
	tree *syntax.Tree
	body hir.Body
	data *hir.BodyData
	item hir.Item

	fn, block, rec, fields, fx, fy syntax.NodeID
}

const (
	patRecord         hir.PatID = 1 // raw record pattern
	patDesugared      hir.PatID = 2 // desugared from the block
	patUnmappedChild  hir.PatID = 3 // absent, parent patRecord
	patOrphan         hir.PatID = 4 // absent, no parent
	patDesugaredChild hir.PatID = 5 // desugared without construct, parent patRecord
	patDesugaredBare  hir.PatID = 6 // desugared without construct or parent
)

func newWorld(t *testing.T) *world {
	t.Helper()
	files := source.NewFileSet()
	fid := files.AddVirtual("main.sp", []byte(recordSrc))

	tree := syntax.NewTree(fid)
	file := tree.NewNode(syntax.KindFile, 0, 32)
	fn := tree.NewNode(syntax.KindFunc, 0, 32)
	tree.AppendChild(file, fn)
	tree.SetToken(fn, syntax.TokenName, 3, 7)
	params := tree.NewNode(syntax.KindFuncParamList, 7, 9)
	tree.SetField(fn, syntax.FieldParams, params)
	block := tree.NewNode(syntax.KindBlockExpr, 9, 32)
	tree.SetField(fn, syntax.FieldBody, block)

	rec := tree.NewNode(syntax.KindRecordPat, 10, 26)
	tree.AppendChild(block, rec)
	path := tree.NewNode(syntax.KindPath, 10, 12)
	tree.SetField(rec, syntax.FieldPath, path)
	seg := tree.NewNode(syntax.KindPathSegment, 10, 12)
	tree.AppendChild(path, seg)
	tree.SetToken(seg, syntax.TokenIdent, 10, 12)

	fields := tree.NewNode(syntax.KindRecordPatFieldList, 12, 24)
	tree.SetField(rec, syntax.FieldFields, fields)
	fx := tree.NewNode(syntax.KindRecordPatField, 17, 18)
	tree.AppendChild(fields, fx)
	tree.SetToken(fx, syntax.TokenName, 17, 18)
	fy := tree.NewNode(syntax.KindRecordPatField, 20, 21)
	tree.AppendChild(fields, fy)
	tree.SetToken(fy, syntax.TokenName, 20, 21)

	snap := hir.NewSnapshot(files)
	snap.AddTree(tree)

	data := snap.NewBody(fid)
	smap := data.SourceMap
	data.Pats[patRecord] = hir.PatRecord
	smap.Record(hir.PatRef(patRecord), hir.Raw(rec))

	data.Pats[patDesugared] = hir.PatWildcard
	smap.Record(hir.PatRef(patDesugared), hir.Desugared(block))

	data.Pats[patUnmappedChild] = hir.PatWildcard
	smap.SetParent(hir.PatRef(patUnmappedChild), hir.PatRef(patRecord))

	data.Pats[patOrphan] = hir.PatWildcard

	data.Pats[patDesugaredChild] = hir.PatWildcard
	smap.Record(hir.PatRef(patDesugaredChild), hir.Desugared(syntax.NoNodeID))
	smap.SetParent(hir.PatRef(patDesugaredChild), hir.PatRef(patRecord))

	data.Pats[patDesugaredBare] = hir.PatWildcard
	smap.Record(hir.PatRef(patDesugaredBare), hir.Desugared(syntax.NoNodeID))

	item := snap.NewItem(fid, fn)

	return &world{
		snap: snap, tree: tree, body: data.Body, data: data, item: item,
		fn: fn, block: block, rec: rec, fields: fields, fx: fx, fy: fy,
	}
}

func (w *world) span(start, end uint32) source.Span {
	return source.Span{File: w.tree.File, Start: start, End: end}
}
