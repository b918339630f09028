package span

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/syntax"
)

func TestRecordPatFieldName(t *testing.T) {
	w := newWorld(t)
	rec := NewLazyPatSpan(patRecord, w.body).IntoRecordPat()

	got, err := Resolve(w.snap, rec.Fields().Field(0).Name())
	require.NoError(t, err)
	assert.Equal(t, w.span(17, 18), got)
	assert.Equal(t, "x", string(w.snap.Files.Get(w.tree.File).Slice(got)))

	got, err = Resolve(w.snap, rec.Fields())
	require.NoError(t, err)
	assert.Equal(t, w.span(12, 24), got)

	got, err = Resolve(w.snap, rec.Fields().Field(1).Name())
	require.NoError(t, err)
	assert.Equal(t, w.span(20, 21), got)
}

func TestRecordPatPath(t *testing.T) {
	w := newWorld(t)
	ident := NewLazyRecordPatSpan(patRecord, w.body).Path().Segment(0).Ident()

	got, err := ident.Resolve(w.snap)
	require.NoError(t, err)
	assert.Equal(t, "Pt", string(w.snap.Files.Get(w.tree.File).Slice(got)))
}

func TestDesugaredFallsBackToConstruct(t *testing.T) {
	w := newWorld(t)

	_, err := NewLazyPatSpan(patDesugared, w.body).Resolve(w.snap)
	require.Error(t, err)
	assert.Equal(t, FailureDesugared, Classify(err))

	var de *DesugaredError
	require.ErrorAs(t, err, &de)
	assert.True(t, de.HasFallback)
	assert.Equal(t, w.span(9, 32), de.Fallback)

	fb, ok := FallbackOf(err)
	assert.True(t, ok)
	assert.Equal(t, w.span(9, 32), fb)
}

// newRangeWorld builds `fn f(){1..=5}` with a range pattern at [7,12).
// Pattern 2 is synthesized from the range with no source map entry, and
// pattern 3 is recorded as an expansion of it.
func newRangeWorld(t *testing.T) (*hir.Snapshot, hir.Body, source.FileID) {
	t.Helper()
	files := source.NewFileSet()
	fid := files.AddVirtual("range.sp", []byte("fn f(){1..=5}"))

	tree := syntax.NewTree(fid)
	file := tree.NewNode(syntax.KindFile, 0, 13)
	fn := tree.NewNode(syntax.KindFunc, 0, 13)
	tree.AppendChild(file, fn)
	block := tree.NewNode(syntax.KindBlockExpr, 6, 13)
	tree.SetField(fn, syntax.FieldBody, block)
	rng := tree.NewNode(syntax.KindRangePat, 7, 12)
	tree.AppendChild(block, rng)
	tree.SetToken(rng, syntax.TokenOp, 8, 11)
	tree.SetField(rng, syntax.FieldStart, tree.NewNode(syntax.KindLitPat, 7, 8))
	tree.SetField(rng, syntax.FieldEnd, tree.NewNode(syntax.KindLitPat, 11, 12))

	snap := hir.NewSnapshot(files)
	snap.AddTree(tree)
	data := snap.NewBody(fid)
	data.Pats[1] = hir.PatRange
	data.SourceMap.Record(hir.PatRef(1), hir.Raw(rng))
	data.Pats[2] = hir.PatWildcard
	data.SourceMap.SetParent(hir.PatRef(2), hir.PatRef(1))
	data.Pats[3] = hir.PatLit
	data.SourceMap.Record(hir.PatRef(3), hir.Expanded(rng))
	return snap, data.Body, fid
}

func TestRangeExpansionFallsBackToRangePattern(t *testing.T) {
	snap, body, fid := newRangeWorld(t)
	rangeSpan := source.Span{File: fid, Start: 7, End: 12}

	got, err := NewLazyPatSpan(1, body).Resolve(snap)
	require.NoError(t, err)
	assert.Equal(t, rangeSpan, got)
	assert.Equal(t, "1..=5", string(snap.Files.Get(fid).Slice(got)))

	for _, id := range []hir.PatID{2, 3} {
		_, err := NewLazyPatSpan(id, body).Resolve(snap)
		require.Error(t, err, "pat %d", id)
		assert.Equal(t, FailureDesugared, Classify(err))

		var de *DesugaredError
		require.ErrorAs(t, err, &de)
		assert.True(t, de.HasFallback)
		assert.Equal(t, rangeSpan, de.Fallback, "pat %d", id)
	}
}

func TestAncestorSelection(t *testing.T) {
	w := newWorld(t)

	cases := []struct {
		name         string
		pat          hir.PatID
		wantKind     FailureKind
		wantFallback source.Span
		hasFallback  bool
	}{
		{"unmapped child", patUnmappedChild, FailureDesugared, w.span(10, 26), true},
		{"desugared child", patDesugaredChild, FailureDesugared, w.span(10, 26), true},
		{"desugared without construct", patDesugaredBare, FailureDesugared, source.Span{}, false},
		{"orphan", patOrphan, FailureUnresolvable, source.Span{}, false},
		{"unknown id", hir.PatID(99), FailureUnresolvable, source.Span{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLazyPatSpan(tc.pat, w.body).Resolve(w.snap)
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, Classify(err))
			fb, ok := FallbackOf(err)
			assert.Equal(t, tc.hasFallback, ok)
			if tc.hasFallback {
				assert.Equal(t, tc.wantFallback, fb)
			}
		})
	}
}

func TestAncestorWalkTerminatesOnCycle(t *testing.T) {
	w := newWorld(t)
	smap := w.data.SourceMap
	a, b := hir.PatRef(40), hir.PatRef(41)
	smap.SetParent(a, b)
	smap.SetParent(b, a)

	_, err := NewLazyPatSpan(40, w.body).Resolve(w.snap)
	assert.Equal(t, FailureUnresolvable, Classify(err))
}

func TestReinterpretedHandleMatchesDirect(t *testing.T) {
	w := newWorld(t)

	direct := NewLazyRecordPatSpan(patRecord, w.body).Fields().Field(1).Name()
	viaGeneric := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields().Field(1).Name()

	assert.True(t, direct.Chain().Equal(viaGeneric.Chain()))

	a, errA := direct.Resolve(w.snap)
	b, errB := viaGeneric.Resolve(w.snap)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestResolveIsDeterministic(t *testing.T) {
	w := newWorld(t)
	h := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields().Field(0)

	first, err := h.Resolve(w.snap)
	require.NoError(t, err)
	for range 10 {
		got, err := h.Resolve(w.snap)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestMonotonicNarrowing(t *testing.T) {
	w := newWorld(t)
	name := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields().Field(0).Name()

	rows := Explain(w.snap, name)
	require.Len(t, rows, name.Chain().Len()+1)
	for i := 1; i < len(rows); i++ {
		require.NoError(t, rows[i].Err)
		assert.True(t, rows[i-1].Span.Contains(rows[i].Span),
			"%s %s does not contain %s %s", rows[i-1].Label, rows[i-1].Span, rows[i].Label, rows[i].Span)
	}
	assert.Equal(t, -1, rows[0].Index)
	assert.Equal(t, w.span(10, 26), rows[0].Span)
}

func TestShapeLossAfterEdit(t *testing.T) {
	w := newWorld(t)
	second := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields().Field(1).Name()

	_, err := second.Resolve(w.snap)
	require.NoError(t, err)

	require.True(t, w.tree.RemoveChild(w.fields, 1))

	_, err = second.Resolve(w.snap)
	require.Error(t, err)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ReasonIndexOutOfRange, se.Reason)
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, ChildStep(1, syntax.KindRecordPatField), se.Step)
}

func TestMissingFieldAndToken(t *testing.T) {
	w := newWorld(t)
	field := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields().Field(0)

	_, err := field.Pat().Resolve(w.snap)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ReasonMissingField, se.Reason)

	_, err = NewLazyFuncSpan(w.item).Params().Param(0).Name().Resolve(w.snap)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ReasonIndexOutOfRange, se.Reason)

	_, err = field.Chain().Append(TokenStep(syntax.TokenLabel)).Resolve(w.snap)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ReasonMissingToken, se.Reason)
}

func TestWrongReinterpretationIsStepError(t *testing.T) {
	w := newWorld(t)
	// A record pattern treated as a path-tuple pattern has no elems field.
	elems := NewLazyPatSpan(patRecord, w.body).IntoPathTuplePat().Elems()

	_, err := elems.Resolve(w.snap)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ReasonMissingField, se.Reason)

	// The path field exists on both shapes, so it resolves.
	_, err = NewLazyPatSpan(patRecord, w.body).IntoPathPat().Path().Resolve(w.snap)
	assert.NoError(t, err)
}

func TestShapeMismatchAtStep(t *testing.T) {
	w := newWorld(t)
	// Put a path node where the field list should be.
	wrong := w.tree.NewNode(syntax.KindPath, 12, 24)
	w.tree.SetField(w.rec, syntax.FieldFields, wrong)

	_, err := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields().Resolve(w.snap)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ReasonShapeMismatch, se.Reason)
	assert.Equal(t, syntax.KindPath, se.Found)
	assert.Equal(t, 0, se.Index)
}

func TestRootShapeMismatch(t *testing.T) {
	w := newWorld(t)
	// An expression anchored at a pattern node.
	w.data.SourceMap.Record(hir.ExprRef(1), hir.Raw(w.rec))

	_, err := NewLazyExprSpan(1, w.body).Resolve(w.snap)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, -1, se.Index)
	assert.Equal(t, ReasonShapeMismatch, se.Reason)
	assert.Equal(t, syntax.KindRecordPat, se.Found)
}

func TestTokenHasNoChildren(t *testing.T) {
	w := newWorld(t)
	name := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields().Field(0).Name()
	c := name.Chain().Append(ChildStep(0, syntax.KindInvalid))

	_, err := c.Resolve(w.snap)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ReasonTokenHasNoChildren, se.Reason)
	assert.Equal(t, 3, se.Index)
}

func TestStaleGenerationIsUnresolvable(t *testing.T) {
	w := newWorld(t)
	h := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields()

	_, ok := w.snap.Rebuild(w.body.ID, w.body.File)
	require.True(t, ok)

	_, err := h.Resolve(w.snap)
	assert.Equal(t, FailureUnresolvable, Classify(err))
	assert.Contains(t, err.Error(), "superseded")
}

func TestMissingTreeIsUnresolvable(t *testing.T) {
	w := newWorld(t)
	other := w.snap.NewBody(source.FileID(7))
	other.SourceMap.Record(hir.PatRef(1), hir.Raw(w.rec))

	_, err := NewLazyPatSpan(1, other.Body).Resolve(w.snap)
	assert.Equal(t, FailureUnresolvable, Classify(err))
}

func TestFuncItem(t *testing.T) {
	w := newWorld(t)

	name, err := NewLazyFuncSpan(w.item).Name().Resolve(w.snap)
	require.NoError(t, err)
	assert.Equal(t, "main", string(w.snap.Files.Get(w.tree.File).Slice(name)))

	params, err := NewLazyItemSpan(w.item).IntoFunc().Params().Resolve(w.snap)
	require.NoError(t, err)
	assert.Equal(t, w.span(7, 9), params)

	_, err = NewLazyFuncSpan(w.item).RetTy().Resolve(w.snap)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ReasonMissingField, se.Reason)

	stale := w.item
	stale.Gen++
	_, err = NewLazyFuncSpan(stale).Name().Resolve(w.snap)
	assert.Equal(t, FailureUnresolvable, Classify(err))
}

func TestConcurrentResolution(t *testing.T) {
	w := newWorld(t)
	h := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields().Field(0).Name()
	want, err := h.Resolve(w.snap)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]source.Span, 32)
	errs := make([]error, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = h.Resolve(w.snap)
		}()
	}
	wg.Wait()
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}

func TestResolverWithoutTracer(t *testing.T) {
	w := newWorld(t)
	r := NewResolver(w.snap, nil)

	got, err := r.Resolve(context.Background(), NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields())
	require.NoError(t, err)
	assert.Equal(t, w.span(12, 24), got)
}

func TestExplainReportsFailingStep(t *testing.T) {
	w := newWorld(t)
	h := NewLazyPatSpan(patRecord, w.body).IntoRecordPat().Fields().Field(5).Name()

	rows := Explain(w.snap, h)
	require.Len(t, rows, 3)
	last := rows[len(rows)-1]
	require.Error(t, last.Err)
	assert.Equal(t, 1, last.Index)
	assert.Equal(t, "[5]", last.Label)
}
