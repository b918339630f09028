package fixture

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"spanres/internal/hir"
	"spanres/internal/span"
)

// ParseHandle builds a lazy handle from a textual path such as
//
//	pat:1@1.into_record_pat.fields.field[0].name
//
// The root is pat:<id>@<body>, expr:<id>@<body> or item:<id>; a body or item
// may carry an explicit generation (pat:1@1:g2, item:3:g1), otherwise the
// snapshot's current one is used. Each following segment names an accessor
// the current handle type declares; indexed accessors take [i].
func ParseHandle(snap *hir.Snapshot, path string) (span.LazySpan, error) {
	segments := strings.Split(strings.TrimSpace(path), ".")
	h, err := parseRoot(snap, segments[0])
	if err != nil {
		return nil, fmt.Errorf("handle %q: %w", path, err)
	}
	for _, seg := range segments[1:] {
		h, err = applyAccessor(h, seg)
		if err != nil {
			return nil, fmt.Errorf("handle %q: %w", path, err)
		}
	}
	return h, nil
}

func parseRoot(snap *hir.Snapshot, root string) (span.LazySpan, error) {
	kind, rest, ok := strings.Cut(root, ":")
	if !ok {
		return nil, fmt.Errorf("root %q: want kind:id", root)
	}
	switch kind {
	case "pat", "expr":
		idText, bodyText, ok := strings.Cut(rest, "@")
		if !ok {
			return nil, fmt.Errorf("root %q: missing @body", root)
		}
		id, err := parseID(idText)
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", root, err)
		}
		body, err := parseBody(snap, bodyText)
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", root, err)
		}
		if kind == "pat" {
			return span.NewLazyPatSpan(hir.PatID(id), body), nil
		}
		return span.NewLazyExprSpan(hir.ExprID(id), body), nil
	case "item":
		idText, genText, hasGen := strings.Cut(rest, ":")
		id, err := parseID(idText)
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", root, err)
		}
		item, ok := snap.Item(hir.ItemID(id))
		if !ok {
			return nil, fmt.Errorf("root %q: unknown item %d", root, id)
		}
		if hasGen {
			gen, err := parseGen(genText)
			if err != nil {
				return nil, fmt.Errorf("root %q: %w", root, err)
			}
			item.Gen = gen
		}
		return span.NewLazyItemSpan(item), nil
	default:
		return nil, fmt.Errorf("root %q: unknown kind %q", root, kind)
	}
}

func parseBody(snap *hir.Snapshot, text string) (hir.Body, error) {
	idText, genText, hasGen := strings.Cut(text, ":")
	id, err := parseID(idText)
	if err != nil {
		return hir.Body{}, err
	}
	data, ok := snap.BodyData(hir.BodyID(id))
	if !ok {
		return hir.Body{}, fmt.Errorf("unknown body %d", id)
	}
	body := data.Body
	if hasGen {
		if body.Gen, err = parseGen(genText); err != nil {
			return hir.Body{}, err
		}
	}
	return body, nil
}

func parseID(text string) (uint32, error) {
	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("bad id %q", text)
	}
	return uint32(n), nil
}

func parseGen(text string) (hir.Generation, error) {
	digits, ok := strings.CutPrefix(text, "g")
	if !ok {
		return 0, fmt.Errorf("bad generation %q", text)
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad generation %q", text)
	}
	return hir.Generation(n), nil
}

func applyAccessor(h span.LazySpan, seg string) (span.LazySpan, error) {
	name, index, indexed, err := splitIndex(seg)
	if err != nil {
		return nil, err
	}
	candidates, ok := accessors[name]
	if !ok {
		return nil, fmt.Errorf("unknown accessor %q", name)
	}
	for _, acc := range candidates {
		if acc.indexed != indexed {
			continue
		}
		if next, ok := acc.apply(h, index); ok {
			return next, nil
		}
	}
	if indexed {
		return nil, fmt.Errorf("%s has no indexed accessor %q", h.Shape(), name)
	}
	return nil, fmt.Errorf("%s has no accessor %q", h.Shape(), name)
}

func splitIndex(seg string) (name string, index int, indexed bool, err error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, 0, false, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, false, fmt.Errorf("segment %q: unterminated index", seg)
	}
	index, err = strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || index < 0 {
		return "", 0, false, fmt.Errorf("segment %q: bad index", seg)
	}
	return seg[:open], index, true, nil
}

type accessor struct {
	indexed bool
	apply   func(h span.LazySpan, i int) (span.LazySpan, bool)
}

func on[T span.LazySpan, R span.LazySpan](f func(T) R) accessor {
	return accessor{apply: func(h span.LazySpan, _ int) (span.LazySpan, bool) {
		t, ok := h.(T)
		if !ok {
			return nil, false
		}
		return f(t), true
	}}
}

func onIndex[T span.LazySpan, R span.LazySpan](f func(T, int) R) accessor {
	return accessor{indexed: true, apply: func(h span.LazySpan, i int) (span.LazySpan, bool) {
		t, ok := h.(T)
		if !ok {
			return nil, false
		}
		return f(t, i), true
	}}
}

// accessors is the closed table of handle accessors by path segment name.
var accessors = map[string][]accessor{
	// Patterns.
	"into_path_pat":       {on(span.LazyPatSpan.IntoPathPat)},
	"into_path_tuple_pat": {on(span.LazyPatSpan.IntoPathTuplePat)},
	"into_record_pat":     {on(span.LazyPatSpan.IntoRecordPat)},
	"elems":               {on(span.LazyPathTuplePatSpan.Elems)},
	"elem":                {onIndex(span.LazyPatListSpan.Elem)},
	"fields": {
		on(span.LazyRecordPatSpan.Fields),
		on(span.LazyRecordInitExprSpan.Fields),
	},
	"field": {
		onIndex(span.LazyRecordPatFieldListSpan.Field),
		onIndex(span.LazyRecordFieldListSpan.Field),
	},
	"pat": {
		on(span.LazyRecordPatFieldSpan.Pat),
		on(span.LazyMatchArmSpan.Pat),
	},

	// Paths.
	"path": {
		on(span.LazyPathPatSpan.Path),
		on(span.LazyPathTuplePatSpan.Path),
		on(span.LazyRecordPatSpan.Path),
		on(span.LazyRecordInitExprSpan.Path),
		on(span.LazyPathExprSpan.Path),
		on(span.LazyPathTypeSpan.Path),
	},
	"segment": {onIndex(span.LazyPathSpan.Segment)},
	"ident":   {on(span.LazyPathSegmentSpan.Ident)},

	// Expressions.
	"into_call_expr":        {on(span.LazyExprSpan.IntoCallExpr)},
	"into_bin_expr":         {on(span.LazyExprSpan.IntoBinExpr)},
	"into_field_expr":       {on(span.LazyExprSpan.IntoFieldExpr)},
	"into_record_init_expr": {on(span.LazyExprSpan.IntoRecordInitExpr)},
	"into_path_expr":        {on(span.LazyExprSpan.IntoPathExpr)},
	"into_match_expr":       {on(span.LazyExprSpan.IntoMatchExpr)},
	"callee":                {on(span.LazyCallExprSpan.Callee)},
	"args":                  {on(span.LazyCallExprSpan.Args)},
	"arg":                   {onIndex(span.LazyCallArgListSpan.Arg)},
	"label": {
		on(span.LazyCallArgSpan.Label),
		on(span.LazyRecordFieldSpan.Label),
	},
	"expr": {
		on(span.LazyCallArgSpan.Expr),
		on(span.LazyRecordFieldSpan.Expr),
	},
	"lhs":       {on(span.LazyBinExprSpan.Lhs)},
	"op":        {on(span.LazyBinExprSpan.Op)},
	"rhs":       {on(span.LazyBinExprSpan.Rhs)},
	"receiver":  {on(span.LazyFieldExprSpan.Receiver)},
	"scrutinee": {on(span.LazyMatchExprSpan.Scrutinee)},
	"arms":      {on(span.LazyMatchExprSpan.Arms)},
	"arm":       {onIndex(span.LazyMatchArmListSpan.Arm)},
	"body":      {on(span.LazyMatchArmSpan.Body)},

	// Items and types.
	"into_func":      {on(span.LazyItemSpan.IntoFunc)},
	"params":         {on(span.LazyFuncSpan.Params)},
	"param":          {onIndex(span.LazyFuncParamListSpan.Param)},
	"ret_ty":         {on(span.LazyFuncSpan.RetTy)},
	"ty":             {on(span.LazyFuncParamSpan.Ty)},
	"into_path_type": {on(span.LazyTySpan.IntoPathType)},
	"name": {
		on(span.LazyRecordPatFieldSpan.Name),
		on(span.LazyFieldExprSpan.Name),
		on(span.LazyFuncSpan.Name),
		on(span.LazyFuncParamSpan.Name),
	},
}

// Accessors lists the accessor names ParseHandle understands, sorted.
func Accessors() []string {
	out := make([]string, 0, len(accessors))
	for name := range accessors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
