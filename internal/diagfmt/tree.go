package diagfmt

import (
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-json"

	"spanres/internal/source"
	"spanres/internal/syntax"
)

// TreeNodeOutput is one syntax node in JSON tree dumps.
type TreeNodeOutput struct {
	ID       uint32                 `json:"id"`
	Kind     string                 `json:"kind"`
	Span     source.Span            `json:"span"`
	Role     string                 `json:"role,omitempty"`
	Tokens   map[string]source.Span `json:"tokens,omitempty"`
	Children []TreeNodeOutput       `json:"children,omitempty"`
}

type treeEdge struct {
	role string
	id   syntax.NodeID
}

// edges lists the named fields of id in name order, then its list children.
func edges(t *syntax.Tree, id syntax.NodeID) []treeEdge {
	fields := t.Fields(id)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]treeEdge, 0, len(names)+t.ChildCount(id))
	for _, name := range names {
		out = append(out, treeEdge{role: "." + name, id: fields[name]})
	}
	for i, child := range t.Children(id) {
		out = append(out, treeEdge{role: fmt.Sprintf("[%d]", i), id: child})
	}
	return out
}

// FormatTreePretty prints the syntax tree as an indented outline:
//
//	record_pat #2 (1:11-1:27)
//	├─ .fields record_pat_field_list #3 (1:13-1:25)
//	│  └─ [0] record_pat_field #4 (1:18-1:19) $name=1:18-1:19
func FormatTreePretty(w io.Writer, t *syntax.Tree, fs *source.FileSet) error {
	if t == nil || !t.Root.IsValid() {
		return fmt.Errorf("empty syntax tree")
	}
	return writeTreeNode(w, t, fs, t.Root, "", "", "")
}

func writeTreeNode(w io.Writer, t *syntax.Tree, fs *source.FileSet, id syntax.NodeID, role, lead, prefix string) error {
	sp, _ := t.Span(id)
	label := fmt.Sprintf("%s #%d (%s)", t.Kind(id), id, formatRange(fs, sp))
	if role != "" {
		label = role + " " + label
	}
	tokens := t.Tokens(id)
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		label += fmt.Sprintf(" $%s=%s", name, formatRange(fs, tokens[name]))
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", lead, label); err != nil {
		return err
	}

	children := edges(t, id)
	for i, e := range children {
		branch, next := "├─ ", "│  "
		if i == len(children)-1 {
			branch, next = "└─ ", "   "
		}
		if err := writeTreeNode(w, t, fs, e.id, e.role, prefix+branch, prefix+next); err != nil {
			return err
		}
	}
	return nil
}

// FormatTreeJSON writes the syntax tree as nested JSON.
func FormatTreeJSON(w io.Writer, t *syntax.Tree) error {
	if t == nil || !t.Root.IsValid() {
		return fmt.Errorf("empty syntax tree")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(treeJSON(t, t.Root, ""))
}

func treeJSON(t *syntax.Tree, id syntax.NodeID, role string) TreeNodeOutput {
	sp, _ := t.Span(id)
	out := TreeNodeOutput{
		ID:   uint32(id),
		Kind: t.Kind(id).String(),
		Span: sp,
		Role: role,
	}
	if toks := t.Tokens(id); len(toks) > 0 {
		out.Tokens = toks
	}
	for _, e := range edges(t, id) {
		out.Children = append(out.Children, treeJSON(t, e.id, e.role))
	}
	return out
}
