// Package fixture loads hand-written analysis snapshots from TOML.
//
// A fixture describes source files, their syntax trees, bodies with source
// map entries, items, diagnostics whose locations are handle paths, and
// expected resolution outcomes. It stands in for a parser and a lowering
// pass so span resolution can be exercised end to end.
package fixture

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"spanres/internal/diag"
	"spanres/internal/hir"
	"spanres/internal/source"
	"spanres/internal/span"
	"spanres/internal/syntax"
)

type document struct {
	Files       []fileDoc   `toml:"file"`
	Nodes       []nodeDoc   `toml:"node"`
	Bodies      []bodyDoc   `toml:"body"`
	Items       []itemDoc   `toml:"item"`
	Diagnostics []diagDoc   `toml:"diagnostic"`
	Expect      []expectDoc `toml:"expect"`
}

// Node and expectation offsets index the file's text after a leading BOM is
// stripped and CRLF is folded to LF.
type fileDoc struct {
	Path string `toml:"path"`
	Text string `toml:"text"`
	// Source names a file on disk, relative to the fixture, read instead of Text.
	Source string `toml:"source"`
}

type nodeDoc struct {
	Name   string              `toml:"name"`
	File   string              `toml:"file"`
	Kind   string              `toml:"kind"`
	Span   []uint32            `toml:"span"`
	Parent string              `toml:"parent"`
	Field  string              `toml:"field"`
	Tokens map[string][]uint32 `toml:"tokens"`
}

type bodyDoc struct {
	ID    uint32       `toml:"id"`
	File  string       `toml:"file"`
	Pats  []semNodeDoc `toml:"pat"`
	Exprs []semNodeDoc `toml:"expr"`
}

type semNodeDoc struct {
	ID     uint32 `toml:"id"`
	Kind   string `toml:"kind"`
	Origin string `toml:"origin"`
	Node   string `toml:"node"`
	Parent string `toml:"parent"`
}

type itemDoc struct {
	ID   uint32 `toml:"id"`
	File string `toml:"file"`
	Node string `toml:"node"`
}

type diagDoc struct {
	Severity string    `toml:"severity"`
	Code     string    `toml:"code"`
	Message  string    `toml:"message"`
	Primary  string    `toml:"primary"`
	Context  string    `toml:"context"`
	Notes    []noteDoc `toml:"note"`
}

type noteDoc struct {
	At  string `toml:"at"`
	Msg string `toml:"msg"`
}

type expectDoc struct {
	Handle   string   `toml:"handle"`
	Span     []uint32 `toml:"span"`
	Failure  string   `toml:"failure"`
	Fallback []uint32 `toml:"fallback"`
	Step     *int     `toml:"step"`
	Reason   string   `toml:"reason"`
}

// Fixture is a loaded snapshot plus the diagnostics and expectations declared
// against it.
type Fixture struct {
	Path         string
	Snapshot     *hir.Snapshot
	Diagnostics  []diag.Diagnostic
	Expectations []Expectation

	nodes map[string]nodeRef
	trees map[source.FileID]*syntax.Tree
}

type nodeRef struct {
	file source.FileID
	id   syntax.NodeID
}

// Node returns the syntax node declared under name.
func (f *Fixture) Node(name string) (source.FileID, syntax.NodeID, bool) {
	ref, ok := f.nodes[name]
	return ref.file, ref.id, ok
}

// Tree returns the syntax tree built for file.
func (f *Fixture) Tree(file source.FileID) *syntax.Tree {
	return f.trees[file]
}

// Load reads and builds the fixture at path.
func Load(path string) (*Fixture, error) {
	var doc document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	f, err := build(&doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse builds a fixture from TOML text. Source references resolve against dir.
func Parse(text, dir string) (*Fixture, error) {
	var doc document
	if _, err := toml.Decode(text, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return build(&doc, dir)
}

type builder struct {
	f     *Fixture
	files map[string]source.FileID
	first string
}

func build(doc *document, dir string) (*Fixture, error) {
	if len(doc.Files) == 0 {
		return nil, fmt.Errorf("no [[file]] entries")
	}
	fs := source.NewFileSetWithBase(dir)
	b := &builder{
		f: &Fixture{
			Snapshot: hir.NewSnapshot(fs),
			nodes:    make(map[string]nodeRef),
			trees:    make(map[source.FileID]*syntax.Tree),
		},
		files: make(map[string]source.FileID),
	}
	for i, fd := range doc.Files {
		if err := b.addFile(fs, fd, dir); err != nil {
			return nil, fmt.Errorf("file[%d]: %w", i, err)
		}
	}
	for i, nd := range doc.Nodes {
		if err := b.addNode(nd); err != nil {
			return nil, fmt.Errorf("node[%d] %q: %w", i, nd.Name, err)
		}
	}
	for _, t := range b.f.trees {
		b.f.Snapshot.AddTree(t)
	}
	for i, bd := range doc.Bodies {
		if err := b.addBody(bd); err != nil {
			return nil, fmt.Errorf("body[%d]: %w", i, err)
		}
	}
	for i, it := range doc.Items {
		if err := b.addItem(it); err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
	}
	for i, dd := range doc.Diagnostics {
		d, err := b.diagnostic(dd)
		if err != nil {
			return nil, fmt.Errorf("diagnostic[%d]: %w", i, err)
		}
		b.f.Diagnostics = append(b.f.Diagnostics, d)
	}
	for i, ed := range doc.Expect {
		e, err := b.expectation(ed)
		if err != nil {
			return nil, fmt.Errorf("expect[%d]: %w", i, err)
		}
		b.f.Expectations = append(b.f.Expectations, e)
	}
	return b.f, nil
}

func (b *builder) addFile(fs *source.FileSet, fd fileDoc, dir string) error {
	if fd.Path == "" {
		return fmt.Errorf("missing path")
	}
	if _, dup := fs.Latest(fd.Path); dup {
		return fmt.Errorf("duplicate path %q", fd.Path)
	}
	var id source.FileID
	if fd.Source != "" {
		var err error
		if id, err = fs.LoadAs(fd.Path, filepath.Join(dir, fd.Source)); err != nil {
			return err
		}
	} else {
		id = fs.AddVirtual(fd.Path, []byte(fd.Text))
	}
	b.files[fd.Path] = id
	if b.first == "" {
		b.first = fd.Path
	}
	b.f.trees[id] = syntax.NewTree(id)
	return nil
}

func (b *builder) file(name string) (source.FileID, error) {
	if name == "" {
		name = b.first
	}
	id, ok := b.files[name]
	if !ok {
		return 0, fmt.Errorf("unknown file %q", name)
	}
	return id, nil
}

func (b *builder) addNode(nd nodeDoc) error {
	if nd.Name == "" {
		return fmt.Errorf("missing name")
	}
	if _, dup := b.f.nodes[nd.Name]; dup {
		return fmt.Errorf("duplicate node name")
	}
	fid, err := b.file(nd.File)
	if err != nil {
		return err
	}
	kind, ok := syntax.ParseKind(nd.Kind)
	if !ok || kind.IsAbstract() {
		return fmt.Errorf("bad kind %q", nd.Kind)
	}
	sp, err := b.span(fid, nd.Span)
	if err != nil {
		return err
	}
	tree := b.f.trees[fid]
	id := tree.NewNode(kind, sp.Start, sp.End)

	shape := syntax.ShapeOf(kind)
	for tok, r := range nd.Tokens {
		if !shape.HasToken(tok) {
			return fmt.Errorf("%s has no token %q", kind, tok)
		}
		tsp, err := b.span(fid, r)
		if err != nil {
			return fmt.Errorf("token %q: %w", tok, err)
		}
		tree.SetToken(id, tok, tsp.Start, tsp.End)
	}

	if nd.Parent != "" {
		parent, ok := b.f.nodes[nd.Parent]
		if !ok {
			return fmt.Errorf("parent %q must be declared first", nd.Parent)
		}
		if parent.file != fid {
			return fmt.Errorf("parent %q is in another file", nd.Parent)
		}
		pshape := syntax.ShapeOf(tree.Kind(parent.id))
		if nd.Field != "" {
			if !pshape.HasField(nd.Field) {
				return fmt.Errorf("%s has no field %q", tree.Kind(parent.id), nd.Field)
			}
			tree.SetField(parent.id, nd.Field, id)
		} else {
			if !pshape.List {
				return fmt.Errorf("%s has no child list", tree.Kind(parent.id))
			}
			tree.AppendChild(parent.id, id)
		}
	} else if nd.Field != "" {
		return fmt.Errorf("field %q without parent", nd.Field)
	}
	b.f.nodes[nd.Name] = nodeRef{file: fid, id: id}
	return nil
}

func (b *builder) span(fid source.FileID, r []uint32) (source.Span, error) {
	if len(r) != 2 || r[0] > r[1] {
		return source.Span{}, fmt.Errorf("span must be [start, end], got %v", r)
	}
	file := b.f.Snapshot.Files.Get(fid)
	sp := source.Span{File: fid, Start: r[0], End: r[1]}
	if !sp.Within(uint32(len(file.Content))) {
		return source.Span{}, fmt.Errorf("span %v past end of %s (%d bytes)", r, file.Path, len(file.Content))
	}
	return sp, nil
}

func (b *builder) node(fid source.FileID, name string) (syntax.NodeID, error) {
	ref, ok := b.f.nodes[name]
	if !ok {
		return syntax.NoNodeID, fmt.Errorf("unknown node %q", name)
	}
	if ref.file != fid {
		return syntax.NoNodeID, fmt.Errorf("node %q is in another file", name)
	}
	return ref.id, nil
}

func (b *builder) addBody(bd bodyDoc) error {
	if bd.ID == 0 {
		return fmt.Errorf("missing id")
	}
	if _, dup := b.f.Snapshot.BodyData(hir.BodyID(bd.ID)); dup {
		return fmt.Errorf("duplicate body %d", bd.ID)
	}
	fid, err := b.file(bd.File)
	if err != nil {
		return err
	}
	data := b.f.Snapshot.NewBodyWithID(hir.BodyID(bd.ID), fid)
	for _, p := range bd.Pats {
		kind, ok := hir.ParsePatKind(p.Kind)
		if !ok {
			return fmt.Errorf("pat %d: bad kind %q", p.ID, p.Kind)
		}
		if p.ID == 0 {
			return fmt.Errorf("pat: missing id")
		}
		data.Pats[hir.PatID(p.ID)] = kind
	}
	for _, e := range bd.Exprs {
		kind, ok := hir.ParseExprKind(e.Kind)
		if !ok {
			return fmt.Errorf("expr %d: bad kind %q", e.ID, e.Kind)
		}
		if e.ID == 0 {
			return fmt.Errorf("expr: missing id")
		}
		data.Exprs[hir.ExprID(e.ID)] = kind
	}
	for _, p := range bd.Pats {
		if err := b.record(data, fid, hir.PatRef(hir.PatID(p.ID)), p); err != nil {
			return fmt.Errorf("pat %d: %w", p.ID, err)
		}
	}
	for _, e := range bd.Exprs {
		if err := b.record(data, fid, hir.ExprRef(hir.ExprID(e.ID)), e); err != nil {
			return fmt.Errorf("expr %d: %w", e.ID, err)
		}
	}
	return nil
}

func (b *builder) record(data *hir.BodyData, fid source.FileID, ref hir.NodeRef, nd semNodeDoc) error {
	node := syntax.NoNodeID
	if nd.Node != "" {
		id, err := b.node(fid, nd.Node)
		if err != nil {
			return err
		}
		node = id
	}
	switch nd.Origin {
	case "":
		if node.IsValid() {
			return fmt.Errorf("node %q given without origin", nd.Node)
		}
	case "raw":
		if !node.IsValid() {
			return fmt.Errorf("raw origin needs a node")
		}
		data.SourceMap.Record(ref, hir.Raw(node))
	case "desugared":
		data.SourceMap.Record(ref, hir.Desugared(node))
	case "expanded":
		data.SourceMap.Record(ref, hir.Expanded(node))
	case "none":
		data.SourceMap.Record(ref, hir.Origin{Kind: hir.OriginNone})
	default:
		return fmt.Errorf("bad origin %q", nd.Origin)
	}
	if nd.Parent != "" {
		parent, err := parseRef(data, nd.Parent)
		if err != nil {
			return err
		}
		data.SourceMap.SetParent(ref, parent)
	}
	return nil
}

// parseRef reads "pat:<id>" or "expr:<id>" within data's body.
func parseRef(data *hir.BodyData, text string) (hir.NodeRef, error) {
	kind, idText, ok := strings.Cut(text, ":")
	if !ok {
		return hir.NodeRef{}, fmt.Errorf("parent %q: want pat:<id> or expr:<id>", text)
	}
	id, err := parseID(idText)
	if err != nil {
		return hir.NodeRef{}, fmt.Errorf("parent %q: %w", text, err)
	}
	switch kind {
	case "pat":
		if _, ok := data.Pats[hir.PatID(id)]; !ok {
			return hir.NodeRef{}, fmt.Errorf("parent %q: unknown pattern", text)
		}
		return hir.PatRef(hir.PatID(id)), nil
	case "expr":
		if _, ok := data.Exprs[hir.ExprID(id)]; !ok {
			return hir.NodeRef{}, fmt.Errorf("parent %q: unknown expression", text)
		}
		return hir.ExprRef(hir.ExprID(id)), nil
	default:
		return hir.NodeRef{}, fmt.Errorf("parent %q: unknown kind %q", text, kind)
	}
}

func (b *builder) addItem(it itemDoc) error {
	if it.ID == 0 {
		return fmt.Errorf("missing id")
	}
	if _, dup := b.f.Snapshot.Item(hir.ItemID(it.ID)); dup {
		return fmt.Errorf("duplicate item %d", it.ID)
	}
	fid, err := b.file(it.File)
	if err != nil {
		return err
	}
	node, err := b.node(fid, it.Node)
	if err != nil {
		return err
	}
	b.f.Snapshot.NewItemWithID(hir.ItemID(it.ID), fid, node)
	return nil
}

func (b *builder) handle(path string) (span.LazySpan, error) {
	if path == "" {
		return nil, nil
	}
	return ParseHandle(b.f.Snapshot, path)
}

func (b *builder) diagnostic(dd diagDoc) (diag.Diagnostic, error) {
	sev := diag.SevError
	if dd.Severity != "" {
		var ok bool
		if sev, ok = diag.ParseSeverity(dd.Severity); !ok {
			return diag.Diagnostic{}, fmt.Errorf("bad severity %q", dd.Severity)
		}
	}
	code, ok := diag.ParseCode(dd.Code)
	if !ok {
		return diag.Diagnostic{}, fmt.Errorf("unknown code %q", dd.Code)
	}
	primary, err := b.handle(dd.Primary)
	if err != nil {
		return diag.Diagnostic{}, err
	}
	d := diag.New(sev, code, primary, dd.Message)
	if d.Context, err = b.handle(dd.Context); err != nil {
		return diag.Diagnostic{}, err
	}
	for _, n := range dd.Notes {
		h, err := b.handle(n.At)
		if err != nil {
			return diag.Diagnostic{}, err
		}
		d = d.WithNote(h, n.Msg)
	}
	return d, nil
}
