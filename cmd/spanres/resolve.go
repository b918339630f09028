package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"spanres/internal/diag"
	"spanres/internal/diagfmt"
	"spanres/internal/driver"
	"spanres/internal/fixture"
	"spanres/internal/lsp"
	"spanres/internal/source"
	"spanres/internal/span"
	"spanres/internal/version"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve FIXTURE [HANDLE...]",
	Short: "Resolve the diagnostics of a fixture, or the given handles",
	Long: `Resolve materializes every deferred diagnostic of a fixture against its
snapshot and renders it. With HANDLE arguments (e.g. pat:1@1.into_record_pat.fields)
only those handles are resolved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("format", "", "output format (pretty|json|lsp)")
	resolveCmd.Flags().Bool("cache", false, "reuse deferred diagnostics from the on-disk cache")
	resolveCmd.Flags().String("cache-dir", "", "cache directory (default: user cache dir)")
	resolveCmd.Flags().Bool("clear-cache", false, "drop every cache entry before resolving")
	resolveCmd.Flags().String("path-mode", "", "how to print file paths (auto|absolute|relative|basename)")
}

type resolveFlags struct {
	format     string
	cache      bool
	cacheDir   string
	clearCache bool
	pathMode   diagfmt.PathMode
}

func readResolveFlags(cmd *cobra.Command, cfg toolConfig) (resolveFlags, error) {
	var rf resolveFlags
	var err error
	if rf.format, err = cmd.Flags().GetString("format"); err != nil {
		return rf, err
	}
	if rf.format == "" {
		rf.format = cfg.Render.Format
	}
	switch rf.format {
	case "pretty", "json", "lsp":
	default:
		return rf, fmt.Errorf("unsupported format %q (must be pretty, json or lsp)", rf.format)
	}
	if rf.cache, err = cmd.Flags().GetBool("cache"); err != nil {
		return rf, err
	}
	rf.cache = rf.cache || cfg.Cache.Enabled
	if rf.cacheDir, err = cmd.Flags().GetString("cache-dir"); err != nil {
		return rf, err
	}
	if rf.cacheDir == "" {
		rf.cacheDir = cfg.Cache.Dir
	}
	if rf.clearCache, err = cmd.Flags().GetBool("clear-cache"); err != nil {
		return rf, err
	}
	mode, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return rf, err
	}
	if mode == "" {
		mode = cfg.Render.Path
	}
	if rf.pathMode, err = diagfmt.ParsePathMode(mode); err != nil {
		return rf, err
	}
	return rf, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}
	rf, err := readResolveFlags(cmd, r.cfg)
	if err != nil {
		return err
	}
	f, err := r.loadFixture(args[0])
	if err != nil {
		return err
	}
	if len(args) > 1 {
		if err := r.resolveHandles(f, args[1:], rf); err != nil {
			return err
		}
		return r.finish()
	}
	if err := r.resolveDiagnostics(f, args[0], rf); err != nil {
		return err
	}
	return r.finish()
}

func (r *run) deferredDiagnostics(f *fixture.Fixture, path string, rf resolveFlags) ([]diag.Diagnostic, error) {
	if !rf.cache {
		return f.Diagnostics, nil
	}
	c, err := driver.OpenCache(rf.cacheDir, version.Version)
	if err != nil {
		return nil, err
	}
	if rf.clearCache {
		if err := c.DropAll(); err != nil {
			return nil, err
		}
	}
	key, err := fixtureCacheKey(path)
	if err != nil {
		return nil, err
	}
	idx := r.timer.Begin("cache")
	defer r.timer.End(idx, "")
	loaded, hit, err := c.Get(key, f.Snapshot)
	if err != nil {
		// A skewed or corrupt entry is replaced below.
		fmt.Fprintf(r.errOut, "cache: %v\n", err)
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.metrics.ObserveCache(result)
	if hit {
		if loaded.Stale > 0 {
			r.metrics.ObserveCache("stale")
			fmt.Fprintf(r.errOut, "cache: dropped %d stale diagnostic(s)\n", loaded.Stale)
		}
		return loaded.Diagnostics, nil
	}
	if err := c.Put(key, f.Diagnostics); err != nil {
		return nil, err
	}
	return f.Diagnostics, nil
}

func (r *run) resolveDiagnostics(f *fixture.Fixture, path string, rf resolveFlags) error {
	diags, err := r.deferredDiagnostics(f, path, rf)
	if err != nil {
		return err
	}

	bag := diag.NewBag(r.cfg.Resolve.MaxDiagnostics)
	for _, d := range diags {
		bag.Add(d)
	}
	if dropped := len(diags) - bag.Len(); dropped > 0 {
		fmt.Fprintf(r.errOut, "note: %d diagnostic(s) over the limit were not resolved\n", dropped)
	}
	bag.Dedup()

	idx := r.timer.Begin("resolve")
	res, err := driver.ResolveAll(r.ctx, f.Snapshot, bag.Items(), r.resolveOptions())
	r.timer.End(idx, fmt.Sprintf("%d diagnostics", bag.Len()))
	if err != nil {
		return err
	}
	resolved := res.Diagnostics

	if r.timings {
		tail := diag.NewBag(1)
		driver.AppendTimingDiagnostic(tail, "resolve", path, r.timer.Report(), res.Stats)
		resolved = append(resolved, diag.MaterializeAll(f.Snapshot, tail.Items())...)
	}

	idx = r.timer.Begin("render")
	defer r.timer.End(idx, rf.format)
	return renderResolved(r.out, r.errOut, resolved, f.Snapshot.Files, rf, r.cfg.Render)
}

func renderResolved(out, errOut io.Writer, items []diag.Resolved, fs *source.FileSet, rf resolveFlags, rc renderConfig) error {
	switch rf.format {
	case "json":
		diag.SortResolved(items)
		return diagfmt.JSON(out, items, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         rf.pathMode,
			IncludeNotes:     rc.Notes,
			IncludeReasons:   rc.Reasons,
		})
	case "lsp":
		params, skipped := lsp.Publish(fs, items, "spanres")
		if skipped > 0 {
			fmt.Fprintf(errOut, "lsp: skipped %d unlocated diagnostic(s)\n", skipped)
		}
		return lsp.WritePublish(out, params)
	default:
		diag.SortResolved(items)
		diagfmt.Pretty(out, items, fs, diagfmt.PrettyOpts{
			Color:       colorEnabled(),
			Context:     rc.Context,
			PathMode:    rf.pathMode,
			Width:       rc.Width,
			ShowNotes:   rc.Notes,
			ShowReasons: rc.Reasons,
		})
		return nil
	}
}

type handleOutput struct {
	Handle    string        `json:"handle"`
	Chain     string        `json:"chain"`
	File      string        `json:"file,omitempty"`
	Start     uint32        `json:"start"`
	End       uint32        `json:"end"`
	Placement string        `json:"placement"`
	Failure   string        `json:"failure,omitempty"`
	Error     string        `json:"error,omitempty"`
	Location  *lsp.Location `json:"location,omitempty"`

	sp source.Span
}

func (r *run) resolveHandles(f *fixture.Fixture, paths []string, rf resolveFlags) error {
	handles := make([]span.LazySpan, len(paths))
	for i, p := range paths {
		h, err := fixture.ParseHandle(f.Snapshot, p)
		if err != nil {
			return fmt.Errorf("handle %q: %w", p, err)
		}
		handles[i] = h
	}

	idx := r.timer.Begin("resolve")
	results, err := driver.ResolveHandles(r.ctx, f.Snapshot, handles, r.resolveOptions())
	r.timer.End(idx, fmt.Sprintf("%d handles", len(handles)))
	if err != nil {
		return err
	}

	fs := f.Snapshot.Files
	outs := make([]handleOutput, len(results))
	for i, res := range results {
		o := handleOutput{Handle: paths[i], Chain: res.Handle.Chain().String(), Placement: diag.Precise.String()}
		sp := res.Span
		if res.Err != nil {
			o.Failure = span.Classify(res.Err).String()
			o.Error = res.Err.Error()
			o.Placement = diag.Unlocated.String()
			if fb, ok := span.FallbackOf(res.Err); ok {
				sp = fb
				o.Placement = diag.Fallback.String()
			}
		}
		if o.Placement != diag.Unlocated.String() {
			o.Start, o.End, o.sp = sp.Start, sp.End, sp
			if file := fs.Get(sp.File); file != nil {
				o.File = diagfmt.FormatPath(file, fs, rf.pathMode)
			}
			if loc, ok := lsp.LocationForSpan(fs, sp); ok {
				o.Location = &loc
			}
		}
		outs[i] = o
	}

	switch rf.format {
	case "json", "lsp":
		data, err := json.MarshalIndent(outs, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.out, string(data))
		return err
	default:
		for _, o := range outs {
			writeHandleLine(r.out, o, fs)
		}
		return nil
	}
}

func writeHandleLine(w io.Writer, o handleOutput, fs *source.FileSet) {
	if o.Placement == diag.Unlocated.String() {
		fmt.Fprintf(w, "%s: unresolved (%s): %s\n", o.Handle, o.Failure, o.Error)
		return
	}
	sp := o.sp
	text := ""
	if file := fs.Get(sp.File); file != nil {
		text = strings.ReplaceAll(string(file.Slice(sp)), "\n", "\\n")
	}
	start, _ := fs.Resolve(sp)
	line := fmt.Sprintf("%s: %s:%d:%d [%d,%d) %q", o.Handle, o.File, start.Line, start.Col, o.Start, o.End, text)
	if o.Placement == diag.Fallback.String() {
		line += " (fallback: " + o.Failure + ")"
	}
	fmt.Fprintln(w, line)
}
