package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"spanres/internal/diag"
	"spanres/internal/source"
)

type palette struct {
	err, warn, info, note, dim, caret, fallback *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:      color.New(color.FgRed, color.Bold),
		warn:     color.New(color.FgYellow, color.Bold),
		info:     color.New(color.FgCyan, color.Bold),
		note:     color.New(color.FgBlue, color.Bold),
		dim:      color.New(color.FgHiBlack),
		caret:    color.New(color.FgRed, color.Bold),
		fallback: color.New(color.FgMagenta),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.dim, p.caret, p.fallback} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders diagnostics for humans. Callers sort with diag.SortResolved first.
//
//	main.sp:1:18: ERROR ANA2002: no field y
//	   1 | fn main(){Pt{ x, y } = p; }
//	     |                  ^
//
// A fallback placement underlines with "~" instead of "^"; an unlocated
// diagnostic prints the header only.
func Pretty(w io.Writer, diags []diag.Resolved, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &diags[i], fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Resolved, fs *source.FileSet, opts PrettyOpts, p palette) {
	sevColor := p.severity(d.Severity)
	loc := d.Primary

	fmt.Fprintf(w, "%s: %s %s: %s\n",
		locationLabel(loc, fs, opts.PathMode),
		sevColor.Sprint(d.Severity.String()),
		d.Code.ID(),
		d.Message)

	if loc.Placement != diag.Unlocated {
		writeSnippet(w, fs, loc, opts, p)
	}

	if opts.ShowReasons && loc.Err != nil {
		switch loc.Placement {
		case diag.Fallback:
			fmt.Fprintf(w, "  %s reported at enclosing construct: %v\n", p.fallback.Sprint("="), loc.Err)
		case diag.Unlocated:
			fmt.Fprintf(w, "  %s location unavailable: %v\n", p.fallback.Sprint("="), loc.Err)
		}
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), locationLabel(n.Located, fs, opts.PathMode), n.Msg)
		}
	}
}

func locationLabel(loc diag.Located, fs *source.FileSet, mode PathMode) string {
	if loc.Placement == diag.Unlocated || fs == nil {
		return "<unlocated>"
	}
	f := fs.Get(loc.Span.File)
	if f == nil {
		return "<unlocated>"
	}
	start, _ := fs.Resolve(loc.Span)
	label := fmt.Sprintf("%s:%d:%d", formatPath(f, fs, mode), start.Line, start.Col)
	if loc.Placement == diag.Fallback {
		label += "~"
	}
	return label
}

func writeSnippet(w io.Writer, fs *source.FileSet, loc diag.Located, opts PrettyOpts, p palette) {
	f := fs.Get(loc.Span.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(loc.Span)
	firstLine := start.Line
	if opts.Context > 0 {
		firstLine = uint32(max(1, int(start.Line)-opts.Context))
	}

	gutter := len(strconv.FormatUint(uint64(start.Line), 10)) + 2
	for ln := firstLine; ln <= start.Line; ln++ {
		text := expandTabs(f.Line(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, opts.Width, "…")
		}
		fmt.Fprintf(w, "%*d %s %s\n", gutter, ln, p.dim.Sprint("|"), text)
	}

	line := f.Line(start.Line)
	col := int(start.Col) - 1
	endCol := len(line)
	if end.Line == start.Line {
		endCol = min(int(end.Col)-1, len(line))
	}
	col = min(col, len(line))
	endCol = max(endCol, col)

	pad := runewidth.StringWidth(expandTabs(line[:col]))
	width := max(1, runewidth.StringWidth(expandTabs(line[col:endCol])))
	if opts.Width > 0 {
		if pad >= opts.Width {
			return
		}
		width = min(width, opts.Width-pad)
	}

	mark := "^"
	if loc.Placement == diag.Fallback {
		mark = "~"
	}
	fmt.Fprintf(w, "%*s %s %s%s\n", gutter, "", p.dim.Sprint("|"),
		strings.Repeat(" ", pad), p.caret.Sprint(strings.Repeat(mark, width)))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
