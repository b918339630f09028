package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"spanres/internal/source"
	"spanres/internal/span"
)

const explainTextWidth = 40

// ExplainTable prints one row per step of a chain evaluation: the step, the
// range reached and the text it covers. A failing step is the last row.
func ExplainTable(w io.Writer, chain span.Chain, rows []span.StepTrace, fs *source.FileSet, colored bool) error {
	head := lipgloss.NewStyle().Bold(true)
	cell := lipgloss.NewStyle().PaddingRight(2)
	ok := lipgloss.NewStyle()
	bad := lipgloss.NewStyle()
	if colored {
		ok = ok.Foreground(lipgloss.Color("2"))
		bad = bad.Foreground(lipgloss.Color("1"))
	}

	idx := []string{head.Render("#")}
	step := []string{head.Render("step")}
	rng := []string{head.Render("range")}
	text := []string{head.Render("text")}

	for _, r := range rows {
		label := "root"
		if r.Index >= 0 {
			label = strconv.Itoa(r.Index)
		}
		idx = append(idx, label)
		step = append(step, r.Label)
		if r.Err != nil {
			rng = append(rng, bad.Render("failed"))
			text = append(text, bad.Render(r.Err.Error()))
			continue
		}
		rng = append(rng, ok.Render(formatRange(fs, r.Span)))
		text = append(text, snippet(fs, r.Span))
	}

	table := lipgloss.JoinHorizontal(lipgloss.Top,
		cell.Render(strings.Join(idx, "\n")),
		cell.Render(strings.Join(step, "\n")),
		cell.Render(strings.Join(rng, "\n")),
		strings.Join(text, "\n"),
	)
	if _, err := fmt.Fprintf(w, "%s\n\n", chain); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, table)
	return err
}

func formatRange(fs *source.FileSet, sp source.Span) string {
	if fs == nil || fs.Get(sp.File) == nil {
		return sp.String()
	}
	start, end := fs.Resolve(sp)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}

func snippet(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return ""
	}
	f := fs.Get(sp.File)
	if f == nil {
		return ""
	}
	s := strings.ReplaceAll(string(f.Slice(sp)), "\n", "⏎")
	return runewidth.Truncate(expandTabs(s), explainTextWidth, "…")
}
