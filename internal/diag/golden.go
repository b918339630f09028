package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"spanres/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Marker   string
	Message  string
}

// FormatGoldenDiagnostics renders resolved diagnostics one line per entry, in a
// stable order, for golden files and the CLI short format:
//
//	error ANA2002 main.sp:1:18 no such field
//	warning ANA2001 main.sp:1:10~ unused binding
//	error SPN1001 - pattern vanished
//
// A trailing "~" marks a fallback placement; "-" replaces the location of an
// unlocated diagnostic.
func FormatGoldenDiagnostics(diags []Resolved, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendDiagnostic(rendered, &diags[i], fs, includeNotes)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		if d.Path == "" {
			fmt.Fprintf(&b, "%s %s - %s", d.Severity, d.Code, d.Message)
		} else {
			fmt.Fprintf(&b, "%s %s %s:%d:%d%s %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Marker, d.Message)
		}
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d *Resolved, fs *source.FileSet, includeNotes bool) []goldenDiagnostic {
	out = append(out, goldenEntry(fs, severityLabel(d.Severity), d.Code, d.Primary, d.Message))
	if includeNotes {
		for _, note := range d.Notes {
			if note.Placement == Unlocated {
				continue
			}
			out = append(out, goldenEntry(fs, "note", d.Code, note.Located, note.Msg))
		}
	}
	return out
}

func goldenEntry(fs *source.FileSet, sev string, code Code, loc Located, msg string) goldenDiagnostic {
	g := goldenDiagnostic{Severity: sev, Code: code.ID(), Message: sanitizeMessage(msg)}
	if loc.Placement == Unlocated {
		return g
	}
	file := fs.Get(loc.Span.File)
	if file == nil {
		return g
	}
	start, _ := fs.Resolve(loc.Span)
	g.Path = normalizePath(file.FormatPath("relative", fs.BaseDir()))
	g.Line, g.Column = start.Line, start.Col
	if loc.Placement == Fallback {
		g.Marker = "~"
	}
	return g
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
