package diagfmt

import (
	"io"

	"github.com/goccy/go-json"

	"spanres/internal/diag"
	"spanres/internal/source"
)

// LocationJSON is a file location in JSON output.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON is a secondary note in JSON output.
type NoteJSON struct {
	Message   string        `json:"message"`
	Placement string        `json:"placement"`
	Location  *LocationJSON `json:"location,omitempty"`
}

// DiagnosticJSON is one diagnostic in JSON output. Location is omitted for
// unlocated diagnostics.
type DiagnosticJSON struct {
	Severity  string        `json:"severity"`
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Placement string        `json:"placement"`
	Location  *LocationJSON `json:"location,omitempty"`
	Failure   string        `json:"failure,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Notes     []NoteJSON    `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(loc diag.Located, fs *source.FileSet, opts JSONOpts) *LocationJSON {
	if loc.Placement == diag.Unlocated {
		return nil
	}
	f := fs.Get(loc.Span.File)
	if f == nil {
		return nil
	}
	out := &LocationJSON{
		File:      formatPath(f, fs, opts.PathMode),
		StartByte: loc.Span.Start,
		EndByte:   loc.Span.End,
	}
	if opts.IncludePositions {
		startPos, endPos := fs.Resolve(loc.Span)
		out.StartLine = startPos.Line
		out.StartCol = startPos.Col
		out.EndLine = endPos.Line
		out.EndCol = endPos.Col
	}
	return out
}

// BuildDiagnosticsOutput builds the JSON document without serializing it.
func BuildDiagnosticsOutput(diags []diag.Resolved, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}

	out := make([]DiagnosticJSON, 0, n)
	for i := range n {
		d := &diags[i]
		dj := DiagnosticJSON{
			Severity:  d.Severity.String(),
			Code:      d.Code.ID(),
			Message:   d.Message,
			Placement: d.Primary.Placement.String(),
			Location:  makeLocation(d.Primary, fs, opts),
		}
		if d.Primary.Err != nil {
			dj.Failure = d.Primary.Failure.String()
			if opts.IncludeReasons {
				dj.Reason = d.Primary.Err.Error()
			}
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{
					Message:   note.Msg,
					Placement: note.Placement.String(),
					Location:  makeLocation(note.Located, fs, opts),
				}
			}
		}
		out = append(out, dj)
	}

	return DiagnosticsOutput{Diagnostics: out, Count: len(out)}
}

// JSON writes diagnostics as an indented JSON document.
func JSON(w io.Writer, diags []diag.Resolved, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(diags, fs, opts))
}
