package lsp

import (
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"

	"spanres/internal/diag"
	"spanres/internal/source"
)

type unknownFileError source.FileID

func (e unknownFileError) Error() string {
	return fmt.Sprintf("file %d is not in the file set", uint32(e))
}

func errUnknownFile(id source.FileID) error { return unknownFileError(id) }

func severity(s diag.Severity) int {
	switch s {
	case diag.SevError:
		return SeverityError
	case diag.SevWarning:
		return SeverityWarning
	default:
		return SeverityInformation
	}
}

// Publish groups materialized diagnostics into one notification per document,
// ordered by URI. The protocol has no way to show a diagnostic without a
// range, so unlocated ones are skipped and counted. Notes that resolved
// become related information.
func Publish(files *source.FileSet, items []diag.Resolved, sourceName string) ([]PublishDiagnosticsParams, int) {
	grouped := make(map[string][]Diagnostic)
	skipped := 0
	for i := range items {
		d := &items[i]
		if d.Primary.Placement == diag.Unlocated {
			skipped++
			continue
		}
		loc, ok := LocationForSpan(files, d.Primary.Span)
		if !ok {
			skipped++
			continue
		}
		out := Diagnostic{
			Range:    loc.Range,
			Severity: severity(d.Severity),
			Code:     d.Code.ID(),
			Source:   sourceName,
			Message:  d.Message,
		}
		if d.Primary.Placement == diag.Fallback {
			out.Data = &DiagnosticData{Placement: d.Primary.Placement.String()}
		}
		for _, n := range d.Notes {
			if n.Placement == diag.Unlocated {
				continue
			}
			if nloc, ok := LocationForSpan(files, n.Span); ok {
				out.RelatedInformation = append(out.RelatedInformation, DiagnosticRelatedInformation{Location: nloc, Message: n.Msg})
			}
		}
		grouped[loc.URI] = append(grouped[loc.URI], out)
	}

	uris := make([]string, 0, len(grouped))
	for uri := range grouped {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	params := make([]PublishDiagnosticsParams, 0, len(uris))
	for _, uri := range uris {
		params = append(params, PublishDiagnosticsParams{URI: uri, Diagnostics: grouped[uri]})
	}
	return params, skipped
}

// WritePublish writes params as a JSON array.
func WritePublish(w io.Writer, params []PublishDiagnosticsParams) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(params)
}
