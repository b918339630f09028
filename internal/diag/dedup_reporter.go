package diag

import "spanres/internal/span"

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, primary chain and message.
type DedupReporter struct {
	next Reporter
	seen map[string]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[string]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary span.LazySpan, msg string, notes []Note) {
	d := New(sev, code, primary, msg)
	d.Notes = notes
	r.ReportDiagnostic(d)
}

func (r *DedupReporter) ReportDiagnostic(d Diagnostic) {
	if r == nil {
		return
	}
	key := d.Key()
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	switch next := r.next.(type) {
	case nil:
	case DiagnosticReporter:
		next.ReportDiagnostic(d)
	default:
		next.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
	}
}
