package diag

import "spanres/internal/span"

// Reporter receives diagnostics from analysis. Implementations: BagReporter,
// DedupReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary span.LazySpan, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary span.LazySpan, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag:     New(sev, code, primary, msg),
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, primary span.LazySpan, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, primary span.LazySpan, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

// ReportInfo is a shortcut for SevInfo diagnostics.
func ReportInfo(r Reporter, code Code, primary span.LazySpan, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, primary, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(sp span.LazySpan, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

// WithContext sets the enclosing handle used when the primary cannot be located.
// Only reporters that accept a full Diagnostic (BagReporter) keep it.
func (b *ReportBuilder) WithContext(ctx span.LazySpan) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithContext(ctx)
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	b.emitted = true
	if b.reporter == nil {
		return
	}
	if dr, ok := b.reporter.(DiagnosticReporter); ok {
		dr.ReportDiagnostic(b.diag)
		return
	}
	b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Primary, b.diag.Message, b.diag.Notes)
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// DiagnosticReporter is implemented by reporters that can take a whole
// Diagnostic, including its Context.
type DiagnosticReporter interface {
	ReportDiagnostic(d Diagnostic)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary span.LazySpan, msg string, notes []Note) {
	d := New(sev, code, primary, msg)
	d.Notes = notes
	r.ReportDiagnostic(d)
}

func (r BagReporter) ReportDiagnostic(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}
