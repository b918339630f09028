package diag

import (
	"spanres/internal/span"
)

// Note is a secondary location with a message.
type Note struct {
	Span span.LazySpan
	Msg  string
}

// Diagnostic is a finding whose locations are still lazy handles. Nothing is
// resolved until Materialize runs, so a diagnostic can outlive edits that make
// its handles stale.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  span.LazySpan
	// Context is an enclosing handle reported instead of Primary when Primary
	// cannot be located and offers no fallback of its own. Optional.
	Context span.LazySpan
	Notes   []Note
}

func New(sev Severity, code Code, primary span.LazySpan, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary span.LazySpan, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp span.LazySpan, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithContext(ctx span.LazySpan) Diagnostic {
	d.Context = ctx
	return d
}

// Key identifies a diagnostic by code, severity, primary chain and message.
func (d *Diagnostic) Key() string {
	chain := "-"
	if d.Primary != nil {
		chain = d.Primary.Chain().String()
	}
	return d.Code.ID() + "|" + d.Severity.String() + "|" + chain + "|" + d.Message
}
