package diag

import (
	"context"

	"spanres/internal/source"
	"spanres/internal/span"
)

// Placement says how a location was obtained.
type Placement uint8

const (
	// Precise: the handle resolved exactly.
	Precise Placement = iota
	// Fallback: the handle reported a desugared origin, or failed and the
	// diagnostic context resolved instead; the span is an enclosing range.
	Fallback
	// Unlocated: nothing could be located. The message is still reported.
	Unlocated
)

func (p Placement) String() string {
	switch p {
	case Precise:
		return "precise"
	case Fallback:
		return "fallback"
	default:
		return "unlocated"
	}
}

// Located is the outcome of placing one handle.
type Located struct {
	Span      source.Span
	Placement Placement
	// Failure classifies Err; FailureNone for precise placements.
	Failure span.FailureKind
	Err     error
}

// ResolvedNote is a Note after placement.
type ResolvedNote struct {
	Located
	Msg string
}

// Resolved is a Diagnostic with every handle placed.
type Resolved struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Located
	Notes    []ResolvedNote
}

// SpanResolver resolves one handle. *span.Resolver implements it.
type SpanResolver interface {
	Resolve(ctx context.Context, node span.LazySpan) (source.Span, error)
}

// Materialize resolves every handle of d against db.
func Materialize(db span.DB, d *Diagnostic) Resolved {
	return MaterializeContext(context.Background(), span.NewResolver(db, nil), d)
}

// MaterializeContext is Materialize through r, so resolutions are traced.
//
// A primary that resolves is Precise. One that fails with a desugared origin
// carrying a fallback is placed there. Otherwise the diagnostic's Context
// handle is tried, and its exact or fallback range is used. When nothing
// resolves the diagnostic is Unlocated and keeps the first error.
func MaterializeContext(ctx context.Context, r SpanResolver, d *Diagnostic) Resolved {
	out := Resolved{
		Severity: d.Severity,
		Code:     d.Code,
		Message:  d.Message,
		Primary:  locate(ctx, r, d.Primary, d.Context),
	}
	if len(d.Notes) > 0 {
		out.Notes = make([]ResolvedNote, 0, len(d.Notes))
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, ResolvedNote{Located: locate(ctx, r, n.Span, nil), Msg: n.Msg})
		}
	}
	return out
}

func locate(ctx context.Context, r SpanResolver, h, enclosing span.LazySpan) Located {
	if h == nil {
		return Located{Placement: Unlocated}
	}
	sp, err := r.Resolve(ctx, h)
	if err == nil {
		return Located{Span: sp, Placement: Precise}
	}
	loc := Located{Placement: Unlocated, Failure: span.Classify(err), Err: err}
	if fb, ok := span.FallbackOf(err); ok {
		loc.Span, loc.Placement = fb, Fallback
		return loc
	}
	if enclosing != nil {
		outer := locate(ctx, r, enclosing, nil)
		if outer.Placement != Unlocated {
			loc.Span, loc.Placement = outer.Span, Fallback
		}
	}
	return loc
}

// MaterializeAll resolves a batch sequentially. The driver has a concurrent version.
func MaterializeAll(db span.DB, diags []Diagnostic) []Resolved {
	r := span.NewResolver(db, nil)
	out := make([]Resolved, len(diags))
	for i := range diags {
		out[i] = MaterializeContext(context.Background(), r, &diags[i])
	}
	return out
}
