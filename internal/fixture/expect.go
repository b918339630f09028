package fixture

import (
	"errors"
	"fmt"

	"spanres/internal/source"
	"spanres/internal/span"
)

// Expectation is a declared resolution outcome for one handle.
type Expectation struct {
	Path    string
	Handle  span.LazySpan
	Failure span.FailureKind
	// Span is the exact range (FailureNone) or the fallback (FailureDesugared).
	Span    source.Span
	HasSpan bool
	// Step is the failing step index for FailureStep; nil means any.
	Step   *int
	Reason string
}

func (b *builder) expectation(ed expectDoc) (Expectation, error) {
	h, err := ParseHandle(b.f.Snapshot, ed.Handle)
	if err != nil {
		return Expectation{}, err
	}
	e := Expectation{Path: ed.Handle, Handle: h, Step: ed.Step, Reason: ed.Reason}
	switch ed.Failure {
	case "", "ok":
		e.Failure = span.FailureNone
	case "unresolvable":
		e.Failure = span.FailureUnresolvable
	case "desugared":
		e.Failure = span.FailureDesugared
	case "step":
		e.Failure = span.FailureStep
	default:
		return Expectation{}, fmt.Errorf("bad failure %q", ed.Failure)
	}

	file := h.Chain().Root().Descriptor().File
	r := ed.Span
	if e.Failure == span.FailureDesugared {
		r = ed.Fallback
	}
	if r != nil {
		sp, err := b.span(source.FileID(file), r)
		if err != nil {
			return Expectation{}, err
		}
		e.Span, e.HasSpan = sp, true
	}
	if e.Failure == span.FailureNone && !e.HasSpan {
		return Expectation{}, fmt.Errorf("%s: a successful outcome needs span", ed.Handle)
	}
	return e, nil
}

// Check compares a resolution result with the expectation and describes the
// first difference.
func (e *Expectation) Check(got source.Span, err error) error {
	kind := span.Classify(err)
	if kind != e.Failure {
		if err != nil {
			return fmt.Errorf("%s: want %s, got %s (%v)", e.Path, e.Failure, kind, err)
		}
		return fmt.Errorf("%s: want %s, got ok %s", e.Path, e.Failure, got)
	}
	switch kind {
	case span.FailureNone:
		if got != e.Span {
			return fmt.Errorf("%s: want %s, got %s", e.Path, e.Span, got)
		}
	case span.FailureDesugared:
		fb, ok := span.FallbackOf(err)
		if e.HasSpan && (!ok || fb != e.Span) {
			return fmt.Errorf("%s: want fallback %s, got %v", e.Path, e.Span, err)
		}
	case span.FailureStep:
		var se *span.StepError
		if !errors.As(err, &se) {
			return fmt.Errorf("%s: %w", e.Path, err)
		}
		if e.Step != nil && se.Index != *e.Step {
			return fmt.Errorf("%s: want failure at step %d, got %d", e.Path, *e.Step, se.Index)
		}
		if e.Reason != "" && se.Reason.String() != e.Reason {
			return fmt.Errorf("%s: want reason %s, got %s", e.Path, e.Reason, se.Reason)
		}
	}
	return nil
}
