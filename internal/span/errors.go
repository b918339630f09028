package span

import (
	"errors"
	"fmt"

	"spanres/internal/source"
	"spanres/internal/syntax"
)

// FailureKind classifies a resolution error.
type FailureKind uint8

const (
	FailureNone FailureKind = iota
	FailureUnresolvable
	FailureDesugared
	FailureStep
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "ok"
	case FailureUnresolvable:
		return "unresolvable"
	case FailureDesugared:
		return "desugared"
	case FailureStep:
		return "step"
	default:
		return "other"
	}
}

// UnresolvableOriginError: the chain root locates nothing in the snapshot.
type UnresolvableOriginError struct {
	Root   string
	Reason string
}

func (e *UnresolvableOriginError) Error() string {
	return fmt.Sprintf("%s: unresolvable origin: %s", e.Root, e.Reason)
}

// DesugaredError: the root has no direct span. Fallback is the range of the
// construct it came from or of its nearest mapped ancestor, when one exists.
type DesugaredError struct {
	Root        string
	Reason      string
	Fallback    source.Span
	HasFallback bool
}

func (e *DesugaredError) Error() string {
	if e.HasFallback {
		return fmt.Sprintf("%s: no direct span (%s), fallback %s", e.Root, e.Reason, e.Fallback)
	}
	return fmt.Sprintf("%s: no direct span (%s)", e.Root, e.Reason)
}

// StepReason says why a transition could not be applied.
type StepReason uint8

const (
	ReasonMissingField StepReason = iota + 1
	ReasonIndexOutOfRange
	ReasonMissingToken
	ReasonShapeMismatch
	ReasonTokenHasNoChildren
	ReasonMissingTree
)

func (r StepReason) String() string {
	switch r {
	case ReasonMissingField:
		return "missing field"
	case ReasonIndexOutOfRange:
		return "index out of range"
	case ReasonMissingToken:
		return "missing token"
	case ReasonShapeMismatch:
		return "shape mismatch"
	case ReasonTokenHasNoChildren:
		return "token has no children"
	case ReasonMissingTree:
		return "missing syntax tree"
	default:
		return "unknown"
	}
}

// StepError: transition Index of the chain failed. Index -1 means the root
// node itself no longer has the expected shape.
type StepError struct {
	Root   string
	Index  int
	Step   Transition
	Reason StepReason
	Found  syntax.Kind // node kind met, for ReasonShapeMismatch
}

func (e *StepError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: root: %s (found %s)", e.Root, e.Reason, e.Found)
	}
	if e.Reason == ReasonShapeMismatch {
		return fmt.Sprintf("%s: step %d %s: %s (want %s, found %s)", e.Root, e.Index, e.Step, e.Reason, e.Step.Yields, e.Found)
	}
	return fmt.Sprintf("%s: step %d %s: %s", e.Root, e.Index, e.Step, e.Reason)
}

// Classify returns the failure kind of err; FailureNone for nil.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var unres *UnresolvableOriginError
	var desugared *DesugaredError
	var step *StepError
	switch {
	case errors.As(err, &unres):
		return FailureUnresolvable
	case errors.As(err, &desugared):
		return FailureDesugared
	case errors.As(err, &step):
		return FailureStep
	default:
		return FailureOther
	}
}

// FallbackOf returns the fallback range carried by a DesugaredError.
func FallbackOf(err error) (source.Span, bool) {
	var desugared *DesugaredError
	if errors.As(err, &desugared) && desugared.HasFallback {
		return desugared.Fallback, true
	}
	return source.Span{}, false
}
