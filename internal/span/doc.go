// Package span resolves semantic nodes to source ranges on demand.
//
// Analysis never computes ranges eagerly. Instead it builds a lazy span
// handle: a Chain made of a root (a ChainInitiator naming a semantic node and
// its owning container) followed by data-only Transitions that narrow the
// node to a sub-part (a named field, the i-th list element, a named token).
// Handles are cheap values; they are stored in diagnostics and IDE records
// and resolved only when a concrete range is consumed:
//
//	pat := span.NewLazyPatSpan(patID, body).IntoRecordPat()
//	name := pat.Fields().Field(0).Name()
//	sp, err := span.Resolve(snapshot, name)
//
// # Shapes
//
// Every handle type is one node shape and exposes exactly the accessors
// that shape has. IntoXxx methods reinterpret a generic handle as a more
// specific one. They do not look at the tree: the caller asserts the shape
// from semantic information, and a wrong assertion shows up as a StepError
// when the chain is resolved.
//
// # Failures
//
// Resolution is all-or-nothing. Failures are returned as
// *UnresolvableOriginError, *DesugaredError (possibly carrying the range of
// the nearest mapped ancestor) or *StepError; Classify and FallbackOf inspect
// them.
//
// # Concurrency
//
// Chains are immutable and resolution reads only the snapshot passed in, so
// any number of goroutines may resolve the same handle concurrently. The
// package takes no locks; keeping the snapshot consistent is the caller's job.
package span
