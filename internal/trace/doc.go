// Package trace provides the tracing subsystem used as the structured log of
// span resolution and of the driver around it.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	spanres check --trace=- --trace-level=debug fixture.toml
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped on failure
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only dumps
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-body events
//   - LevelDebug: everything including single chain resolutions
//
// # Scopes
//
//   - ScopeDriver: top-level CLI operations
//   - ScopePass: resolve/render passes
//   - ScopeBody: per-body work
//   - ScopeChain: one chain resolution
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, sp := trace.StartSpan(ctx, trace.ScopePass, "resolve_all")
//	defer sp.End("")
//
// Spans opened from a context that already carries a span become its
// children.
package trace
