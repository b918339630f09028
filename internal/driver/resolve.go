package driver

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"spanres/internal/diag"
	"spanres/internal/observ"
	"spanres/internal/source"
	"spanres/internal/span"
	"spanres/internal/trace"
)

// ResolveOptions configures the concurrent resolution entry points.
type ResolveOptions struct {
	// Jobs bounds the number of concurrent resolutions; <= 0 means GOMAXPROCS.
	Jobs    int
	Tracer  trace.Tracer
	Metrics *observ.Metrics
}

// Stats counts materialized diagnostics by placement.
type Stats struct {
	Total     int
	Precise   int
	Fallback  int
	Unlocated int
}

func (s *Stats) add(p diag.Placement) {
	s.Total++
	switch p {
	case diag.Precise:
		s.Precise++
	case diag.Fallback:
		s.Fallback++
	default:
		s.Unlocated++
	}
}

// ResolveResult holds materialized diagnostics in input order.
type ResolveResult struct {
	Diagnostics []diag.Resolved
	Stats       Stats
}

// ResolveAll materializes diags against db in parallel. The snapshot is only
// read, so goroutines share it without locking; each result is written to its
// own slot, which keeps the output order equal to the input order.
func ResolveAll(ctx context.Context, db span.DB, diags []diag.Diagnostic, opts ResolveOptions) (*ResolveResult, error) {
	if opts.Tracer != nil {
		ctx = trace.WithTracer(ctx, opts.Tracer)
	}
	ctx, sp := trace.StartSpan(ctx, trace.ScopePass, "resolve_all")
	res := &ResolveResult{Diagnostics: make([]diag.Resolved, len(diags))}
	if len(diags) == 0 {
		sp.End("empty")
		return res, nil
	}

	r := newMeteredResolver(db, opts)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobsOrDefault(opts.Jobs), len(diags)))
	for i := range diags {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Diagnostics[i] = diag.MaterializeContext(gctx, r, &diags[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sp.End(err.Error())
		return nil, err
	}

	for i := range res.Diagnostics {
		p := res.Diagnostics[i].Primary.Placement
		res.Stats.add(p)
		opts.Metrics.ObservePlacement(p.String())
	}
	sp.Int("precise", res.Stats.Precise).
		Int("fallback", res.Stats.Fallback).
		Int("unlocated", res.Stats.Unlocated).
		End(strconv.Itoa(res.Stats.Total) + " diagnostics")
	return res, nil
}

// HandleResult is the outcome of resolving one bare handle.
type HandleResult struct {
	Handle span.LazySpan
	Span   source.Span
	Err    error
}

// ResolveHandles resolves handles in parallel, preserving order. Resolution
// failures are reported per handle; only cancellation fails the call.
func ResolveHandles(ctx context.Context, db span.DB, handles []span.LazySpan, opts ResolveOptions) ([]HandleResult, error) {
	if opts.Tracer != nil {
		ctx = trace.WithTracer(ctx, opts.Tracer)
	}
	ctx, sp := trace.StartSpan(ctx, trace.ScopePass, "resolve_handles")
	out := make([]HandleResult, len(handles))
	if len(handles) == 0 {
		sp.End("empty")
		return out, nil
	}

	r := newMeteredResolver(db, opts)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobsOrDefault(opts.Jobs), len(handles)))
	for i, h := range handles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			loc, err := r.Resolve(gctx, h)
			out[i] = HandleResult{Handle: h, Span: loc, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sp.End(err.Error())
		return nil, err
	}
	sp.End(strconv.Itoa(len(out)) + " handles")
	return out, nil
}

func jobsOrDefault(jobs int) int {
	if jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return jobs
}

// meteredResolver times each resolution and reports its outcome.
type meteredResolver struct {
	inner   *span.Resolver
	metrics *observ.Metrics
}

func newMeteredResolver(db span.DB, opts ResolveOptions) *meteredResolver {
	return &meteredResolver{inner: span.NewResolver(db, opts.Tracer), metrics: opts.Metrics}
}

func (m *meteredResolver) Resolve(ctx context.Context, node span.LazySpan) (source.Span, error) {
	start := time.Now()
	sp, err := m.inner.Resolve(ctx, node)
	m.metrics.ObserveResolution(span.Classify(err).String(), time.Since(start))
	return sp, err
}
