package trace

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns the next global event sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

func nextSpanID() uint64 { return spanCounter.Add(1) }

// Attr is one key/value annotation carried by a span's end event.
type Attr struct {
	Key   string
	Value string
}

// Span is an open begin/end pair. A Span returned for a disabled tracer or a
// filtered scope is inert: its methods do nothing and ID reports 0.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   []Attr
}

func (s *Span) live() bool { return s != nil && s.id != 0 }

// Begin opens a span under parent (0 for a root span) and emits its begin
// event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      nextSpanID(),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Attrs:    s.attrs,
	}
}

// Str annotates the end event.
func (s *Span) Str(key, value string) *Span {
	if s.live() {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// Int annotates the end event with a decimal value.
func (s *Span) Int(key string, n int) *Span {
	if s.live() {
		s.attrs = append(s.attrs, Attr{Key: key, Value: strconv.Itoa(n)})
	}
	return s
}

// End emits the end event and reports how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

type tracerKey struct{}

type spanKey struct{}

// WithTracer attaches t to ctx. A nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// ParentID returns the ID of the span opened by StartSpan on ctx, or 0.
func ParentID(ctx context.Context) uint64 {
	if ctx != nil {
		if id, ok := ctx.Value(spanKey{}).(uint64); ok {
			return id
		}
	}
	return 0
}

// StartSpan opens a span on the tracer in ctx, parented on the span ctx
// already carries. The returned context carries the new span.
func StartSpan(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := Begin(FromContext(ctx), scope, name, ParentID(ctx))
	if !s.live() {
		return ctx, s
	}
	return context.WithValue(ctx, spanKey{}, s.id), s
}
