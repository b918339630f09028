package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer formats each event as it arrives. Output is buffered; Flush
// and Close push it to the underlying writer.
type StreamTracer struct {
	mu     sync.Mutex
	dst    io.Writer
	buf    *bufio.Writer
	level  Level
	format Format
	err    error // first write error; later events are dropped
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{dst: w, buf: bufio.NewWriter(w), level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	line := FormatEvent(ev, t.format)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if _, err := t.buf.Write(line); err != nil {
		t.err = err
		return
	}
	// Span ends at the coarse scopes are rare and mark progress worth seeing
	// immediately.
	if ev.Scope <= ScopePass {
		t.err = t.buf.Flush()
	}
}

// Flush writes buffered events and reports the first write error seen.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		t.err = t.buf.Flush()
	}
	return t.err
}

// Close flushes and closes the destination when it is an io.Closer.
func (t *StreamTracer) Close() error {
	err := t.Flush()
	if c, ok := t.dst.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
