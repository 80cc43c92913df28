// Package tracing implements minimal in-process spans, propagated through
// contexts and emitted as structured log records. It exists to correlate
// the stages of one search request, not to replace a distributed tracer.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type contextKey struct{}

var activeSpan contextKey

// Span is one timed stage of a request.
type Span struct {
	Name    string
	TraceID string
	Started time.Time

	mu       sync.Mutex
	attrs    []any
	children []*Span
	ended    time.Duration
}

// StartSpan begins a root span identified by traceID (typically the
// request id) and stores it in the returned context.
func StartSpan(ctx context.Context, name string, traceID string) (context.Context, *Span) {
	span := &Span{
		Name:    name,
		TraceID: traceID,
		Started: time.Now(),
	}
	return context.WithValue(ctx, activeSpan, span), span
}

// StartChildSpan begins a span nested under the one in ctx. Without a
// parent it behaves like a root span with an empty trace id.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	child := &Span{
		Name:    name,
		Started: time.Now(),
	}
	if parent := SpanFromContext(ctx); parent != nil {
		child.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.children = append(parent.children, child)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, activeSpan, child), child
}

// SpanFromContext returns the span stored in ctx, or nil.
func SpanFromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(activeSpan).(*Span)
	return span
}

// SetAttr attaches a key-value pair emitted with the span record.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.attrs = append(s.attrs, key, value)
	s.mu.Unlock()
}

// End fixes the span duration and emits it as a debug record.
func (s *Span) End() {
	s.mu.Lock()
	s.ended = time.Since(s.Started)
	attrs := append([]any{
		"span", s.Name,
		"trace_id", s.TraceID,
		"duration_ms", s.ended.Milliseconds(),
	}, s.attrs...)
	s.mu.Unlock()
	slog.Debug("span finished", attrs...)
}

// Duration returns the measured duration, or zero before End.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Walk visits the span and its children depth-first.
func (s *Span) Walk(fn func(span *Span, depth int)) {
	s.walk(fn, 0)
}

func (s *Span) walk(fn func(span *Span, depth int), depth int) {
	fn(s, depth)
	s.mu.Lock()
	children := append([]*Span(nil), s.children...)
	s.mu.Unlock()
	for _, child := range children {
		child.walk(fn, depth+1)
	}
}
