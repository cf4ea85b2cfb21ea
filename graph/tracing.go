package graph

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jemygraw/researchgraph/log"
)

// TraceEvent represents different types of events in graph execution
type TraceEvent string

const (
	// TraceEventGraphStart indicates the start of graph execution
	TraceEventGraphStart TraceEvent = "graph_start"

	// TraceEventGraphEnd indicates the end of graph execution
	TraceEventGraphEnd TraceEvent = "graph_end"

	// TraceEventNodeStart indicates the start of node execution
	TraceEventNodeStart TraceEvent = "node_start"

	// TraceEventNodeEnd indicates the end of node execution
	TraceEventNodeEnd TraceEvent = "node_end"

	// TraceEventNodeError indicates an error occurred in node execution
	TraceEventNodeError TraceEvent = "node_error"

	// TraceEventEdgeTraversal indicates traversal from one node to another
	TraceEventEdgeTraversal TraceEvent = "edge_traversal"
)

// TraceSpan represents a span of execution with timing and metadata
type TraceSpan struct {
	ID       string
	ParentID string
	Event    TraceEvent

	// NodeName is the name of the node being executed (if applicable)
	NodeName string

	// FromNode and ToNode are set for edge traversals
	FromNode string
	ToNode   string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// State is a snapshot of the state when the span ended
	State any

	Error    error
	Metadata map[string]any
}

// TraceHook defines the interface for trace event handlers
type TraceHook interface {
	// OnEvent is called when a trace event occurs
	OnEvent(ctx context.Context, span *TraceSpan)
}

// TraceHookFunc is a function adapter for TraceHook
type TraceHookFunc func(ctx context.Context, span *TraceSpan)

// OnEvent implements the TraceHook interface
func (f TraceHookFunc) OnEvent(ctx context.Context, span *TraceSpan) {
	f(ctx, span)
}

// Tracer manages trace collection and hooks
type Tracer struct {
	mu    sync.Mutex
	hooks []TraceHook
	spans []*TraceSpan
}

// NewTracer creates a new tracer instance
func NewTracer() *Tracer {
	return &Tracer{}
}

// AddHook registers a new trace hook
func (t *Tracer) AddHook(hook TraceHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, hook)
}

// StartSpan creates a new trace span
func (t *Tracer) StartSpan(ctx context.Context, event TraceEvent, nodeName string) *TraceSpan {
	span := &TraceSpan{
		ID:        uuid.NewString(),
		Event:     event,
		NodeName:  nodeName,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
	}
	if parent := SpanFromContext(ctx); parent != nil {
		span.ParentID = parent.ID
	}

	t.record(span)
	t.emit(ctx, span)
	return span
}

// EndSpan completes a trace span
func (t *Tracer) EndSpan(ctx context.Context, span *TraceSpan, state any, err error) {
	if span == nil {
		return
	}
	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	span.State = state
	span.Error = err

	switch {
	case span.Event == TraceEventNodeStart && err != nil:
		span.Event = TraceEventNodeError
	case span.Event == TraceEventNodeStart:
		span.Event = TraceEventNodeEnd
	case span.Event == TraceEventGraphStart:
		span.Event = TraceEventGraphEnd
	}

	t.emit(ctx, span)
}

// TraceEdgeTraversal records an edge traversal event
func (t *Tracer) TraceEdgeTraversal(ctx context.Context, fromNode, toNode string) {
	now := time.Now()
	span := &TraceSpan{
		ID:        uuid.NewString(),
		Event:     TraceEventEdgeTraversal,
		FromNode:  fromNode,
		ToNode:    toNode,
		StartTime: now,
		EndTime:   now,
		Metadata:  make(map[string]any),
	}
	if parent := SpanFromContext(ctx); parent != nil {
		span.ParentID = parent.ID
	}

	t.record(span)
	t.emit(ctx, span)
}

// GetSpans returns all collected spans in the order they were started
func (t *Tracer) GetSpans() []*TraceSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*TraceSpan, len(t.spans))
	copy(out, t.spans)
	return out
}

// Clear removes all collected spans
func (t *Tracer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = nil
}

func (t *Tracer) record(span *TraceSpan) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = append(t.spans, span)
}

func (t *Tracer) emit(ctx context.Context, span *TraceSpan) {
	t.mu.Lock()
	hooks := make([]TraceHook, len(t.hooks))
	copy(hooks, t.hooks)
	t.mu.Unlock()

	for _, hook := range hooks {
		hook.OnEvent(ctx, span)
	}
}

// NewLogHook returns a hook that writes finished spans to logger at debug level
// and node errors at warn level.
func NewLogHook(logger log.Logger) TraceHook {
	logger = log.OrDefault(logger)
	return TraceHookFunc(func(_ context.Context, span *TraceSpan) {
		switch span.Event {
		case TraceEventNodeEnd:
			logger.Debug("node %s finished in %s", span.NodeName, span.Duration)
		case TraceEventNodeError:
			logger.Warn("node %s failed after %s: %v", span.NodeName, span.Duration, span.Error)
		case TraceEventEdgeTraversal:
			logger.Debug("edge %s -> %s", span.FromNode, span.ToNode)
		case TraceEventGraphEnd:
			logger.Debug("graph finished in %s", span.Duration)
		}
	})
}

type contextKey string

const spanContextKey contextKey = "researchgraph_span"

// ContextWithSpan returns a new context with the span stored
func ContextWithSpan(ctx context.Context, span *TraceSpan) context.Context {
	return context.WithValue(ctx, spanContextKey, span)
}

// SpanFromContext extracts a span from context
func SpanFromContext(ctx context.Context) *TraceSpan {
	if span, ok := ctx.Value(spanContextKey).(*TraceSpan); ok {
		return span
	}
	return nil
}
