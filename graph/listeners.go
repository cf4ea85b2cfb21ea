package graph

import "context"

// NodeEvent represents the lifecycle events of a node execution
type NodeEvent string

const (
	// NodeEventStart is emitted before the node function runs
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete is emitted after the node function returned without error
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError is emitted when the node function returned an error
	NodeEventError NodeEvent = "error"
)

// NodeListener receives node lifecycle events. Listeners run synchronously
// on the executing goroutine and must not modify the state.
type NodeListener[S any] interface {
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc[S any] func(ctx context.Context, event NodeEvent, nodeName string, state S, err error)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc[S]) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	f(ctx, event, nodeName, state, err)
}
