package graph

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// StateGraph is a typed graph whose nodes transform a state of type S.
// Execution is strictly sequential: after each node exactly one successor
// is chosen, either by the node's conditional edge or by its static edge.
//
// Example usage:
//
//	g := graph.NewStateGraph[MyState]()
//	g.AddNode("increment", "Increment counter", func(ctx context.Context, s MyState) (MyState, error) {
//	    s.Count++
//	    return s, nil
//	})
//	g.AddEdge("increment", graph.END)
//	g.SetEntryPoint("increment")
type StateGraph[S any] struct {
	nodes            map[string]Node[S]
	order            []string
	edges            []Edge
	conditionalEdges map[string]ConditionalEdge[S]
	entryPoint       string
}

// NewStateGraph creates an empty graph for state type S.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]ConditionalEdge[S]),
	}
}

// AddNode adds a node with the given name, description and function.
// Adding a node twice replaces the earlier definition.
func (g *StateGraph[S]) AddNode(name string, description string, fn func(ctx context.Context, state S) (S, error)) {
	if _, ok := g.nodes[name]; !ok {
		g.order = append(g.order, name)
	}
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a static edge between the "from" and "to" nodes.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// AddConditionalEdge adds an edge whose target is computed at runtime.
// The optional targets enumerate what condition may return.
func (g *StateGraph[S]) AddConditionalEdge(from string, condition func(ctx context.Context, state S) string, targets ...string) {
	g.conditionalEdges[from] = ConditionalEdge[S]{
		From:      from,
		Condition: condition,
		Targets:   targets,
	}
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// Nodes returns the nodes in insertion order.
func (g *StateGraph[S]) Nodes() []Node[S] {
	nodes := make([]Node[S], 0, len(g.order))
	for _, name := range g.order {
		nodes = append(nodes, g.nodes[name])
	}
	return nodes
}

func (g *StateGraph[S]) hasTarget(name string) bool {
	if name == END {
		return true
	}
	_, ok := g.nodes[name]
	return ok
}

// Compile validates the topology and returns a runnable.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint)
	}

	seen := make(map[string]bool)
	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.From]; !ok {
			return nil, fmt.Errorf("%w: edge source %s", ErrNodeNotFound, edge.From)
		}
		if !g.hasTarget(edge.To) {
			return nil, fmt.Errorf("%w: edge target %s", ErrNodeNotFound, edge.To)
		}
		if seen[edge.From] {
			return nil, fmt.Errorf("%w: %s", ErrFanOut, edge.From)
		}
		seen[edge.From] = true
	}

	for from, ce := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: conditional edge source %s", ErrNodeNotFound, from)
		}
		for _, target := range ce.Targets {
			if !g.hasTarget(target) {
				return nil, fmt.Errorf("%w: conditional target %s", ErrNodeNotFound, target)
			}
		}
	}

	return &StateRunnable[S]{graph: g}, nil
}

// StateRunnable is a compiled state graph.
type StateRunnable[S any] struct {
	graph     *StateGraph[S]
	tracer    *Tracer
	listeners []NodeListener[S]
	mutex     sync.RWMutex
}

// SetTracer sets a tracer for observability.
func (r *StateRunnable[S]) SetTracer(tracer *Tracer) {
	r.tracer = tracer
}

// GetTracer returns the current tracer.
func (r *StateRunnable[S]) GetTracer() *Tracer {
	return r.tracer
}

// AddListener registers a node listener and returns the runnable for chaining.
func (r *StateRunnable[S]) AddListener(listener NodeListener[S]) *StateRunnable[S] {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.listeners = append(r.listeners, listener)
	return r
}

// Graph returns the graph this runnable was compiled from.
func (r *StateRunnable[S]) Graph() *StateGraph[S] {
	return r.graph
}

// Invoke executes the compiled state graph with the given input state.
func (r *StateRunnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	return r.InvokeWithConfig(ctx, initialState, nil)
}

// InvokeWithConfig executes the graph from its entry point until END.
// On failure it returns the last state a node produced together with the error.
func (r *StateRunnable[S]) InvokeWithConfig(ctx context.Context, initialState S, config *Config) (S, error) {
	maxSteps := DefaultMaxSteps
	tracer := r.tracer
	if config != nil {
		if config.MaxSteps > 0 {
			maxSteps = config.MaxSteps
		}
		if config.Tracer != nil {
			tracer = config.Tracer
		}
	}

	state := initialState

	var graphSpan *TraceSpan
	if tracer != nil {
		graphSpan = tracer.StartSpan(ctx, TraceEventGraphStart, "")
		ctx = ContextWithSpan(ctx, graphSpan)
	}
	finish := func(err error) (S, error) {
		if tracer != nil {
			tracer.EndSpan(ctx, graphSpan, state, err)
		}
		return state, err
	}

	current := r.graph.entryPoint
	for steps := 0; current != END; steps++ {
		if steps >= maxSteps {
			return finish(fmt.Errorf("%w: %d steps", ErrRecursionLimit, maxSteps))
		}
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		node, ok := r.graph.nodes[current]
		if !ok {
			return finish(fmt.Errorf("%w: %s", ErrNodeNotFound, current))
		}

		next, err := r.runNode(ctx, tracer, node, state)
		state = next
		if err != nil {
			return finish(fmt.Errorf("error in node %s: %w", current, err))
		}

		successor, err := r.graph.successor(ctx, current, state)
		if err != nil {
			return finish(err)
		}
		if tracer != nil {
			tracer.TraceEdgeTraversal(ctx, current, successor)
		}
		current = successor
	}

	return finish(nil)
}

func (r *StateRunnable[S]) runNode(ctx context.Context, tracer *Tracer, node Node[S], state S) (S, error) {
	r.notify(ctx, NodeEventStart, node.Name, state, nil)

	nodeCtx := ctx
	var span *TraceSpan
	if tracer != nil {
		span = tracer.StartSpan(ctx, TraceEventNodeStart, node.Name)
		nodeCtx = ContextWithSpan(ctx, span)
	}

	next, err := node.Function(nodeCtx, state)

	if tracer != nil {
		tracer.EndSpan(nodeCtx, span, next, err)
	}
	if err != nil {
		r.notify(ctx, NodeEventError, node.Name, next, err)
		return next, err
	}
	r.notify(ctx, NodeEventComplete, node.Name, next, nil)
	return next, nil
}

func (r *StateRunnable[S]) notify(ctx context.Context, event NodeEvent, nodeName string, state S, err error) {
	r.mutex.RLock()
	listeners := slices.Clone(r.listeners)
	r.mutex.RUnlock()

	for _, l := range listeners {
		l.OnNodeEvent(ctx, event, nodeName, state, err)
	}
}

func (g *StateGraph[S]) successor(ctx context.Context, from string, state S) (string, error) {
	if ce, ok := g.conditionalEdges[from]; ok {
		next := ce.Condition(ctx, state)
		if next == "" {
			return "", fmt.Errorf("%w: conditional edge from %s returned no target", ErrNoOutgoingEdge, from)
		}
		if !g.hasTarget(next) {
			return "", fmt.Errorf("%w: %s (from %s)", ErrNodeNotFound, next, from)
		}
		return next, nil
	}

	for _, edge := range g.edges {
		if edge.From == from {
			return edge.To, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOutgoingEdge, from)
}
