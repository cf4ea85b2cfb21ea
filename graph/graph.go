package graph

import (
	"context"
	"errors"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrFanOut is returned by Compile when a node declares more than one static edge.
	ErrFanOut = errors.New("node has more than one outgoing edge")

	// ErrRecursionLimit is returned when a run exceeds Config.MaxSteps node executions.
	ErrRecursionLimit = errors.New("recursion limit reached")
)

// DefaultMaxSteps bounds the number of node executions of a single run.
const DefaultMaxSteps = 100

// Node represents a node in the graph.
type Node[S any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function takes the current state and returns the updated state.
	Function func(ctx context.Context, state S) (S, error)
}

// Edge represents an edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// ConditionalEdge picks the successor of From at runtime.
type ConditionalEdge[S any] struct {
	From      string
	Condition func(ctx context.Context, state S) string

	// Targets lists the nodes the condition may return. It is used for
	// validation and rendering only; an empty list disables both.
	Targets []string
}

// Config holds per-invocation settings.
type Config struct {
	// MaxSteps overrides DefaultMaxSteps when positive.
	MaxSteps int

	// Tracer overrides the runnable's tracer for this invocation.
	Tracer *Tracer
}
