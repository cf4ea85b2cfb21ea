package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Exporter provides methods to export graphs in different formats
type Exporter[S any] struct {
	graph *StateGraph[S]
}

// NewExporter creates a new graph exporter for the given graph
func NewExporter[S any](graph *StateGraph[S]) *Exporter[S] {
	return &Exporter[S]{graph: graph}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter[S]) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options.
// Static edges are solid, conditional edges are dashed and fan out to their
// declared targets.
func (ge *Exporter[S]) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder
	g := ge.graph

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	if g.entryPoint != "" {
		sb.WriteString("    START([\"START\"])\n")
		fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", g.entryPoint, g.entryPoint)
		fmt.Fprintf(&sb, "    START --> %s\n", g.entryPoint)
	}

	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		if name != g.entryPoint {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, name)
	}

	hasEnd := false
	for _, edge := range g.edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", edge.From, edge.To)
		hasEnd = hasEnd || edge.To == END
	}

	froms := make([]string, 0, len(g.conditionalEdges))
	for from := range g.conditionalEdges {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		ce := g.conditionalEdges[from]
		if len(ce.Targets) == 0 {
			fmt.Fprintf(&sb, "    %s -.-> %s_condition((?))\n", from, from)
			continue
		}
		for _, target := range ce.Targets {
			fmt.Fprintf(&sb, "    %s -.-> %s\n", from, target)
			hasEnd = hasEnd || target == END
		}
	}

	if hasEnd {
		sb.WriteString("    END([\"END\"])\n")
		sb.WriteString("    style END fill:#FFB6C1\n")
	}
	if g.entryPoint != "" {
		sb.WriteString("    style START fill:#90EE90\n")
		fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", g.entryPoint)
	}

	return sb.String()
}
