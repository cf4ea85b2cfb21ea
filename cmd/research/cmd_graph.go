package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jemygraw/researchgraph/graph"
)

var graphDirection string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the routed graph as a Mermaid diagram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := newApp(ctx, cfg, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		exporter := graph.NewExporter(a.agent.Graph())
		fmt.Fprintln(cmd.OutOrStdout(), exporter.DrawMermaidWithOptions(graph.MermaidOptions{Direction: graphDirection}))
		return nil
	},
}

func init() {
	graphCmd.Flags().StringVar(&graphDirection, "direction", "TD", "Mermaid direction: TD or LR")
}
