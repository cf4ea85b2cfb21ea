// Command research runs the research assistant from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jemygraw/researchgraph/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "research",
	Short: "Research assistant over papers and local documents",
	Long: `research answers questions about papers and local documents.

A router decides which analysis to run next (retrieve, summarize, extract
claims or methodology, compare, cite, answer, review) until it has enough
to write the final answer.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "research.yaml", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")

	askCmd.Flags().StringSliceVar(&askDocs, "doc", nil, "Restrict the run to an already ingested document ID")
	askCmd.Flags().StringSliceVar(&askSources, "source", nil, "Ingest a local file or arXiv ID before the run")
	askCmd.Flags().StringArrayVarP(&askOptions, "option", "o", nil, "Query option as key=value (summary_type, length, style)")
	askCmd.Flags().BoolVar(&askPipeline, "pipeline", false, "Run a fixed action sequence instead of routing")
	askCmd.Flags().StringSliceVar(&askActions, "actions", nil, "Actions for --pipeline (default ingest,retrieve,summarize,finalize)")
	askCmd.Flags().StringVarP(&askFormat, "format", "f", "text", "Output format: text, markdown, html")
	askCmd.Flags().BoolVar(&askTrace, "trace", false, "Show the message trace and log node spans")
	askCmd.Flags().StringVar(&askRunID, "run-id", "", "Run ID for stored snapshots (default: random)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext bounds a command by --timeout and cancels it on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctx, func() {
		stop()
		cancel()
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
