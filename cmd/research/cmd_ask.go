package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jemygraw/researchgraph/report"
	"github.com/jemygraw/researchgraph/research"
)

var (
	askDocs     []string
	askSources  []string
	askOptions  []string
	askPipeline bool
	askActions  []string
	askFormat   string
	askTrace    bool
	askRunID    string
)

var askCmd = &cobra.Command{
	Use:   "ask QUERY",
	Short: "Answer a research question",
	Long: `Answer a research question about papers and local documents.

Sources given with --source (PDF, text or Markdown files, arXiv IDs or
URLs) are ingested before the run and become the query's documents.`,
	Example: `  research ask "Summarize the method" --source 1706.03762
  research ask "Compare these" --source a.pdf --source b.pdf --option style=MLA
  research ask "Key claims?" --source notes.md --pipeline --actions ingest,retrieve,extract_claims,finalize`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	switch askFormat {
	case "text", "markdown", "html":
	default:
		return fmt.Errorf("unknown format %q (valid: text, markdown, html)", askFormat)
	}

	options, err := parseOptions(askOptions)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := newApp(ctx, cfg, appOptions{withLLM: true, trace: askTrace, withStore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	query := research.ResearchQuery{
		Text:        args[0],
		DocumentIDs: append([]string(nil), askDocs...),
		Options:     options,
	}
	for _, source := range askSources {
		id, err := a.ingestor.Ingest(ctx, source)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", source, err)
		}
		query.DocumentIDs = append(query.DocumentIDs, id)
	}

	runID := askRunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var state research.AgentState
	if askPipeline {
		actions := make([]research.Action, 0, len(askActions))
		for _, name := range askActions {
			actions = append(actions, research.Action(strings.TrimSpace(name)))
		}
		state, err = a.agent.RunPipelineWithID(ctx, runID, query, actions...)
	} else {
		state, err = a.agent.RunWithID(ctx, runID, query)
	}

	out := cmd.OutOrStdout()
	switch askFormat {
	case "markdown":
		fmt.Fprint(out, report.Markdown(state))
	case "html":
		fmt.Fprint(out, report.HTML(state))
	default:
		fmt.Fprint(out, report.Terminal(state, askTrace))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "run id: %s\n", runID)
	return err
}

// parseOptions turns key=value flags into query options.
func parseOptions(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	options := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q: want key=value", pair)
		}
		options[key] = strings.TrimSpace(value)
	}
	return options, nil
}
