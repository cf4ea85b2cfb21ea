package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jemygraw/researchgraph/research"
)

var historyClear bool

var historyCmd = &cobra.Command{
	Use:   "history RUN_ID",
	Short: "List the snapshots stored for a run",
	Long: `List the per-node snapshots stored for a run.

Snapshots are only kept across invocations by the sqlite, redis and
postgres store backends.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete the run's snapshots after listing them")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := newApp(ctx, cfg, appOptions{withStore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	runID := args[0]
	checkpoints, err := a.checkpoints.List(ctx, runID)
	if err != nil {
		return err
	}
	if len(checkpoints) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no snapshots for run %s\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNODE\tROUTER STEPS\tACTION\tTIME")
	for _, cp := range checkpoints {
		var s research.AgentState
		if err := json.Unmarshal(cp.State, &s); err != nil {
			a.logger.Warn("snapshot %s: %v", cp.ID, err)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", cp.Step, cp.Node, s.StepCount, s.CurrentAction, cp.Timestamp.Format("15:04:05.000"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if historyClear {
		return a.checkpoints.Clear(ctx, runID)
	}
	return nil
}
