// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/crewline/internal/history"
	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded runs",
	Long: `History reads the run database (history_db, default .crewline/history.db).
Every workflow run is recorded with its backend, each step's output and the
final result or error.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		opts, err := listOptions(cmd)
		if err != nil {
			return err
		}
		runs, err := store.List(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if runs == nil {
				runs = []types.RunRecord{}
			}
			return history.Encode(cmd.OutOrStdout(), history.FormatJSON, runs)
		}
		return formatRuns(cmd, runs)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run with every step output (id prefixes are accepted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return history.Encode(cmd.OutOrStdout(), format, rec)
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs with their step outputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		opts, err := listOptions(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return store.Export(cmd.Context(), cmd.OutOrStdout(), format, opts)
	},
}

func requireHistory() (*history.Store, error) {
	if settings.HistoryDB == "" {
		return nil, fmt.Errorf("run history is disabled (history_db is empty)")
	}
	return history.Open(settings.HistoryDB)
}

func listOptions(cmd *cobra.Command) (history.ListOptions, error) {
	w, _ := cmd.Flags().GetString("workflow")
	state, _ := cmd.Flags().GetString("state")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := history.ListOptions{Workflow: types.Workflow(w), State: types.RunState(state), Limit: limit}
	if w != "" {
		valid := false
		for _, known := range workflow.Workflows() {
			valid = valid || known == opts.Workflow
		}
		if !valid {
			return opts, fmt.Errorf("unknown workflow %q", w)
		}
	}
	return opts, nil
}

func formatRuns(cmd *cobra.Command, runs []types.RunRecord) error {
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWORKFLOW\tSTATE\tBACKEND\tSTARTED\tREQUEST")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID), r.Workflow, r.State, r.Backend, r.StartedAt.Local().Format("2006-01-02 15:04"), truncate(r.Request, 50))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyExportCmd} {
		c.Flags().String("workflow", "", "filter by workflow: blog, webapp, analysis")
		c.Flags().String("state", "", "filter by state: running, completed, failed")
	}
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")
	historyExportCmd.Flags().Int("limit", -1, "maximum number of runs (-1 for all)")
	historyExportCmd.Flags().String("format", history.FormatYAML, "output format: yaml or json")
	historyShowCmd.Flags().String("format", history.FormatYAML, "output format: yaml or json")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
