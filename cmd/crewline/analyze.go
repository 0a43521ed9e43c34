// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <request>",
	Short: "Analyse the sample sales dataset and report insights",
	Long: `Analyze runs a data explorer, a statistician and a business analyst over a
deterministic Q1 2024 sales dataset and prints a report with the analyst's
summary, dataset info, up to five recommendations and suggested charts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request := args[0]
		return runWorkflow(cmd, types.WorkflowAnalysis, request, func(ctx context.Context, deps workflow.Deps) (any, error) {
			return workflow.RunAnalysis(ctx, deps, request)
		})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
