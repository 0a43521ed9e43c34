// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

// crewStep is the YAML view of one pipeline step.
type crewStep struct {
	Step         string             `yaml:"step"`
	Role         string             `yaml:"role"`
	Objective    string             `yaml:"objective"`
	Capabilities []types.Capability `yaml:"capabilities,omitempty"`
	Instructions string             `yaml:"instructions"`
	Expected     string             `yaml:"expected_output"`
}

var rolesCmd = &cobra.Command{
	Use:   "roles <workflow> [request]",
	Short: "Print a workflow's steps and roles as YAML",
	Long: `Roles prints the fixed pipeline of a workflow (blog, webapp or analysis)
without calling any backend. An optional request is interpolated into the
instructions the way a real run would.`,
	Args: cobra.RangeArgs(1, 2),
	ValidArgs: []string{
		string(types.WorkflowBlog), string(types.WorkflowWebApp), string(types.WorkflowAnalysis),
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		request := "<request>"
		if len(args) == 2 {
			request = args[1]
		}
		p, err := workflow.Crew(types.Workflow(strings.ToLower(args[0])), request)
		if err != nil {
			return err
		}

		steps := make([]crewStep, 0, len(p.Steps()))
		for _, s := range p.Steps() {
			steps = append(steps, crewStep{
				Step:         s.Name,
				Role:         s.Role.Name,
				Objective:    s.Role.Objective,
				Capabilities: s.Role.Capabilities,
				Instructions: s.Instructions,
				Expected:     s.ExpectedOutput,
			})
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(steps); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
