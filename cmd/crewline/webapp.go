// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/crewline/internal/config"
	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

var webappCmd = &cobra.Command{
	Use:   "webapp <request>",
	Short: "Generate a Next.js project and publish it as a zip archive",
	Long: `Webapp runs a planner, coder, reviewer and packager. The packager's JSON
is written under --output-dir/<slug>/ and zipped to publish_dir/<slug>.zip.

Prints {"zip_path": "/zip_folder/<slug>.zip", "project_dir": ...}, or only
{"project_dir": ...} with --no-archive. When the packager's output cannot be
used the error record carries "output" (raw text) or "data" (decoded record).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noArchive, _ := cmd.Flags().GetBool("no-archive")
		opts := workflow.WebAppOptions{
			OutputDir:     settings.OutputDir,
			PublishDir:    settings.PublishDir,
			PublishPrefix: settings.PublishPrefix,
			NoArchive:     noArchive,
		}
		request := args[0]
		return runWorkflow(cmd, types.WorkflowWebApp, request, func(ctx context.Context, deps workflow.Deps) (any, error) {
			return workflow.RunWebApp(ctx, deps, request, opts)
		})
	},
}

func init() {
	webappCmd.Flags().String("output-dir", config.DefaultOutputDir, "parent directory of the generated project")
	webappCmd.Flags().Bool("no-archive", false, "write the project without creating a zip archive")
	viper.BindPFlag(config.KeyOutputDir, webappCmd.Flags().Lookup("output-dir"))

	rootCmd.AddCommand(webappCmd)
}
