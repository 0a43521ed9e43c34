// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/crewline/internal/document"
	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

var blogCmd = &cobra.Command{
	Use:   "blog <topic>",
	Short: "Research a topic, write a blog post and publish it to Notion",
	Long: `Blog runs a researcher (with web search when SERPER_API_KEY is set) and a
writer, converts the post to Notion blocks, prepends the first image found for
the topic and creates a page in NOTION_DATABASE_ID.

Prints {"url": ..., "title": ...}.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, _ := cmd.Flags().GetString("layout")
		switch document.Layout(layout) {
		case document.LayoutBlocks, document.LayoutParagraphs:
		default:
			return fmt.Errorf("unknown layout %q (want blocks or paragraphs)", layout)
		}

		if settings.Notion.Token == "" || settings.Notion.DatabaseID == "" {
			return emitError(cmd, workflow.ErrPublisherNotConfigured)
		}

		opts := workflow.BlogOptions{
			DatabaseID: settings.Notion.DatabaseID,
			Layout:     document.Layout(layout),
		}
		topic := args[0]
		return runWorkflow(cmd, types.WorkflowBlog, topic, func(ctx context.Context, deps workflow.Deps) (any, error) {
			return workflow.RunBlog(ctx, deps, topic, opts)
		})
	},
}

func init() {
	blogCmd.Flags().String("layout", string(document.LayoutBlocks), "page layout: blocks (headings, bullets) or paragraphs (one per line)")

	rootCmd.AddCommand(blogCmd)
}
