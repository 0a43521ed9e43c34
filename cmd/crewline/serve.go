// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/crewline/internal/document"
	"github.com/pdiddy/crewline/internal/log"
	"github.com/pdiddy/crewline/internal/server"
	"github.com/pdiddy/crewline/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflows over HTTP",
	Long: `Serve exposes the workflows as JSON endpoints:

  POST /api/generate  {"topic": ...}    blog
  POST /api/web       {"prompt": ...}   webapp
  POST /api/analyze   {"request": ...}  analysis
  GET  /api/runs[/:id]                  run history
  GET  /zip_folder/*                    published archives

Invalid input answers 400 and a failed run 500, both with {"error": ...}.
The backend is selected per request from the settings loaded at startup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		layout, _ := cmd.Flags().GetString("layout")
		debug, _ := cmd.Flags().GetBool("debug")
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store := openHistory()
		if store != nil {
			defer store.Close()
		}

		srv := server.New(server.Config{
			Deps: depsBuilder,
			Blog: workflow.BlogOptions{
				DatabaseID: settings.Notion.DatabaseID,
				Layout:     document.Layout(layout),
			},
			WebApp: workflow.WebAppOptions{
				OutputDir:     settings.OutputDir,
				PublishDir:    settings.PublishDir,
				PublishPrefix: settings.PublishPrefix,
			},
			History: store,
			Logger:  log.Logger(),
		})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":3000", "listen address")
	serveCmd.Flags().String("layout", string(document.LayoutBlocks), "blog page layout: blocks or paragraphs")
	serveCmd.Flags().Bool("debug", false, "run gin in debug mode")

	rootCmd.AddCommand(serveCmd)
}
