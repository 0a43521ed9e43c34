// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the workflows over HTTP. Each request runs one
// workflow to completion and answers with its result record, or with
// {"error": ...} and status 400 for invalid input or 500 for a failed run.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/crewline/internal/history"
	"github.com/pdiddy/crewline/internal/materialize"
	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

// DepsFunc resolves the collaborators for one run of workflow w. It selects
// the generation backend and fails with *provider.ConfigError when none is
// configured.
type DepsFunc func(w types.Workflow) (workflow.Deps, types.Backend, error)

// Config wires a Server.
type Config struct {
	Deps    DepsFunc
	Blog    workflow.BlogOptions
	WebApp  workflow.WebAppOptions
	History *history.Store
	Logger  *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	logger *slog.Logger
	engine *gin.Engine
}

// New builds the routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: logger, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.logRequests())

	api := s.engine.Group("/api")
	api.POST("/generate", s.workflowHandler(types.WorkflowBlog, "topic", "Invalid topic", s.runBlog))
	api.POST("/web", s.workflowHandler(types.WorkflowWebApp, "prompt", "Invalid prompt", s.runWebApp))
	api.POST("/analyze", s.workflowHandler(types.WorkflowAnalysis, "request", "Invalid analysis request", s.runAnalysis))
	api.GET("/runs", s.listRuns)
	api.GET("/runs/:id", s.getRun)
	s.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	publishDir := cfg.WebApp.PublishDir
	if publishDir == "" {
		publishDir = materialize.DefaultPublishDir
	}
	prefix := cfg.WebApp.PublishPrefix
	if prefix == "" {
		prefix = materialize.DefaultPublishPrefix
	}
	s.engine.Static(prefix, publishDir)

	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type runFunc func(ctx context.Context, deps workflow.Deps, input string) (any, error)

func (s *Server) runBlog(ctx context.Context, deps workflow.Deps, topic string) (any, error) {
	return workflow.RunBlog(ctx, deps, topic, s.cfg.Blog)
}

func (s *Server) runWebApp(ctx context.Context, deps workflow.Deps, prompt string) (any, error) {
	return workflow.RunWebApp(ctx, deps, prompt, s.cfg.WebApp)
}

func (s *Server) runAnalysis(ctx context.Context, deps workflow.Deps, request string) (any, error) {
	return workflow.RunAnalysis(ctx, deps, request)
}

// workflowHandler reads the string field from a JSON body and runs w with it.
func (s *Server) workflowHandler(w types.Workflow, field, invalid string, run runFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid})
			return
		}
		input, ok := body[field].(string)
		if !ok || strings.TrimSpace(input) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid})
			return
		}

		if s.cfg.Deps == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server has no workflow dependencies configured"})
			return
		}
		deps, backend, err := s.cfg.Deps(w)
		if err != nil {
			c.JSON(http.StatusInternalServerError, workflow.ErrorRecord(err))
			return
		}
		if deps.Logger == nil {
			deps.Logger = s.logger
		}

		tracker := s.cfg.History.Track(c.Request.Context(), w, input, backend, s.logger)
		deps.OnStep = tracker.OnStep

		result, err := run(c.Request.Context(), deps, input)
		tracker.Finish(result, err)
		if err != nil {
			s.logger.Error("run failed", "workflow", w, "run", tracker.ID(), "err", err)
			c.JSON(http.StatusInternalServerError, workflow.ErrorRecord(err))
			return
		}
		if id := tracker.ID(); id != "" {
			c.Header("X-Run-ID", id)
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) listRuns(c *gin.Context) {
	if s.cfg.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run history is disabled"})
		return
	}
	opts := history.ListOptions{
		Workflow: types.Workflow(c.Query("workflow")),
		State:    types.RunState(c.Query("state")),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", raw)})
			return
		}
		opts.Limit = n
	}
	runs, err := s.cfg.History.List(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []types.RunRecord{}
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) getRun(c *gin.Context) {
	if s.cfg.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run history is disabled"})
		return
	}
	rec, err := s.cfg.History.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, history.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, rec)
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}
}
