// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow defines the fixed crews (blog, webapp, analysis) and runs
// them end to end: generation, recovery and delivery to a sink.
package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdiddy/crewline/internal/crew"
	"github.com/pdiddy/crewline/internal/llm"
	"github.com/pdiddy/crewline/internal/notion"
	"github.com/pdiddy/crewline/internal/search"
	"github.com/pdiddy/crewline/pkg/types"
)

// Publisher stores a finished document. *notion.Client implements it.
type Publisher interface {
	CreatePage(ctx context.Context, parentID, title string, blocks []types.Block) (notion.Page, error)
}

// Deps are the collaborators a workflow run needs. Generator is required;
// the rest are optional and each workflow states what it does without them.
type Deps struct {
	Generator llm.Generator
	Searcher  search.Searcher
	Images    search.ImageFinder
	Publisher Publisher

	// OnStep observes every completed step, in order.
	OnStep func(types.Output)
	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Deps) run(ctx context.Context, p crew.Pipeline, input string) (types.PipelineResult, error) {
	if d.Generator == nil {
		return types.PipelineResult{}, fmt.Errorf("no generator configured")
	}
	r := &crew.Runner{
		Generator: d.Generator,
		Searcher:  d.Searcher,
		OnStep:    d.OnStep,
		Logger:    d.logger(),
	}
	return r.Run(ctx, p, input)
}

// Crew builds the pipeline of workflow w for request.
func Crew(w types.Workflow, request string) (crew.Pipeline, error) {
	switch w {
	case types.WorkflowBlog:
		return BlogCrew(request)
	case types.WorkflowWebApp:
		return WebAppCrew(request)
	case types.WorkflowAnalysis:
		return AnalysisCrew(request, analysisDataset().Summary())
	}
	return crew.Pipeline{}, fmt.Errorf("unknown workflow %q", w)
}

// Workflows lists the workflow names in display order.
func Workflows() []types.Workflow {
	return []types.Workflow{types.WorkflowBlog, types.WorkflowWebApp, types.WorkflowAnalysis}
}
