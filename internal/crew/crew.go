// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crew runs a fixed, ordered sequence of role-scoped generation
// steps. Step i sees the original request and the outputs of steps 1..i-1,
// in order, as a list of (role, text) pairs. Steps never run concurrently
// and a failed step ends the run with no partial result.
package crew

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/crewline/internal/llm"
	"github.com/pdiddy/crewline/internal/search"
	"github.com/pdiddy/crewline/pkg/types"
)

// ErrEmptyPipeline is returned when a pipeline has no steps.
var ErrEmptyPipeline = errors.New("pipeline has no steps")

// Pipeline is a validated, non-empty, ordered list of steps.
type Pipeline struct {
	steps []types.Step
}

// New validates steps and returns a Pipeline. Every step must be bound to
// exactly one named role and carry instructions.
func New(steps ...types.Step) (Pipeline, error) {
	if len(steps) == 0 {
		return Pipeline{}, ErrEmptyPipeline
	}
	for i, s := range steps {
		if strings.TrimSpace(s.Role.Name) == "" {
			return Pipeline{}, fmt.Errorf("step %d (%q): no role bound", i+1, s.Name)
		}
		if strings.TrimSpace(s.Instructions) == "" {
			return Pipeline{}, fmt.Errorf("step %d (%q): empty instructions", i+1, s.Name)
		}
	}
	return Pipeline{steps: append([]types.Step(nil), steps...)}, nil
}

// Steps returns a copy of the pipeline's steps.
func (p Pipeline) Steps() []types.Step {
	return append([]types.Step(nil), p.steps...)
}

// Roles returns the distinct roles of the pipeline in first-use order.
func (p Pipeline) Roles() []types.Role {
	seen := make(map[string]bool)
	var roles []types.Role
	for _, s := range p.steps {
		if !seen[s.Role.Name] {
			seen[s.Role.Name] = true
			roles = append(roles, s.Role)
		}
	}
	return roles
}

// StepError reports the step whose generation failed. Its message is the
// underlying backend message, prefixed with the step.
type StepError struct {
	Step string
	Role string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q (%s) failed: %v", e.Step, e.Role, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Runner executes pipelines against one generator.
type Runner struct {
	Generator llm.Generator

	// Searcher is optional. When nil, roles that declare web search run on
	// backend knowledge only.
	Searcher search.Searcher

	// OnStep, if set, observes every completed step in order.
	OnStep func(types.Output)

	Logger *slog.Logger
}

// Run executes every step of p in order, starting from input. It makes
// exactly one generation call per step and stops at the first failure.
func (r *Runner) Run(ctx context.Context, p Pipeline, input string) (types.PipelineResult, error) {
	if len(p.steps) == 0 {
		return types.PipelineResult{}, ErrEmptyPipeline
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	outputs := make([]types.Output, 0, len(p.steps))

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return types.PipelineResult{}, err
		}

		req := types.GenerationRequest{
			Role:           step.Role,
			Instructions:   step.Instructions,
			ExpectedOutput: step.ExpectedOutput,
			Input:          input,
			Context:        append([]types.Output(nil), outputs...),
		}

		if step.Role.HasCapability(types.CapabilityWebSearch) && r.Searcher != nil {
			results, err := r.Searcher.Search(ctx, input)
			if err != nil {
				return types.PipelineResult{}, &StepError{Step: step.Name, Role: step.Role.Name, Err: fmt.Errorf("web search: %w", err)}
			}
			req.SearchResults = results
		}

		logger.Info("step started", "step", step.Name, "role", step.Role.Name, "index", i+1, "of", len(p.steps))
		start := time.Now()

		text, err := r.Generator.Generate(ctx, req)
		if err != nil {
			logger.Error("step failed", "step", step.Name, "role", step.Role.Name, "err", err)
			return types.PipelineResult{}, &StepError{Step: step.Name, Role: step.Role.Name, Err: err}
		}

		out := types.Output{Step: step.Name, Role: step.Role.Name, Text: text}
		outputs = append(outputs, out)
		logger.Info("step done", "step", step.Name, "chars", len(text), "duration", time.Since(start).Round(time.Millisecond))

		if r.OnStep != nil {
			r.OnStep(out)
		}
	}

	return types.PipelineResult{
		Outputs: outputs,
		Final:   outputs[len(outputs)-1].Text,
	}, nil
}
