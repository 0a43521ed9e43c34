// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider resolves which generation backend and model a run uses.
// Selection is a pure function of immutable settings and a fixed
// per-workflow policy, performed once per run.
package provider

import (
	"fmt"
	"strings"

	"github.com/pdiddy/crewline/pkg/types"
)

// Policy is the fixed generation policy of one workflow. It is not user
// configurable.
type Policy struct {
	Workflow types.Workflow

	// Temperature is sent to the backend only when non-zero; zero leaves
	// the backend's own default in effect.
	Temperature   float64
	DefaultGemini string
	DefaultOpenAI string
}

var (
	// BlogPolicy favours fluent prose.
	BlogPolicy = Policy{
		Workflow:      types.WorkflowBlog,
		Temperature:   0.5,
		DefaultGemini: "gemini/gemini-pro",
		DefaultOpenAI: "gpt-4o",
	}

	// WebAppPolicy keeps code generation close to deterministic.
	WebAppPolicy = Policy{
		Workflow:      types.WorkflowWebApp,
		Temperature:   0.3,
		DefaultGemini: "gemini/gemini-pro",
		DefaultOpenAI: "gpt-4o",
	}

	// AnalysisPolicy leaves temperature to the backend and defaults Gemini
	// to a larger model for the statistics step.
	AnalysisPolicy = Policy{
		Workflow:      types.WorkflowAnalysis,
		DefaultGemini: "gemini/gemini-2.5-pro",
		DefaultOpenAI: "gpt-4o",
	}
)

// PolicyFor returns the policy of a named workflow.
func PolicyFor(w types.Workflow) (Policy, error) {
	switch w {
	case types.WorkflowBlog:
		return BlogPolicy, nil
	case types.WorkflowWebApp:
		return WebAppPolicy, nil
	case types.WorkflowAnalysis:
		return AnalysisPolicy, nil
	}
	return Policy{}, fmt.Errorf("unknown workflow %q", w)
}

// ConfigError reports settings that make a run impossible. It is raised
// before any generation call.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no generation backend configured: set %s", strings.Join(e.Missing, " or "))
}

// Select applies the backend precedence: Gemini when its credential is
// present, else OpenAI when its credential is present, else a ConfigError
// naming both credentials.
func Select(s types.ProviderSettings, p Policy) (types.Backend, error) {
	if key := strings.TrimSpace(s.Gemini.APIKey); key != "" {
		return resolve(types.BackendGemini, s.Gemini, key, p.DefaultGemini, p.Temperature), nil
	}
	if key := strings.TrimSpace(s.OpenAI.APIKey); key != "" {
		return resolve(types.BackendOpenAI, s.OpenAI, key, p.DefaultOpenAI, p.Temperature), nil
	}
	return types.Backend{}, &ConfigError{Missing: []string{"GEMINI_API_KEY", "OPENAI_API_KEY"}}
}

func resolve(id types.BackendID, bs types.BackendSettings, key, defaultModel string, temperature float64) types.Backend {
	model := strings.TrimSpace(bs.Model)
	if model == "" {
		model = defaultModel
	}
	return types.Backend{
		ID:          id,
		Model:       model,
		APIKey:      key,
		BaseURL:     strings.TrimSpace(bs.BaseURL),
		Temperature: temperature,
	}
}
