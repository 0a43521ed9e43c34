// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm talks to generation backends. Each backend turns one
// role-scoped GenerationRequest into text; the crew runner never sees
// backend specifics.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/crewline/pkg/types"
)

// Generator produces text for one role, instructions and prior context.
type Generator interface {
	Generate(ctx context.Context, req types.GenerationRequest) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req types.GenerationRequest) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	return f(ctx, req)
}

// New returns the Generator for a selected backend.
func New(b types.Backend, client *http.Client) (Generator, error) {
	switch b.ID {
	case types.BackendGemini:
		return &GeminiBackend{
			APIKey:      b.APIKey,
			Model:       b.Model,
			BaseURL:     b.BaseURL,
			Temperature: b.Temperature,
			Client:      client,
		}, nil
	case types.BackendOpenAI:
		return &OpenAIBackend{
			APIKey:      b.APIKey,
			Model:       b.Model,
			BaseURL:     b.BaseURL,
			Temperature: b.Temperature,
			Client:      client,
		}, nil
	}
	return nil, fmt.Errorf("unsupported backend %q", b.ID)
}
