// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"github.com/pdiddy/crewline/internal/history"
	"github.com/pdiddy/crewline/internal/llm"
	"github.com/pdiddy/crewline/internal/log"
	"github.com/pdiddy/crewline/internal/notion"
	"github.com/pdiddy/crewline/internal/provider"
	"github.com/pdiddy/crewline/internal/search"
	"github.com/pdiddy/crewline/internal/workflow"
	"github.com/pdiddy/crewline/pkg/types"
)

// buildDeps selects the backend for w and wires the collaborators the
// settings enable. It fails before any network call when no backend is
// configured.
func buildDeps(w types.Workflow) (workflow.Deps, types.Backend, error) {
	policy, err := provider.PolicyFor(w)
	if err != nil {
		return workflow.Deps{}, types.Backend{}, err
	}
	backend, err := provider.Select(settings.Provider, policy)
	if err != nil {
		return workflow.Deps{}, types.Backend{}, err
	}

	client := &http.Client{Timeout: settings.Timeout}
	gen, err := llm.New(backend, client)
	if err != nil {
		return workflow.Deps{}, types.Backend{}, err
	}

	deps := workflow.Deps{
		Generator: gen,
		Images:    &search.DuckDuckGoImages{Client: client},
		Logger:    log.Logger(),
	}
	if settings.SerperAPIKey != "" {
		deps.Searcher = &search.SerperSearcher{APIKey: settings.SerperAPIKey, Client: client}
	}
	if settings.Notion.Token != "" {
		deps.Publisher = &notion.Client{Token: settings.Notion.Token, Client: client}
	}

	log.Info("backend selected", "workflow", w, "backend", backend.ID, "model", backend.Model,
		"search", deps.Searcher != nil)
	return deps, backend, nil
}

// openHistory opens the run history, or returns nil when it is disabled or
// cannot be opened. History never blocks a run.
func openHistory() *history.Store {
	if settings.HistoryDB == "" {
		return nil
	}
	s, err := history.Open(settings.HistoryDB)
	if err != nil {
		log.Warn("run history unavailable", "path", settings.HistoryDB, "err", err)
		return nil
	}
	return s
}
