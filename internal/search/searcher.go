// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search enriches role input with web results and finds a single
// illustrative image for published documents. Both are optional
// collaborators: a run without them degrades to backend-only generation and
// an imageless page.
package search

import (
	"context"

	"github.com/pdiddy/crewline/pkg/types"
)

// Searcher returns ranked web results for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.SearchResult, error)
}

// ImageFinder returns the URL of the first image found for a query.
type ImageFinder interface {
	FirstImage(ctx context.Context, query string) (string, error)
}

const defaultUserAgent = "crewline/0.1"
