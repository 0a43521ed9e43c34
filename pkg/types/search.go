// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchResult is one ranked web search hit used to enrich a role's input.
type SearchResult struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Snippet string `json:"snippet" yaml:"snippet"`
	Rank    int    `json:"rank" yaml:"rank"`
}
