// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/crewline/internal/httputil"
	"github.com/pdiddy/crewline/pkg/types"
)

// serperAPIURL is the Serper Google search endpoint. Declared as a var so
// tests can substitute an httptest server.
var serperAPIURL = "https://google.serper.dev/search"

const defaultSerperResults = 5

// SerperSearcher queries Google through the Serper API.
type SerperSearcher struct {
	APIKey     string
	Client     *http.Client
	MaxResults int
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Position int    `json:"position"`
	} `json:"organic"`
}

// Search returns at most MaxResults organic results, ranked from 1.
func (s *SerperSearcher) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	limit := s.MaxResults
	if limit <= 0 {
		limit = defaultSerperResults
	}

	body, err := json.Marshal(serperRequest{Q: query, Num: limit})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Serper API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Serper API returned HTTP %d", resp.StatusCode)
	}

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding Serper response: %w", err)
	}

	results := make([]types.SearchResult, 0, len(sr.Organic))
	for _, o := range sr.Organic {
		if len(results) == limit {
			break
		}
		results = append(results, types.SearchResult{
			Title:   o.Title,
			URL:     o.Link,
			Snippet: o.Snippet,
			Rank:    len(results) + 1,
		})
	}
	return results, nil
}
