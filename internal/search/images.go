// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/pdiddy/crewline/internal/httputil"
)

// DuckDuckGo endpoints. Vars so tests can point them at httptest servers.
var (
	ddgTokenURL  = "https://duckduckgo.com/"
	ddgImagesURL = "https://duckduckgo.com/i.js"
)

// vqdPattern extracts the per-query token the image endpoint requires.
var vqdPattern = regexp.MustCompile(`vqd=["']?([0-9-]+)`)

// DuckDuckGoImages finds images through DuckDuckGo's image search. It needs
// no credentials.
type DuckDuckGoImages struct {
	Client *http.Client
}

type ddgImagesResponse struct {
	Results []struct {
		Image string `json:"image"`
		Title string `json:"title"`
	} `json:"results"`
}

// FirstImage returns the direct URL of the top image result.
func (d *DuckDuckGoImages) FirstImage(ctx context.Context, query string) (string, error) {
	token, err := d.token(ctx, query)
	if err != nil {
		return "", err
	}

	params := url.Values{
		"l":   {"us-en"},
		"o":   {"json"},
		"q":   {query},
		"vqd": {token},
		"f":   {",,,"},
		"p":   {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ddgImagesURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Referer", ddgTokenURL)

	resp, err := httputil.DoWithRetry(ctx, d.Client, req, 1)
	if err != nil {
		return "", fmt.Errorf("image search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search returned HTTP %d", resp.StatusCode)
	}

	var ir ddgImagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return "", fmt.Errorf("decoding image results: %w", err)
	}
	for _, r := range ir.Results {
		if r.Image != "" {
			return r.Image, nil
		}
	}
	return "", fmt.Errorf("no image found for %q", query)
}

func (d *DuckDuckGoImages) token(ctx context.Context, query string) (string, error) {
	params := url.Values{"q": {query}, "iax": {"images"}, "ia": {"images"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ddgTokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := httputil.DoWithRetry(ctx, d.Client, req, 1)
	if err != nil {
		return "", fmt.Errorf("image token request: %w", err)
	}
	defer resp.Body.Close()

	page, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading image token page: %w", err)
	}
	m := vqdPattern.FindSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("image search token not found")
	}
	return string(m[1]), nil
}
