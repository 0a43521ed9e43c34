// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion publishes block documents as pages in a Notion database.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/crewline/internal/httputil"
	"github.com/pdiddy/crewline/pkg/types"
)

// notionAPIURL is the Notion REST API base. Declared as a var so tests can
// substitute an httptest server.
var notionAPIURL = "https://api.notion.com/v1"

const notionVersion = "2022-06-28"

// Notion API limits.
const (
	maxRichTextLen    = 2000
	maxChildrenPerReq = 100
)

// TitleProperty is the database property that holds the page title.
const TitleProperty = "Name"

// Client creates pages with an integration token.
type Client struct {
	Token  string
	Client *http.Client
}

// Page is a created Notion page.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePage creates a page titled title in database parentID with blocks as
// its content. Documents longer than one request allows are appended in
// follow-up requests.
func (c *Client) CreatePage(ctx context.Context, parentID, title string, blocks []types.Block) (Page, error) {
	if strings.TrimSpace(c.Token) == "" {
		return Page{}, fmt.Errorf("notion token is empty")
	}
	if strings.TrimSpace(parentID) == "" {
		return Page{}, fmt.Errorf("notion database id is empty")
	}

	children := make([]block, 0, len(blocks))
	for _, b := range blocks {
		children = append(children, renderBlock(b))
	}
	first, rest := splitChildren(children)

	payload := map[string]any{
		"parent": map[string]any{"database_id": parentID},
		"properties": map[string]any{
			TitleProperty: map[string]any{"title": richText(title)},
		},
		"children": first,
	}

	var page Page
	if err := c.do(ctx, http.MethodPost, notionAPIURL+"/pages", payload, &page); err != nil {
		return Page{}, fmt.Errorf("creating page: %w", err)
	}

	for len(rest) > 0 {
		var batch []block
		batch, rest = splitChildren(rest)
		endpoint := notionAPIURL + "/blocks/" + page.ID + "/children"
		if err := c.do(ctx, http.MethodPatch, endpoint, map[string]any{"children": batch}, nil); err != nil {
			return page, fmt.Errorf("appending blocks to page %s: %w", page.ID, err)
		}
	}
	return page, nil
}

func splitChildren(all []block) (head, tail []block) {
	if len(all) <= maxChildrenPerReq {
		return all, nil
	}
	return all[:maxChildrenPerReq], all[maxChildrenPerReq:]
}

func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return fmt.Errorf("Notion API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(msg, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("Notion API returned %d (%s): %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("Notion API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding Notion response: %w", err)
	}
	return nil
}

// block is one Notion block object keyed by its type.
type block map[string]any

func renderBlock(b types.Block) block {
	switch b.Kind {
	case types.BlockHeading:
		kind := "heading_1"
		if b.Level == 2 {
			kind = "heading_2"
		}
		return textBlock(kind, b.Text)
	case types.BlockBulletedItem:
		return textBlock("bulleted_list_item", b.Text)
	case types.BlockImage:
		return block{
			"object": "block",
			"type":   "image",
			"image": map[string]any{
				"type":     "external",
				"external": map[string]any{"url": b.URL},
			},
		}
	default:
		return textBlock("paragraph", b.Text)
	}
}

func textBlock(kind, text string) block {
	return block{
		"object": "block",
		"type":   kind,
		kind:     map[string]any{"rich_text": richText(text)},
	}
}

// richText splits text into runs no longer than the API allows. Empty text
// yields an empty list, which Notion renders as a blank line.
func richText(text string) []map[string]any {
	runs := []map[string]any{}
	for _, chunk := range chunkRunes(text, maxRichTextLen) {
		runs = append(runs, map[string]any{
			"type": "text",
			"text": map[string]any{"content": chunk},
		})
	}
	return runs
}

func chunkRunes(s string, n int) []string {
	var chunks []string
	r := []rune(s)
	for len(r) > n {
		chunks = append(chunks, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 {
		chunks = append(chunks, string(r))
	}
	return chunks
}
