// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/crewline/internal/crew"
	"github.com/pdiddy/crewline/internal/document"
	"github.com/pdiddy/crewline/pkg/types"
)

// DefaultBlogTitle is used when the topic is blank.
const DefaultBlogTitle = "New Blog Post"

// ErrPublisherNotConfigured is returned by RunBlog before any generation
// when the Notion token or database id is missing.
var ErrPublisherNotConfigured = errors.New("NOTION_TOKEN and NOTION_DATABASE_ID must be set to publish the blog post")

// BlogOptions controls where and how a post is published.
type BlogOptions struct {
	DatabaseID string
	Layout     document.Layout
}

// BlogResult is the blog workflow's result record.
type BlogResult struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title" yaml:"title"`
}

// BlogCrew returns researcher then writer for topic. The researcher may use
// web search.
func BlogCrew(topic string) (crew.Pipeline, error) {
	researcher := types.Role{
		Name:         topic + " Researcher",
		Objective:    fmt.Sprintf("Collect accurate, up-to-date information about %s from credible sources.", topic),
		Persona:      fmt.Sprintf("You are an expert researcher specialising in %s. You read multiple articles and sources to compile a concise summary.", topic),
		Capabilities: []types.Capability{types.CapabilityWebSearch},
	}
	writer := types.Role{
		Name:      topic + " Blog Writer",
		Objective: fmt.Sprintf("Write an engaging, well-structured blog post about %s using the researcher's notes.", topic),
		Persona:   "You are a talented writer known for clarity and storytelling. Use the research notes to structure the article with an introduction, body, and conclusion.",
	}

	return crew.New(
		types.Step{
			Name: "research",
			Instructions: fmt.Sprintf("Research the topic '%s'. Provide a bullet list of at least 5 key points, "+
				"including important facts, figures, or arguments. Cite the sources you used.", topic),
			ExpectedOutput: "A research summary containing bullet points with facts and citations.",
			Role:           researcher,
		},
		types.Step{
			Name: "write",
			Instructions: fmt.Sprintf("Using the research summary provided by the researcher, write a detailed blog post "+
				"about '%s'. The blog should have a clear introduction, sections for each key point, and a conclusion. "+
				"Format the output in Markdown, using headings and bullet points where appropriate.", topic),
			ExpectedOutput: "A Markdown-formatted blog post ready for publication on Notion.",
			Role:           writer,
		},
	)
}

// BlogTitle capitalizes the trimmed topic: first letter upper case, the rest
// lower case. A blank topic yields DefaultBlogTitle.
func BlogTitle(topic string) string {
	t := strings.TrimSpace(topic)
	if t == "" {
		return DefaultBlogTitle
	}
	r := []rune(strings.ToLower(t))
	r[0] = unicode.ToTitle(r[0])
	return string(r)
}

// RunBlog researches and writes a post about topic and publishes it. A
// failed image lookup only drops the cover image.
func RunBlog(ctx context.Context, deps Deps, topic string, opts BlogOptions) (BlogResult, error) {
	if deps.Publisher == nil || strings.TrimSpace(opts.DatabaseID) == "" {
		return BlogResult{}, ErrPublisherNotConfigured
	}
	logger := deps.logger()

	p, err := BlogCrew(topic)
	if err != nil {
		return BlogResult{}, err
	}
	res, err := deps.run(ctx, p, topic)
	if err != nil {
		return BlogResult{}, err
	}

	title := BlogTitle(topic)
	blocks := document.Convert(opts.Layout, res.Final)

	if deps.Images != nil {
		url, err := deps.Images.FirstImage(ctx, topic)
		if err != nil {
			logger.Debug("image lookup failed", "topic", topic, "err", err)
		}
		blocks = document.WithImage(url, blocks)
	}

	page, err := deps.Publisher.CreatePage(ctx, opts.DatabaseID, title, blocks)
	if err != nil {
		return BlogResult{}, fmt.Errorf("publishing to Notion: %w", err)
	}
	logger.Info("blog published", "title", title, "blocks", len(blocks), "url", page.URL)
	return BlogResult{URL: page.URL, Title: title}, nil
}
