// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis turns the final text of a data analysis run into a
// report: the dataset description, recommendation lines lifted from the
// text and a fixed set of chart suggestions.
package analysis

import (
	"strings"
	"unicode/utf8"
)

// MaxRecommendations caps the lines ExtractRecommendations returns.
const MaxRecommendations = 5

var recommendationKeywords = []string{"recommend", "suggest", "should", "consider", "action"}

// Chart is a suggested visualization.
type Chart struct {
	Type        string `json:"type" yaml:"type"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Report is the analysis workflow's result record.
type Report struct {
	Request         string   `json:"request" yaml:"request"`
	Summary         string   `json:"summary" yaml:"summary"`
	DataInfo        Info     `json:"data_info" yaml:"data_info"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
	Charts          []Chart  `json:"charts" yaml:"charts"`
}

// NewReport assembles the report for request from the run's final text.
func NewReport(request, final string, d Dataset) Report {
	return Report{
		Request:         request,
		Summary:         final,
		DataInfo:        d.Info(),
		Recommendations: ExtractRecommendations(final),
		Charts:          ChartRecommendations(),
	}
}

// ExtractRecommendations returns up to MaxRecommendations trimmed lines that
// mention a recommendation keyword and are longer than ten characters.
func ExtractRecommendations(text string) []string {
	recs := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= 10 || !hasKeyword(strings.ToLower(line)) {
			continue
		}
		recs = append(recs, line)
		if len(recs) == MaxRecommendations {
			break
		}
	}
	return recs
}

func hasKeyword(lower string) bool {
	for _, k := range recommendationKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// ChartRecommendations lists the charts suggested for sales data.
func ChartRecommendations() []Chart {
	return []Chart{
		{Type: "line_chart", Title: "Daily Sales Trend", Description: "Show sales trend over time to identify patterns and seasonality"},
		{Type: "bar_chart", Title: "Sales by Product Category", Description: "Compare performance across different product categories"},
		{Type: "bar_chart", Title: "Sales by Region", Description: "Analyze regional performance and identify top-performing areas"},
		{Type: "scatter_plot", Title: "Sales vs Customer Count", Description: "Explore relationship between sales and customer acquisition"},
		{Type: "histogram", Title: "Sales Distribution", Description: "Understand the distribution of daily sales amounts"},
	}
}
