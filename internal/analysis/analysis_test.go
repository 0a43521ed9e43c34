// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleSales(t *testing.T) {
	d := SampleSales(SampleSeed)
	require.Len(t, d.Rows, 91, "Q1 2024 is a leap quarter")
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), d.Rows[0].Date)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), d.Rows[90].Date)
	assert.Equal(t, "2024-01-01 to 2024-03-31", d.DateRange())

	for _, r := range d.Rows {
		assert.Contains(t, sampleCategories, r.ProductCategory)
		assert.Contains(t, sampleRegions, r.Region)
		assert.GreaterOrEqual(t, r.UnitsSold, 0)
		assert.GreaterOrEqual(t, r.CustomerCount, 0)
	}

	avg := d.AverageSales()
	assert.InDelta(t, 11000, avg, 2000, "mean near 10,000 plus half the trend and premium")
}

func TestSampleSalesDeterministic(t *testing.T) {
	a := SampleSales(SampleSeed)
	b := SampleSales(SampleSeed)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Rows, SampleSales(7).Rows)
}

func TestInfo(t *testing.T) {
	d := Dataset{
		Name:    "tiny",
		Columns: []string{"date", "sales_amount"},
		Rows: []Row{
			{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), SalesAmount: 1234.5},
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), SalesAmount: 1000000},
		},
	}
	info := d.Info()
	assert.Equal(t, 2, info.TotalRecords)
	assert.Equal(t, "2024-01-01 to 2024-02-01", info.DateRange)
	assert.Equal(t, "$1,001,234.50", info.TotalSales)
	assert.Equal(t, "$500,617.25", info.AvgDailySales)
}

func TestSummary(t *testing.T) {
	s := SampleSales(SampleSeed).Summary()
	assert.True(t, strings.HasPrefix(s, "Dataset: Sales Data (Q1 2024)\n"))
	assert.Contains(t, s, "- Rows: 91")
	assert.Contains(t, s, "- Date Range: 2024-01-01 to 2024-03-31")
	assert.Contains(t, s, "- Columns: date, sales_amount, units_sold, customer_count, product_category, region")
}

func TestExtractRecommendations(t *testing.T) {
	text := strings.Join([]string{
		"## Findings",
		"Sales grew steadily.",
		"  We recommend expanding electronics inventory.  ",
		"Act now",
		"Consider it",
		"should",
		"You SHOULD review pricing in the South.",
		"Suggested action: run a promotion in March.",
		"Consider bundling books with home goods.",
		"Another recommendation that is dropped by the cap.",
	}, "\n")

	got := ExtractRecommendations(text)
	assert.Equal(t, []string{
		"We recommend expanding electronics inventory.",
		"Consider it",
		"You SHOULD review pricing in the South.",
		"Suggested action: run a promotion in March.",
		"Consider bundling books with home goods.",
	}, got)
}

func TestExtractRecommendationsEmpty(t *testing.T) {
	got := ExtractRecommendations("nothing to see here")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewReport(t *testing.T) {
	d := SampleSales(SampleSeed)
	r := NewReport("analyze sales data for Q1 2024", "You should focus on the West region.", d)
	assert.Equal(t, "analyze sales data for Q1 2024", r.Request)
	assert.Equal(t, "You should focus on the West region.", r.Summary)
	assert.Equal(t, 91, r.DataInfo.TotalRecords)
	assert.Equal(t, []string{"You should focus on the West region."}, r.Recommendations)
	require.Len(t, r.Charts, 5)
	assert.Equal(t, "line_chart", r.Charts[0].Type)
	assert.Equal(t, "histogram", r.Charts[4].Type)
}
